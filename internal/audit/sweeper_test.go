package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flowsend/aegis/internal/core/domain"
	"github.com/flowsend/aegis/internal/infra/storage/memory"
)

func seedEvent(t *testing.T, store *memory.AuditStore, category domain.AuditCategory, age time.Duration) {
	t.Helper()
	err := store.Insert(context.Background(), &domain.AuditEvent{
		Action:    "seed",
		Severity:  domain.AuditInfo,
		Category:  category,
		CreatedAt: time.Now().UTC().Add(-age),
	})
	if err != nil {
		t.Fatalf("seed insert: %v", err)
	}
}

const day = 24 * time.Hour

func TestCleanupRespectsPerCategoryRetention(t *testing.T) {
	store := memory.NewAuditStore()

	// Past the 90-day window: swept.
	seedEvent(t, store, domain.CategoryAuth, 91*day)
	seedEvent(t, store, domain.CategoryUserAction, 100*day)
	seedEvent(t, store, domain.CategoryMessage, 200*day)
	// Inside the window: kept.
	seedEvent(t, store, domain.CategoryAuth, 89*day)
	seedEvent(t, store, domain.CategoryMessage, day)

	// Admin events outlive the normal window.
	seedEvent(t, store, domain.CategoryAdmin, 200*day) // kept
	seedEvent(t, store, domain.CategoryAdmin, 366*day) // swept

	s := NewSweeper(store, nil, 0, nil)
	result, err := s.Cleanup(context.Background())
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	if result.NormalDeleted != 3 {
		t.Errorf("NormalDeleted = %d, want 3", result.NormalDeleted)
	}
	if result.AdminDeleted != 1 {
		t.Errorf("AdminDeleted = %d, want 1", result.AdminDeleted)
	}
	if result.TotalDeleted != result.NormalDeleted+result.AdminDeleted {
		t.Errorf("TotalDeleted = %d, want sum %d", result.TotalDeleted, result.NormalDeleted+result.AdminDeleted)
	}

	counts, err := store.CountByCategory(context.Background())
	if err != nil {
		t.Fatalf("CountByCategory: %v", err)
	}
	want := map[domain.AuditCategory]int64{
		domain.CategoryAuth:    1,
		domain.CategoryMessage: 1,
		domain.CategoryAdmin:   1,
	}
	for category, n := range want {
		if counts[category] != n {
			t.Errorf("%s survivors = %d, want %d", category, counts[category], n)
		}
	}
	if counts[domain.CategoryUserAction] != 0 {
		t.Errorf("user_action survivors = %d, want 0", counts[domain.CategoryUserAction])
	}
}

func TestCleanupIsIdempotent(t *testing.T) {
	store := memory.NewAuditStore()
	seedEvent(t, store, domain.CategoryAuth, 120*day)
	seedEvent(t, store, domain.CategoryAdmin, 400*day)

	s := NewSweeper(store, nil, 0, nil)
	ctx := context.Background()

	first, err := s.Cleanup(ctx)
	if err != nil {
		t.Fatalf("first Cleanup: %v", err)
	}
	if first.TotalDeleted != 2 {
		t.Errorf("first sweep deleted %d, want 2", first.TotalDeleted)
	}

	second, err := s.Cleanup(ctx)
	if err != nil {
		t.Fatalf("second Cleanup: %v", err)
	}
	if second.TotalDeleted != 0 {
		t.Errorf("second sweep deleted %d, want 0", second.TotalDeleted)
	}
}

func TestCleanupEmptyStore(t *testing.T) {
	s := NewSweeper(memory.NewAuditStore(), nil, 0, nil)
	result, err := s.Cleanup(context.Background())
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if result.TotalDeleted != 0 {
		t.Errorf("TotalDeleted = %d, want 0", result.TotalDeleted)
	}
}

// brokenStore fails deletes for one category to exercise partial sweeps.
type brokenStore struct {
	*memory.AuditStore
	failCategory domain.AuditCategory
}

func (b *brokenStore) DeleteOlderThan(ctx context.Context, category domain.AuditCategory, cutoff time.Time) (int64, error) {
	if category == b.failCategory {
		return 0, errors.New("relation locked")
	}
	return b.AuditStore.DeleteOlderThan(ctx, category, cutoff)
}

func TestCleanupStopsOnStoreError(t *testing.T) {
	store := memory.NewAuditStore()
	seedEvent(t, store, domain.CategoryAuth, 120*day)

	s := NewSweeper(&brokenStore{AuditStore: store, failCategory: domain.CategoryUserAction}, nil, 0, nil)
	result, err := s.Cleanup(context.Background())
	if err == nil {
		t.Fatal("expected error from failing category")
	}
	// The sweep before the failure still counts.
	if result.NormalDeleted != 1 {
		t.Errorf("NormalDeleted = %d, want 1", result.NormalDeleted)
	}
}

// fakeLocker records lock traffic.
type fakeLocker struct {
	granted  bool
	acquires int
	releases int
}

func (f *fakeLocker) AcquireSweepLock(ctx context.Context, ttl time.Duration) (bool, error) {
	f.acquires++
	return f.granted, nil
}

func (f *fakeLocker) ReleaseSweepLock(ctx context.Context) error {
	f.releases++
	return nil
}

func TestSweepSkipsWhenLockHeldElsewhere(t *testing.T) {
	store := memory.NewAuditStore()
	seedEvent(t, store, domain.CategoryAuth, 120*day)

	locker := &fakeLocker{granted: false}
	s := NewSweeper(store, locker, time.Hour, nil)
	s.sweep(context.Background())

	if locker.acquires != 1 {
		t.Errorf("acquires = %d, want 1", locker.acquires)
	}
	if locker.releases != 0 {
		t.Errorf("releases = %d, want 0 (never held the lock)", locker.releases)
	}

	counts, _ := store.CountByCategory(context.Background())
	if counts[domain.CategoryAuth] != 1 {
		t.Error("sweep ran without holding the lock")
	}
}

func TestSweepAcquiresAndReleasesLock(t *testing.T) {
	store := memory.NewAuditStore()
	seedEvent(t, store, domain.CategoryAuth, 120*day)

	locker := &fakeLocker{granted: true}
	s := NewSweeper(store, locker, time.Hour, nil)
	s.sweep(context.Background())

	if locker.acquires != 1 || locker.releases != 1 {
		t.Errorf("acquires/releases = %d/%d, want 1/1", locker.acquires, locker.releases)
	}

	counts, _ := store.CountByCategory(context.Background())
	if counts[domain.CategoryAuth] != 0 {
		t.Error("sweep did not run while holding the lock")
	}
}

func TestStartDisabledWithoutInterval(t *testing.T) {
	s := NewSweeper(memory.NewAuditStore(), nil, 0, nil)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return for a disabled sweeper")
	}
}
