package breaker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flowsend/aegis/internal/core/errs"
)

var errBoom = errors.New("boom")

func failing(ctx context.Context) (any, error) { return nil, errBoom }
func succeeding(ctx context.Context) (any, error) { return "ok", nil }

func isCircuitOpen(err error) bool {
	var appErr *errs.Error
	return errors.As(err, &appErr) && appErr.Code == errs.CodeSysCircuitOpen
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	b := New("svc", Settings{Threshold: 3, ResetTimeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := b.Execute(ctx, failing); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: err = %v, want underlying failure", i, err)
		}
	}

	if got := b.State(); got != StateOpen {
		t.Fatalf("state after threshold failures = %v, want open", got)
	}

	// Next call must be rejected without reaching the work.
	calls := 0
	_, err := b.Execute(ctx, func(ctx context.Context) (any, error) {
		calls++
		return nil, nil
	})
	if !isCircuitOpen(err) {
		t.Errorf("rejected call error = %v, want circuit-open kind", err)
	}
	if calls != 0 {
		t.Errorf("work invoked %d times while open, want 0", calls)
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := New("svc", Settings{Threshold: 3, ResetTimeout: time.Minute})
	ctx := context.Background()

	// Two failures, then a success, then two more failures: never trips.
	b.Execute(ctx, failing)
	b.Execute(ctx, failing)
	b.Execute(ctx, succeeding)
	b.Execute(ctx, failing)
	b.Execute(ctx, failing)

	if got := b.State(); got != StateClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b := New("svc", Settings{Threshold: 1, ResetTimeout: 20 * time.Millisecond})
	ctx := context.Background()

	b.Execute(ctx, failing)
	if got := b.State(); got != StateOpen {
		t.Fatalf("state = %v, want open", got)
	}

	time.Sleep(30 * time.Millisecond)

	// Trial call goes through and closes the breaker.
	result, err := b.Execute(ctx, succeeding)
	if err != nil || result != "ok" {
		t.Fatalf("trial call: result = %v, err = %v", result, err)
	}
	if got := b.State(); got != StateClosed {
		t.Errorf("state after trial success = %v, want closed", got)
	}

	b.mu.Lock()
	failures := b.failureCount
	b.mu.Unlock()
	if failures != 0 {
		t.Errorf("failureCount after recovery = %d, want 0", failures)
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := New("svc", Settings{Threshold: 1, ResetTimeout: 20 * time.Millisecond})
	ctx := context.Background()

	b.Execute(ctx, failing)
	time.Sleep(30 * time.Millisecond)

	if _, err := b.Execute(ctx, failing); !errors.Is(err, errBoom) {
		t.Fatalf("trial call err = %v, want underlying failure", err)
	}
	if got := b.State(); got != StateOpen {
		t.Errorf("state after trial failure = %v, want open", got)
	}

	// Reopened with a refreshed timestamp: still rejecting.
	if _, err := b.Execute(ctx, succeeding); !isCircuitOpen(err) {
		t.Errorf("err = %v, want circuit-open kind", err)
	}
}

func TestBreakerHalfOpenAdmitsExactlyOneTrial(t *testing.T) {
	b := New("svc", Settings{Threshold: 1, ResetTimeout: 10 * time.Millisecond})
	ctx := context.Background()

	b.Execute(ctx, failing)
	time.Sleep(20 * time.Millisecond)

	var admitted int32
	release := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Execute(ctx, func(ctx context.Context) (any, error) {
				atomic.AddInt32(&admitted, 1)
				<-release
				return "ok", nil
			})
		}()
	}

	// Let all goroutines hit the breaker before releasing the trial.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&admitted); got != 1 {
		t.Errorf("admitted %d concurrent half-open calls, want exactly 1", got)
	}
	if got := b.State(); got != StateClosed {
		t.Errorf("state after trial success = %v, want closed", got)
	}
}

func TestBreakerReset(t *testing.T) {
	b := New("svc", Settings{Threshold: 1, ResetTimeout: time.Hour})
	ctx := context.Background()

	b.Execute(ctx, failing)
	if got := b.State(); got != StateOpen {
		t.Fatalf("state = %v, want open", got)
	}

	b.Reset()
	if got := b.State(); got != StateClosed {
		t.Errorf("state after reset = %v, want closed", got)
	}

	if _, err := b.Execute(ctx, succeeding); err != nil {
		t.Errorf("call after reset failed: %v", err)
	}
}

func TestRegistryPresets(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		service   string
		threshold int
		reset     time.Duration
	}{
		{ServiceProviderAPI, 10, 120 * time.Second},
		{ServiceAI, 5, 60 * time.Second},
		{ServiceDatabase, 3, 30 * time.Second},
	}

	for _, tt := range tests {
		b := r.Get(tt.service)
		if b.settings.Threshold != tt.threshold || b.settings.ResetTimeout != tt.reset {
			t.Errorf("%s settings = %+v, want threshold %d reset %v",
				tt.service, b.settings, tt.threshold, tt.reset)
		}
	}

	if same := r.Get(ServiceAI) == r.Get(ServiceAI); !same {
		t.Error("Get returned different instances for the same service")
	}

	states := r.States()
	if len(states) != 3 {
		t.Errorf("States() has %d entries, want 3", len(states))
	}
	for service, state := range states {
		if state != "closed" {
			t.Errorf("%s initial state = %s, want closed", service, state)
		}
	}
}

func TestRegistryWarnsOnLazyCreation(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	r := NewRegistry()

	// Registered services come back silently.
	r.Get(ServiceDatabase)
	if buf.Len() != 0 {
		t.Errorf("Get of a registered service logged: %s", buf.String())
	}

	// An unknown name gets a working breaker, but loudly.
	b := r.Get("provder_api")
	if b == nil || b.settings != ProviderAPISettings {
		t.Fatalf("lazy breaker = %+v, want provider settings", b)
	}
	if !strings.Contains(buf.String(), "provder_api") {
		t.Errorf("lazy creation not logged, got: %s", buf.String())
	}

	// Memoized: the second Get does not log again.
	buf.Reset()
	if again := r.Get("provder_api"); again != b {
		t.Error("lazy breaker not memoized")
	}
	if buf.Len() != 0 {
		t.Errorf("repeat Get logged: %s", buf.String())
	}
}
