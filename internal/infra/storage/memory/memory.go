package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/flowsend/aegis/internal/core/domain"
	"github.com/flowsend/aegis/internal/infra/storage"
)

// AuditStore is an in-memory storage.AuditRepository for dev mode and tests.
type AuditStore struct {
	mu     sync.RWMutex
	nextID int64
	events []*domain.AuditEvent
}

// NewAuditStore creates an empty in-memory audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{nextID: 1}
}

func (s *AuditStore) Insert(ctx context.Context, event *domain.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *event
	stored.ID = s.nextID
	s.nextID++
	s.events = append(s.events, &stored)
	event.ID = stored.ID
	return nil
}

func (s *AuditStore) List(ctx context.Context, filter storage.AuditFilter) ([]*domain.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.AuditEvent
	for _, e := range s.events {
		if !matches(e, filter) {
			continue
		}
		copied := *e
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func matches(e *domain.AuditEvent, f storage.AuditFilter) bool {
	if f.UserID != nil && (e.UserID == nil || *e.UserID != *f.UserID) {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Severity != "" && e.Severity != f.Severity {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if !f.Since.IsZero() && e.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !e.CreatedAt.Before(f.Until) {
		return false
	}
	return true
}

func (s *AuditStore) DeleteOlderThan(ctx context.Context, category domain.AuditCategory, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	kept := s.events[:0]
	for _, e := range s.events {
		if e.Category == category && e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return deleted, nil
}

func (s *AuditStore) CountByCategory(ctx context.Context) (map[domain.AuditCategory]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.AuditCategory]int64)
	for _, e := range s.events {
		counts[e.Category]++
	}
	return counts, nil
}
