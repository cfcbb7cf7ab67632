package storage

import (
	"context"
	"time"

	"github.com/flowsend/aegis/internal/core/domain"
)

// AuditFilter narrows an audit query. Zero values mean "no constraint".
type AuditFilter struct {
	UserID   *string
	Category domain.AuditCategory
	Severity domain.AuditSeverity
	Action   string
	Since    time.Time
	Until    time.Time
	Limit    int
	Offset   int
}

// AuditRepository is the append-only audit store contract. Inserts happen
// concurrently from many request handlers; deletes only from the retention
// sweeper.
type AuditRepository interface {
	// Insert appends an event and fills in its assigned ID.
	Insert(ctx context.Context, event *domain.AuditEvent) error

	// List returns events matching the filter, newest first.
	List(ctx context.Context, filter AuditFilter) ([]*domain.AuditEvent, error)

	// DeleteOlderThan removes events of the given category created strictly
	// before the cutoff, returning the number of rows removed. Idempotent.
	DeleteOlderThan(ctx context.Context, category domain.AuditCategory, cutoff time.Time) (int64, error)

	// CountByCategory returns the number of stored events per category.
	CountByCategory(ctx context.Context) (map[domain.AuditCategory]int64, error)
}
