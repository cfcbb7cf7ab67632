package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/flowsend/aegis/internal/core/domain"
	"github.com/flowsend/aegis/internal/infra/storage"
)

// AuditRepo implements storage.AuditRepository using PostgreSQL.
type AuditRepo struct {
	db *DB
}

// NewAuditRepo creates a new PostgreSQL audit repository.
func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

type auditRow struct {
	ID          int64     `db:"id"`
	UserID      *string   `db:"user_id"`
	Action      string    `db:"action"`
	Description string    `db:"description"`
	ItemType    *string   `db:"item_type"`
	ItemID      *string   `db:"item_id"`
	Metadata    []byte    `db:"metadata"`
	IPAddress   string    `db:"ip_address"`
	UserAgent   string    `db:"user_agent"`
	Severity    string    `db:"severity"`
	Category    string    `db:"category"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *auditRow) toDomain() (*domain.AuditEvent, error) {
	event := &domain.AuditEvent{
		ID:          r.ID,
		UserID:      r.UserID,
		Action:      r.Action,
		Description: r.Description,
		ItemType:    r.ItemType,
		ItemID:      r.ItemID,
		IPAddress:   r.IPAddress,
		UserAgent:   r.UserAgent,
		Severity:    domain.AuditSeverity(r.Severity),
		Category:    domain.AuditCategory(r.Category),
		CreatedAt:   r.CreatedAt,
	}
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &event.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
	}
	return event, nil
}

// Insert appends an audit event and fills in the assigned id.
func (r *AuditRepo) Insert(ctx context.Context, event *domain.AuditEvent) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	query := `
		INSERT INTO audit_events (
			user_id, action, description, item_type, item_id, metadata,
			ip_address, user_agent, severity, category, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err = r.db.QueryRowxContext(ctx, query,
		event.UserID, event.Action, event.Description,
		event.ItemType, event.ItemID, metadata,
		event.IPAddress, event.UserAgent,
		string(event.Severity), string(event.Category), event.CreatedAt,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// List returns events matching the filter, newest first.
func (r *AuditRepo) List(ctx context.Context, filter storage.AuditFilter) ([]*domain.AuditEvent, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != nil {
		conds = append(conds, "user_id = "+arg(*filter.UserID))
	}
	if filter.Category != "" {
		conds = append(conds, "category = "+arg(string(filter.Category)))
	}
	if filter.Severity != "" {
		conds = append(conds, "severity = "+arg(string(filter.Severity)))
	}
	if filter.Action != "" {
		conds = append(conds, "action = "+arg(filter.Action))
	}
	if !filter.Since.IsZero() {
		conds = append(conds, "created_at >= "+arg(filter.Since))
	}
	if !filter.Until.IsZero() {
		conds = append(conds, "created_at < "+arg(filter.Until))
	}

	query := `
		SELECT id, user_id, action, description, item_type, item_id, metadata,
		       ip_address, user_agent, severity, category, created_at
		FROM audit_events
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT " + arg(limit)
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	var rows []auditRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}

	events := make([]*domain.AuditEvent, 0, len(rows))
	for i := range rows {
		event, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// DeleteOlderThan removes events of one category created strictly before the
// cutoff.
func (r *AuditRepo) DeleteOlderThan(ctx context.Context, category domain.AuditCategory, cutoff time.Time) (int64, error) {
	query := `DELETE FROM audit_events WHERE category = $1 AND created_at < $2`
	res, err := r.db.ExecContext(ctx, query, string(category), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit events: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return deleted, nil
}

// CountByCategory returns the number of stored events per category.
func (r *AuditRepo) CountByCategory(ctx context.Context) (map[domain.AuditCategory]int64, error) {
	query := `SELECT category, COUNT(*) AS count FROM audit_events GROUP BY category`

	var rows []struct {
		Category string `db:"category"`
		Count    int64  `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count audit events: %w", err)
	}

	counts := make(map[domain.AuditCategory]int64, len(rows))
	for _, row := range rows {
		counts[domain.AuditCategory(row.Category)] = row.Count
	}
	return counts, nil
}
