package domain

import "time"

// AuditCategory partitions audit events for retention and review.
type AuditCategory string

const (
	CategoryAuth       AuditCategory = "auth"
	CategoryUserAction AuditCategory = "user_action"
	CategoryMessage    AuditCategory = "message"
	CategoryAdmin      AuditCategory = "admin"
)

// Valid reports whether the category is one of the fixed enumeration values.
func (c AuditCategory) Valid() bool {
	switch c {
	case CategoryAuth, CategoryUserAction, CategoryMessage, CategoryAdmin:
		return true
	}
	return false
}

// AuditSeverity flags how closely an event should be reviewed.
type AuditSeverity string

const (
	AuditInfo     AuditSeverity = "info"
	AuditWarning  AuditSeverity = "warning"
	AuditCritical AuditSeverity = "critical"
)

// Valid reports whether the severity is one of the fixed enumeration values.
func (s AuditSeverity) Valid() bool {
	switch s {
	case AuditInfo, AuditWarning, AuditCritical:
		return true
	}
	return false
}

// AuditEvent is an append-only record of something that happened on the
// platform. Events are only ever deleted by the retention sweeper; CreatedAt
// is assigned at insertion time and never edited.
type AuditEvent struct {
	ID          int64
	UserID      *string // nil for system actions
	Action      string  // verb, e.g. "product_create"
	Description string
	ItemType    *string // optional subject reference
	ItemID      *string
	Metadata    map[string]any
	IPAddress   string
	UserAgent   string
	Severity    AuditSeverity
	Category    AuditCategory
	CreatedAt   time.Time
}
