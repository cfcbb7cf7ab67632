// Package audit records structured platform events into an append-only store
// and enforces their time-bounded retention.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/flowsend/aegis/internal/core/domain"
	"github.com/flowsend/aegis/internal/core/errs"
	"github.com/flowsend/aegis/internal/infra/storage"
	"github.com/flowsend/aegis/internal/metrics"
)

// Recorder writes audit events. Recording is best-effort: a store failure is
// logged and counted, never propagated, so audit logging can never become a
// cause of request failure.
type Recorder struct {
	repo storage.AuditRepository
	log  *slog.Logger

	mu     sync.Mutex
	lastAt time.Time
}

// NewRecorder creates a recorder over the given store.
func NewRecorder(repo storage.AuditRepository, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{repo: repo, log: log}
}

// Record stamps and persists an audit event. Category is mandatory; severity
// defaults to info. Invalid or unwritable events are dropped with a
// diagnostic log entry.
func (r *Recorder) Record(ctx context.Context, event *domain.AuditEvent) {
	if event == nil {
		return
	}
	if !event.Category.Valid() {
		r.log.Warn("Dropping audit event with invalid category",
			"category", string(event.Category), "action", event.Action)
		metrics.AuditEventsDropped.Inc()
		return
	}
	if event.Severity == "" {
		event.Severity = domain.AuditInfo
	}
	if !event.Severity.Valid() {
		event.Severity = domain.AuditInfo
	}
	event.CreatedAt = r.stamp()

	if err := r.repo.Insert(ctx, event); err != nil {
		// Best-effort: swallow the failure, keep the caller's request alive.
		r.log.Warn("Failed to write audit event",
			"action", event.Action, "category", string(event.Category), "error", err)
		metrics.AuditEventsDropped.Inc()
		return
	}
	metrics.AuditEventsRecorded.WithLabelValues(
		string(event.Category), string(event.Severity),
	).Inc()
}

// stamp assigns a monotonically non-decreasing creation time. Concurrent
// recorders may otherwise observe clock reads out of order.
func (r *Recorder) stamp() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if !now.After(r.lastAt) {
		now = r.lastAt.Add(time.Nanosecond)
	}
	r.lastAt = now
	return now
}

// LogAuth records an authentication event. Failed attempts are flagged as
// warnings.
func (r *Recorder) LogAuth(ctx context.Context, userID *string, action string, success bool, metadata map[string]any, rc *RequestContext) {
	severity := domain.AuditInfo
	description := fmt.Sprintf("Auth action %q succeeded", action)
	if !success {
		severity = domain.AuditWarning
		description = fmt.Sprintf("Auth action %q failed", action)
	}
	r.Record(ctx, &domain.AuditEvent{
		UserID:      userID,
		Action:      action,
		Description: description,
		Metadata:    metadata,
		IPAddress:   rc.ip(),
		UserAgent:   rc.userAgent(),
		Severity:    severity,
		Category:    domain.CategoryAuth,
	})
}

// LogUserAction records a routine user action.
func (r *Recorder) LogUserAction(ctx context.Context, userID *string, action, description string, itemType, itemID *string, metadata map[string]any, rc *RequestContext) {
	r.Record(ctx, &domain.AuditEvent{
		UserID:      userID,
		Action:      action,
		Description: description,
		ItemType:    itemType,
		ItemID:      itemID,
		Metadata:    metadata,
		IPAddress:   rc.ip(),
		UserAgent:   rc.userAgent(),
		Severity:    domain.AuditInfo,
		Category:    domain.CategoryUserAction,
	})
}

// LogMessage records a messaging event. The subject type is always "message".
func (r *Recorder) LogMessage(ctx context.Context, userID *string, action, description string, messageID *string, metadata map[string]any, rc *RequestContext) {
	itemType := "message"
	r.Record(ctx, &domain.AuditEvent{
		UserID:      userID,
		Action:      action,
		Description: description,
		ItemType:    &itemType,
		ItemID:      messageID,
		Metadata:    metadata,
		IPAddress:   rc.ip(),
		UserAgent:   rc.userAgent(),
		Severity:    domain.AuditInfo,
		Category:    domain.CategoryMessage,
	})
}

// LogAdmin records an administrative action. Always critical, regardless of
// outcome: security-sensitive actions are flagged for review unconditionally.
func (r *Recorder) LogAdmin(ctx context.Context, userID *string, action, description string, metadata map[string]any, rc *RequestContext) {
	r.Record(ctx, &domain.AuditEvent{
		UserID:      userID,
		Action:      action,
		Description: description,
		Metadata:    metadata,
		IPAddress:   rc.ip(),
		UserAgent:   rc.userAgent(),
		Severity:    domain.AuditCritical,
		Category:    domain.CategoryAdmin,
	})
}

// LogError records the occurrence of a classified error. The taxonomy
// severity maps onto audit severity: critical/high flag the event for review.
func (r *Recorder) LogError(ctx context.Context, userID *string, action string, appErr *errs.Error, rc *RequestContext) {
	if appErr == nil {
		return
	}
	severity := domain.AuditInfo
	switch appErr.Severity {
	case errs.SeverityCritical, errs.SeverityHigh:
		severity = domain.AuditCritical
	case errs.SeverityMedium:
		severity = domain.AuditWarning
	}

	metadata := map[string]any{
		"errorId":   appErr.ID,
		"errorCode": appErr.Code,
		"status":    appErr.Status,
	}
	for k, v := range appErr.Details {
		metadata[k] = v
	}

	r.Record(ctx, &domain.AuditEvent{
		UserID:      userID,
		Action:      action,
		Description: appErr.Message,
		Metadata:    metadata,
		IPAddress:   rc.ip(),
		UserAgent:   rc.userAgent(),
		Severity:    severity,
		Category:    domain.CategoryUserAction,
	})
}
