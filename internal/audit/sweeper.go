package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowsend/aegis/internal/core/domain"
	"github.com/flowsend/aegis/internal/infra/storage"
	"github.com/flowsend/aegis/internal/metrics"
)

// Retention thresholds. Routine logs are short-lived; admin/security events
// keep long-tail investigative value.
const (
	RetentionNormal = 90 * 24 * time.Hour
	RetentionAdmin  = 365 * 24 * time.Hour
)

// normalCategories are swept with the short retention window.
var normalCategories = []domain.AuditCategory{
	domain.CategoryAuth,
	domain.CategoryUserAction,
	domain.CategoryMessage,
}

// CleanupResult summarizes one retention sweep.
type CleanupResult struct {
	NormalDeleted int64
	AdminDeleted  int64
	TotalDeleted  int64
}

// Locker guards the sweep so only one instance runs it at a time across the
// fleet. Deleting is idempotent, so a lost lock is wasteful, not unsafe.
type Locker interface {
	AcquireSweepLock(ctx context.Context, ttl time.Duration) (bool, error)
	ReleaseSweepLock(ctx context.Context) error
}

// Sweeper deletes audit events past their category's age threshold.
type Sweeper struct {
	repo     storage.AuditRepository
	locker   Locker // optional
	interval time.Duration
	log      *slog.Logger
}

// NewSweeper creates a sweeper. locker may be nil for single-instance
// deployments; interval <= 0 disables the periodic loop.
func NewSweeper(repo storage.AuditRepository, locker Locker, interval time.Duration, log *slog.Logger) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{repo: repo, locker: locker, interval: interval, log: log}
}

// Cleanup runs one sweep. Both cutoffs are computed once up front; one delete
// is issued per (cutoff, category) pair and the affected-row counts summed.
func (s *Sweeper) Cleanup(ctx context.Context) (CleanupResult, error) {
	now := time.Now().UTC()
	normalCutoff := now.Add(-RetentionNormal)
	adminCutoff := now.Add(-RetentionAdmin)

	var result CleanupResult

	for _, category := range normalCategories {
		deleted, err := s.repo.DeleteOlderThan(ctx, category, normalCutoff)
		if err != nil {
			return result, fmt.Errorf("failed to sweep %s events: %w", category, err)
		}
		result.NormalDeleted += deleted
		metrics.RetentionDeletedTotal.WithLabelValues(string(category)).Add(float64(deleted))
	}

	deleted, err := s.repo.DeleteOlderThan(ctx, domain.CategoryAdmin, adminCutoff)
	if err != nil {
		return result, fmt.Errorf("failed to sweep admin events: %w", err)
	}
	result.AdminDeleted = deleted
	metrics.RetentionDeletedTotal.WithLabelValues(string(domain.CategoryAdmin)).Add(float64(deleted))

	result.TotalDeleted = result.NormalDeleted + result.AdminDeleted
	return result, nil
}

// Start runs the periodic sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if s.locker != nil {
		acquired, err := s.locker.AcquireSweepLock(ctx, s.interval)
		if err != nil {
			s.log.Warn("Failed to acquire retention lock", "error", err)
			return
		}
		if !acquired {
			s.log.Debug("Retention sweep already running elsewhere, skipping")
			return
		}
		defer func() {
			if err := s.locker.ReleaseSweepLock(ctx); err != nil {
				s.log.Warn("Failed to release retention lock", "error", err)
			}
		}()
	}

	result, err := s.Cleanup(ctx)
	if err != nil {
		s.log.Error("Retention sweep failed", "error", err)
		return
	}
	if result.TotalDeleted > 0 {
		s.log.Info("Retention sweep completed",
			"normal_deleted", result.NormalDeleted,
			"admin_deleted", result.AdminDeleted,
			"total_deleted", result.TotalDeleted)
	}
}
