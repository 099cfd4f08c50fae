// Package jobs holds the concrete scheduled job implementations.
package jobs

import (
	"context"
	"time"

	"github.com/sgkim/tradelens/internal/report"
	"github.com/sgkim/tradelens/pkg/logger"
)

// RetentionJob purges stored reports older than the configured
// retention window.
type RetentionJob struct {
	repo          *report.Repository
	retentionDays int
	logger        *logger.Logger
}

// NewRetentionJob creates a new report retention job
func NewRetentionJob(repo *report.Repository, retentionDays int, log *logger.Logger) *RetentionJob {
	return &RetentionJob{
		repo:          repo,
		retentionDays: retentionDays,
		logger:        log,
	}
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return "report_retention"
}

// Schedule returns the cron schedule (daily at 03:00)
func (j *RetentionJob) Schedule() string {
	return "0 0 3 * * *"
}

// Run deletes reports older than the retention window
func (j *RetentionJob) Run(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -j.retentionDays)

	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	if deleted > 0 {
		j.logger.WithFields(map[string]interface{}{
			"deleted": deleted,
			"cutoff":  cutoff.Format("2006-01-02"),
		}).Info("Old reports purged")
	}

	return nil
}
