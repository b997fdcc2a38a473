package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/coverline/internal/contracts"
	"github.com/wonny/coverline/pkg/logger"
	"github.com/wonny/coverline/pkg/metrics"
)

// RenewalSource finds policies due for renewal and publishes reminders.
// *underwriting.Service satisfies it.
type RenewalSource interface {
	DueForRenewal(ctx context.Context) ([]contracts.AutoPolicy, []contracts.HomePolicy, error)
	NotifyRenewalDue(ctx context.Context, product contracts.Product, userID, policyID string, endDate time.Time) error
}

// RenewalReminderJob emits policy.renewal_due for every policy inside its renewal window.
// It never renews: renewal stays a user action.
type RenewalReminderJob struct {
	source RenewalSource
	logger *logger.Logger
}

// NewRenewalReminderJob creates the reminder job
func NewRenewalReminderJob(source RenewalSource, log *logger.Logger) *RenewalReminderJob {
	return &RenewalReminderJob{
		source: source,
		logger: log,
	}
}

// Name returns the job name
func (j *RenewalReminderJob) Name() string {
	return "renewal_reminder"
}

// Schedule returns the cron schedule (daily at 07:00)
func (j *RenewalReminderJob) Schedule() string {
	return "0 0 7 * * *"
}

// Run publishes one reminder per due policy. A failed reminder is logged and
// counted but does not fail the run, so a retry never re-sends the others.
func (j *RenewalReminderJob) Run(ctx context.Context) error {
	j.logger.Info("Starting renewal reminder run")

	autos, homes, err := j.source.DueForRenewal(ctx)
	if err != nil {
		return fmt.Errorf("failed to list policies due for renewal: %w", err)
	}

	sent, failed := 0, 0
	remind := func(product contracts.Product, userID, policyID string, end time.Time) {
		if err := j.source.NotifyRenewalDue(ctx, product, userID, policyID, end); err != nil {
			failed++
			metrics.RecordLifecycle(string(product), "renewal_due", "error")
			j.logger.WithError(err).WithFields(map[string]interface{}{
				"product":   product,
				"policy_id": policyID,
			}).Warn("Failed to send renewal reminder")
			return
		}
		sent++
		metrics.RecordLifecycle(string(product), "renewal_due", "ok")
	}

	for _, p := range autos {
		remind(contracts.ProductAuto, p.UserID, p.ID, p.EndDate)
	}
	for _, p := range homes {
		remind(contracts.ProductHome, p.UserID, p.ID, p.EndDate)
	}

	j.logger.WithFields(map[string]interface{}{
		"auto":   len(autos),
		"home":   len(homes),
		"sent":   sent,
		"failed": failed,
	}).Info("Renewal reminder run completed")

	return nil
}
