// Package scheduler implements the cron-driven daily report job.
// At each firing it invokes the write_daily_report tool through the
// session manager for every configured subject, so scheduled runs go
// through the same consent gate as operator-requested ones.
//
// Core invariant: scheduled execution is NOT privileged execution.
// A fired report lands in the consent queue and waits for the operator.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tidemark/vigil/internal/config"
	"github.com/tidemark/vigil/internal/session"
	"github.com/tidemark/vigil/internal/tools"
)

// Scheduler fires the daily report on a cron expression.
// It runs as a background goroutine alongside the interactive session.
type Scheduler struct {
	session  *session.Manager
	subjects []string
	spec     string
	schedule cron.Schedule
	metrics  *Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Scheduler from config. The default subject is used when
// the config names none. Returns an error on an invalid cron expression.
func New(sess *session.Manager, cfg *config.SchedulerConfig, defaultSubject string, metrics *Metrics, logger *slog.Logger) (*Scheduler, error) {
	spec := cfg.CronSpec()
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	subjects := cfg.Subjects
	if len(subjects) == 0 {
		subjects = []string{defaultSubject}
	}

	return &Scheduler{
		session:  sess,
		subjects: subjects,
		spec:     spec,
		schedule: schedule,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// NextRun returns the next firing time after now.
func (s *Scheduler) NextRun() time.Time {
	return s.schedule.Next(s.now())
}

// Start begins the scheduler loop. Returns a cancel function.
func (s *Scheduler) Start(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		s.logger.InfoContext(ctx, "report scheduler started",
			slog.String("spec", s.spec),
			slog.Int("subjects", len(s.subjects)),
			slog.Time("next_run", s.NextRun()),
		)

		for {
			timer := time.NewTimer(time.Until(s.schedule.Next(s.now())))
			select {
			case <-ctx.Done():
				timer.Stop()
				s.logger.Info("report scheduler stopped")
				return
			case <-timer.C:
				s.fire(ctx)
			}
		}
	}()

	return cancel
}

// fire queues one write_daily_report call per subject. Consent gating
// means each lands as needs_consent rather than executing directly.
func (s *Scheduler) fire(ctx context.Context) {
	start := s.now()

	for _, subject := range s.subjects {
		out := s.session.Invoke(ctx, tools.ServerOpsActions, tools.ToolWriteDailyReport, map[string]any{
			"subject_id": subject,
		})

		switch out.(type) {
		case session.Pending:
			s.logger.InfoContext(ctx, "daily report queued for approval",
				slog.String("subject_id", subject),
			)
			if s.metrics != nil {
				s.metrics.ReportsQueued.Inc()
			}
		case session.Resolved:
			// Only possible when the consent policy was overridden.
			if s.metrics != nil {
				s.metrics.ReportsFired.Inc()
			}
		case session.Failed:
			s.logger.ErrorContext(ctx, "daily report invocation failed",
				slog.String("subject_id", subject),
			)
			if s.metrics != nil {
				s.metrics.ReportsFailed.Inc()
			}
		}
	}

	if s.metrics != nil {
		s.metrics.FireDuration.Observe(time.Since(start).Seconds())
	}
}
