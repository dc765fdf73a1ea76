package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdcare/internal/config"
	"github.com/mamadbah2/herdcare/internal/domain/models"
)

const runTimeout = 2 * time.Minute

// Reporter builds the daily herd report.
type Reporter interface {
	Digest(ctx context.Context) (string, error)
	SaveSnapshot(ctx context.Context) (models.HerdReport, error)
	ExportOverdue(ctx context.Context) (int, error)
}

// DigestSender delivers the digest text.
type DigestSender interface {
	SendDigest(ctx context.Context, text string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	reporter Reporter
	sender   DigestSender
	logger   *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone. sender
// may be nil when messaging is disabled.
func NewScheduler(cfg config.ReportingConfig, reporter Reporter, sender DigestSender, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// standard five-field cron expressions, evaluated in the farm's timezone
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		spec:     cfg.CronSchedule,
		reporter: reporter,
		sender:   sender,
		logger:   logger,
	}, nil
}

// Start registers the daily report and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.spec))

	if _, err := s.cron.AddFunc(s.spec, s.runScheduled); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.spec, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running report to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := s.RunDailyReport(ctx); err != nil {
		s.logger.Error("daily report finished with errors", zap.Error(err))
		return
	}
	s.logger.Info("daily report completed")
}

// RunDailyReport saves the snapshot, exports overdue rows and sends the digest.
// A failing step does not stop the others; all failures are returned joined.
func (s *Scheduler) RunDailyReport(ctx context.Context) error {
	var errs []error

	if _, err := s.reporter.SaveSnapshot(ctx); err != nil {
		errs = append(errs, fmt.Errorf("save snapshot: %w", err))
	}

	if n, err := s.reporter.ExportOverdue(ctx); err != nil {
		errs = append(errs, fmt.Errorf("export overdue: %w", err))
	} else if n > 0 {
		s.logger.Info("overdue rows exported", zap.Int("rows", n))
	}

	if s.sender != nil {
		digest, err := s.reporter.Digest(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("build digest: %w", err))
		} else if err := s.sender.SendDigest(ctx, digest); err != nil {
			errs = append(errs, fmt.Errorf("send digest: %w", err))
		}
	}

	return errors.Join(errs...)
}
