package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/milkcenter/internal/config"
	"github.com/mamadbah2/milkcenter/internal/domain/models"
)

const jobTimeout = 2 * time.Minute

// Publisher publishes the closing report of a day.
type Publisher interface {
	PublishDailyReport(ctx context.Context, date string) (string, error)
}

// Notifier delivers the report summary to the manager.
type Notifier interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	location  *time.Location
	publisher Publisher
	notifier  Notifier
	cfg       config.Config
	logger    *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone.
// notifier may be nil when messaging is not configured.
func NewScheduler(cfg config.Config, publisher Publisher, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Reporting.Timezone, err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(location)),
		location:  location,
		publisher: publisher,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Start registers the daily report job and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.sendDailyReport); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.cfg.Reporting.CronSchedule, err)
	}

	s.logger.Info("starting scheduler",
		zap.String("schedule", s.cfg.Reporting.CronSchedule),
		zap.String("timezone", s.location.String()))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.RunDailyReport(ctx, time.Now().In(s.location))
}

// RunDailyReport publishes the report for the calendar day of now and sends
// the summary to the manager when messaging is configured.
func (s *Scheduler) RunDailyReport(ctx context.Context, now time.Time) {
	date := now.Format("2006-01-02")
	logger := s.logger.With(zap.String("date", date))
	logger.Info("generating daily report")

	summary, err := s.publisher.PublishDailyReport(ctx, date)
	if err != nil {
		// the summary is sent even when a sink failed
		logger.Error("failed to publish daily report", zap.Error(err))
	}

	if s.notifier == nil || s.cfg.WhatsApp.ManagerID == "" || summary == "" {
		return
	}

	req := models.OutboundMessageRequest{
		To:      s.cfg.WhatsApp.ManagerID,
		Message: summary,
	}
	if err := s.notifier.SendOutbound(ctx, req); err != nil {
		logger.Error("failed to send daily report", zap.Error(err))
		return
	}
	logger.Info("daily report sent successfully")
}
