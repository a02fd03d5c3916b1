package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/milkcenter/internal/config"
	"github.com/mamadbah2/milkcenter/internal/domain/models"
)

type fakePublisher struct {
	dates   []string
	summary string
	err     error
}

func (f *fakePublisher) PublishDailyReport(_ context.Context, date string) (string, error) {
	f.dates = append(f.dates, date)
	return f.summary, f.err
}

type fakeNotifier struct {
	sent []models.OutboundMessageRequest
}

func (f *fakeNotifier) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	f.sent = append(f.sent, req)
	return nil
}

func testConfig(manager string) config.Config {
	return config.Config{
		WhatsApp:  config.WhatsAppConfig{ManagerID: manager},
		Reporting: config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC"},
	}
}

func TestNewSchedulerRejectsUnknownTimezone(t *testing.T) {
	cfg := testConfig("")
	cfg.Reporting.Timezone = "Mars/Olympus"

	_, err := NewScheduler(cfg, &fakePublisher{}, nil, nil)
	assert.Error(t, err)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	cfg := testConfig("")
	cfg.Reporting.CronSchedule = "every evening"

	s, err := NewScheduler(cfg, &fakePublisher{}, nil, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s, err := NewScheduler(testConfig(""), &fakePublisher{}, nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)
	s.Stop()
}

func TestRunDailyReportSendsSummary(t *testing.T) {
	publisher := &fakePublisher{summary: "Milk collection summary"}
	notifier := &fakeNotifier{}
	s, err := NewScheduler(testConfig("919900000000"), publisher, notifier, nil)
	require.NoError(t, err)

	s.RunDailyReport(context.Background(), time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC))

	assert.Equal(t, []string{"2024-05-01"}, publisher.dates)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "919900000000", notifier.sent[0].To)
	assert.Equal(t, "Milk collection summary", notifier.sent[0].Message)
}

func TestRunDailyReportWithoutManager(t *testing.T) {
	notifier := &fakeNotifier{}
	s, err := NewScheduler(testConfig(""), &fakePublisher{summary: "x"}, notifier, nil)
	require.NoError(t, err)

	s.RunDailyReport(context.Background(), time.Now())
	assert.Empty(t, notifier.sent)
}

func TestRunDailyReportStillSendsAfterSinkFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	publisher := &fakePublisher{summary: "summary", err: errors.New("sheet unavailable")}
	notifier := &fakeNotifier{}
	s, err := NewScheduler(testConfig("9199"), publisher, notifier, zap.New(core))
	require.NoError(t, err)

	s.RunDailyReport(context.Background(), time.Now())

	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, 1, logs.FilterMessage("failed to publish daily report").Len())
}
