package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/milkcenter/internal/domain/models"
)

type fakeLedger struct {
	totals    models.DashboardTotals
	top       []models.FarmerVolume
	requested []string
}

func (f *fakeLedger) Dashboard(date string) models.DashboardTotals {
	f.requested = append(f.requested, date)
	totals := f.totals
	totals.Daily.Date = date
	return totals
}

func (f *fakeLedger) TopFarmers(int) []models.FarmerVolume {
	return f.top
}

type fakeArchive struct {
	saved []models.DailyReport
	err   error
}

func (f *fakeArchive) SaveDailyReport(_ context.Context, report models.DailyReport) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, report)
	return nil
}

type fakeSheet struct {
	dates     map[string]bool
	appended  []models.DailyReport
	datesErr  error
	appendErr error
}

func (f *fakeSheet) AppendDailyReport(_ context.Context, report models.DailyReport) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, report)
	return nil
}

func (f *fakeSheet) ReportedDates(context.Context) (map[string]bool, error) {
	return f.dates, f.datesErr
}

var clock = time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

func sampleLedger() *fakeLedger {
	return &fakeLedger{
		totals: models.DashboardTotals{
			TotalPaid:        270,
			TotalOutstanding: 83.2,
			Daily: models.DailyMetrics{
				TotalLiters:    52,
				TotalAmount:    177.2,
				AverageFat:     3.85,
				AverageSNF:     8.3,
				UniqueFarmers:  2,
				ShiftBreakdown: models.ShiftBreakdown{Morning: 28, Evening: 24},
			},
		},
		top: []models.FarmerVolume{
			{Farmer: models.Farmer{Name: "Anil Kumar"}, TotalLiters: 28},
			{Farmer: models.Farmer{Name: "Savitri Hegde"}, TotalLiters: 24},
		},
	}
}

func TestBuildDailyReport(t *testing.T) {
	ledger := sampleLedger()
	svc := NewService(ledger, nil, WithClock(func() time.Time { return clock }))

	report := svc.BuildDailyReport("")

	assert.Equal(t, []string{"2024-05-01"}, ledger.requested)
	assert.Equal(t, models.DailyReport{
		Date:             "2024-05-01",
		TotalLiters:      52,
		TotalAmount:      177.2,
		MorningLiters:    28,
		EveningLiters:    24,
		AverageFat:       3.85,
		AverageSNF:       8.3,
		UniqueFarmers:    2,
		TotalPaid:        270,
		TotalOutstanding: 83.2,
		CreatedAt:        clock,
	}, report)
}

func TestFormatDailySummary(t *testing.T) {
	t.Run("with collections", func(t *testing.T) {
		svc := NewService(sampleLedger(), nil, WithClock(func() time.Time { return clock }))

		text := svc.Summary("2024-05-01")

		assert.Contains(t, text, "Milk collection summary for 2024-05-01")
		assert.Contains(t, text, "52.00 L from 2 farmers")
		assert.Contains(t, text, "₹177.20")
		assert.Contains(t, text, "Morning 28.00 L | Evening 24.00 L")
		assert.Contains(t, text, "Avg fat 3.85%")
		assert.Contains(t, text, "Outstanding ₹83.20")
		assert.Contains(t, text, "1. Anil Kumar 28.00 L")
		assert.Contains(t, text, "2. Savitri Hegde 24.00 L")
	})

	t.Run("empty day", func(t *testing.T) {
		text := FormatDailySummary(models.DailyReport{Date: "2024-05-02"}, nil)

		assert.Contains(t, text, "No collections logged.")
		assert.NotContains(t, text, "Top farmers")
	})
}

func TestPublishDailyReport(t *testing.T) {
	ctx := context.Background()

	t.Run("writes to every sink", func(t *testing.T) {
		archive := &fakeArchive{}
		sheet := &fakeSheet{dates: map[string]bool{"2024-04-30": true}}
		svc := NewService(sampleLedger(), nil, WithArchive(archive), WithSheet(sheet), WithClock(func() time.Time { return clock }))

		summary, err := svc.PublishDailyReport(ctx, "2024-05-01")
		require.NoError(t, err)

		assert.Contains(t, summary, "2024-05-01")
		require.Len(t, archive.saved, 1)
		require.Len(t, sheet.appended, 1)
		assert.Equal(t, "2024-05-01", sheet.appended[0].Date)
	})

	t.Run("skips dates already in the sheet", func(t *testing.T) {
		sheet := &fakeSheet{dates: map[string]bool{"2024-05-01": true}}
		svc := NewService(sampleLedger(), nil, WithSheet(sheet))

		_, err := svc.PublishDailyReport(ctx, "2024-05-01")
		require.NoError(t, err)
		assert.Empty(t, sheet.appended)
	})

	t.Run("sink failures are joined", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		archiveErr := errors.New("mongo down")
		sheetErr := errors.New("quota exceeded")
		archive := &fakeArchive{err: archiveErr}
		sheet := &fakeSheet{datesErr: sheetErr}
		svc := NewService(sampleLedger(), zap.New(core), WithArchive(archive), WithSheet(sheet))

		summary, err := svc.PublishDailyReport(ctx, "2024-05-01")

		require.Error(t, err)
		assert.ErrorIs(t, err, archiveErr)
		assert.ErrorIs(t, err, sheetErr)
		assert.NotEmpty(t, summary)
		assert.Equal(t, 2, logs.Len())
	})

	t.Run("no sinks configured", func(t *testing.T) {
		svc := NewService(sampleLedger(), nil)

		summary, err := svc.PublishDailyReport(ctx, "2024-05-01")
		require.NoError(t, err)
		assert.NotEmpty(t, summary)
	})
}
