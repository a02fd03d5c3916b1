package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mamadbah2/milkcenter/internal/domain/models"
	"github.com/mamadbah2/milkcenter/internal/repository/mongodb"
	"github.com/mamadbah2/milkcenter/internal/repository/sheets"
)

const dateLayout = "2006-01-02"

var printer = message.NewPrinter(language.MustParse("en-IN"))

// Ledger is the read side of the procurement ledger used for reports.
type Ledger interface {
	Dashboard(date string) models.DashboardTotals
	TopFarmers(limit int) []models.FarmerVolume
}

// Service builds daily closing reports and publishes them to the configured sinks.
type Service struct {
	ledger  Ledger
	archive mongodb.ReportRepository
	sheet   sheets.Repository
	logger  *zap.Logger
	now     func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithArchive stores every published report in a document store.
func WithArchive(archive mongodb.ReportRepository) Option {
	return func(s *Service) { s.archive = archive }
}

// WithSheet mirrors published reports into a spreadsheet.
func WithSheet(sheet sheets.Repository) Option {
	return func(s *Service) { s.sheet = sheet }
}

// WithClock overrides the wall clock used for CreatedAt and default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a new reporting service instance.
func NewService(ledger Ledger, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{ledger: ledger, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildDailyReport snapshots the metrics of date along with whole-history
// payment totals. An empty date means today.
func (s *Service) BuildDailyReport(date string) models.DailyReport {
	if date == "" {
		date = s.now().Format(dateLayout)
	}
	totals := s.ledger.Dashboard(date)

	return models.DailyReport{
		Date:             date,
		TotalLiters:      totals.Daily.TotalLiters,
		TotalAmount:      totals.Daily.TotalAmount,
		MorningLiters:    totals.Daily.ShiftBreakdown.Morning,
		EveningLiters:    totals.Daily.ShiftBreakdown.Evening,
		AverageFat:       totals.Daily.AverageFat,
		AverageSNF:       totals.Daily.AverageSNF,
		UniqueFarmers:    totals.Daily.UniqueFarmers,
		TotalPaid:        totals.TotalPaid,
		TotalOutstanding: totals.TotalOutstanding,
		CreatedAt:        s.now().UTC(),
	}
}

// FormatDailySummary renders a report for chat delivery.
func FormatDailySummary(report models.DailyReport, top []models.FarmerVolume) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Milk collection summary for %s\n", report.Date)
	if report.UniqueFarmers == 0 {
		b.WriteString("No collections logged.\n")
	} else {
		b.WriteString(printer.Sprintf("Total: %.2f L from %d farmers worth ₹%.2f\n", report.TotalLiters, report.UniqueFarmers, report.TotalAmount))
		b.WriteString(printer.Sprintf("Morning %.2f L | Evening %.2f L\n", report.MorningLiters, report.EveningLiters))
		b.WriteString(printer.Sprintf("Avg fat %.2f%% | Avg SNF %.2f%%\n", report.AverageFat, report.AverageSNF))
	}
	b.WriteString(printer.Sprintf("Paid to date ₹%.2f | Outstanding ₹%.2f", report.TotalPaid, report.TotalOutstanding))

	if len(top) > 0 {
		b.WriteString("\nTop farmers:")
		for i, row := range top {
			b.WriteString(printer.Sprintf("\n%d. %s %.2f L", i+1, row.Farmer.Name, row.TotalLiters))
		}
	}

	return b.String()
}

// Summary builds and formats the report for date without publishing it.
func (s *Service) Summary(date string) string {
	return FormatDailySummary(s.BuildDailyReport(date), s.ledger.TopFarmers(0))
}

// PublishDailyReport archives the report for date and returns its summary.
// Every sink is attempted; failures are logged and joined into the error.
func (s *Service) PublishDailyReport(ctx context.Context, date string) (string, error) {
	report := s.BuildDailyReport(date)
	summary := FormatDailySummary(report, s.ledger.TopFarmers(0))
	logger := s.logger.With(zap.String("date", report.Date))

	var errs []error

	if s.archive != nil {
		if err := s.archive.SaveDailyReport(ctx, report); err != nil {
			logger.Error("failed to archive daily report", zap.Error(err))
			errs = append(errs, fmt.Errorf("archive daily report: %w", err))
		}
	}

	if s.sheet != nil {
		if err := s.mirrorToSheet(ctx, report); err != nil {
			logger.Error("failed to mirror daily report", zap.Error(err))
			errs = append(errs, fmt.Errorf("mirror daily report: %w", err))
		}
	}

	logger.Info("daily report published",
		zap.Float64("liters", report.TotalLiters),
		zap.Int("farmers", report.UniqueFarmers),
		zap.Int("failed_sinks", len(errs)))

	return summary, errors.Join(errs...)
}

func (s *Service) mirrorToSheet(ctx context.Context, report models.DailyReport) error {
	dates, err := s.sheet.ReportedDates(ctx)
	if err != nil {
		return fmt.Errorf("load reported dates: %w", err)
	}
	if dates[report.Date] {
		s.logger.Debug("daily report already in sheet", zap.String("date", report.Date))
		return nil
	}
	return s.sheet.AppendDailyReport(ctx, report)
}
