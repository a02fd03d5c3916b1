package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/milkcenter/internal/config"
	"github.com/mamadbah2/milkcenter/internal/domain/models"
)

const (
	dailyReportsRange = "DailyReports!A:J"
	reportDatesRange  = "DailyReports!A:A"
)

// Repository mirrors daily closing reports into a spreadsheet, one row per date.
type Repository interface {
	AppendDailyReport(ctx context.Context, report models.DailyReport) error
	ReportedDates(ctx context.Context) (map[string]bool, error)
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendDailyReport writes the report as a new row.
func (r *GoogleSheetRepository) AppendDailyReport(ctx context.Context, report models.DailyReport) error {
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{ReportRow(report)}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, dailyReportsRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append daily report %s: %w", report.Date, err)
	}

	r.logger.Debug("daily report appended to sheet", zap.String("date", report.Date))
	return nil
}

// ReportedDates lists the dates already present in the first column.
func (r *GoogleSheetRepository) ReportedDates(ctx context.Context) (map[string]bool, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, reportDatesRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", reportDatesRange, err)
	}
	return datesFromRows(resp.Values), nil
}

// ReportRow lays out a report in sheet column order.
func ReportRow(report models.DailyReport) []interface{} {
	return []interface{}{
		report.Date,
		report.TotalLiters,
		report.TotalAmount,
		report.MorningLiters,
		report.EveningLiters,
		report.AverageFat,
		report.AverageSNF,
		report.UniqueFarmers,
		report.TotalPaid,
		report.TotalOutstanding,
	}
}

func datesFromRows(rows [][]interface{}) map[string]bool {
	dates := make(map[string]bool, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		value := strings.TrimSpace(fmt.Sprint(row[0]))
		if len(value) > 10 {
			value = value[:10]
		}
		if value != "" {
			dates[value] = true
		}
	}
	return dates
}
