package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/milkcenter/internal/domain/models"
	"github.com/mamadbah2/milkcenter/internal/service/metrics"
	"github.com/mamadbah2/milkcenter/internal/service/procurement"
)

// Sheet names of the exported workbook.
const (
	CollectionsSheet = "Collections"
	PaymentsSheet    = "Payments"
	BalancesSheet    = "Balances"
)

// Source provides the ledger lists to export.
type Source interface {
	Snapshot() procurement.Snapshot
}

// Service produces XLSX workbooks of the procurement ledger.
type Service struct {
	source Source
	logger *zap.Logger
}

func NewService(source Source, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, logger: logger}
}

// ExportWorkbook returns the collections, payments and balances as XLSX bytes.
func (s *Service) ExportWorkbook() ([]byte, error) {
	start := time.Now()
	snap := s.source.Snapshot()

	names := make(map[string]string, len(snap.Farmers))
	for _, farmer := range snap.Farmers {
		names[farmer.ID] = farmer.Name
	}
	farmerName := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return models.UnknownFarmerName
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// the default sheet becomes the collections sheet
	if err := f.SetSheetName(f.GetSheetName(0), CollectionsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, sheet := range []string{PaymentsSheet, BalancesSheet} {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
		}
	}

	collectionRows := make([][]any, 0, len(snap.Collections))
	for _, c := range snap.Collections {
		collectionRows = append(collectionRows, []any{
			c.Date, string(c.Shift), farmerName(c.FarmerID), c.QuantityLiters,
			c.FatPercentage, c.SNFPercentage, c.RatePerLiter, c.Amount, c.Notes,
		})
	}
	if err := writeSheet(f, CollectionsSheet,
		[]string{"Date", "Shift", "Farmer", "Liters", "Fat %", "SNF %", "Rate/L", "Amount", "Notes"},
		collectionRows); err != nil {
		return nil, err
	}

	paymentRows := make([][]any, 0, len(snap.Payments))
	for _, p := range snap.Payments {
		paymentRows = append(paymentRows, []any{
			p.Date, farmerName(p.FarmerID), p.Amount, string(p.Method), p.Reference, p.Notes,
		})
	}
	if err := writeSheet(f, PaymentsSheet,
		[]string{"Date", "Farmer", "Amount", "Method", "Reference", "Notes"},
		paymentRows); err != nil {
		return nil, err
	}

	balances := metrics.ComputeFarmerBalances(snap.Farmers, snap.Collections, snap.Payments)
	balanceRows := make([][]any, 0, len(balances))
	for _, b := range balances {
		balanceRows = append(balanceRows, []any{
			b.Farmer.Code, b.Farmer.Name, b.Farmer.Village, b.TotalLiters, b.TotalAmount, b.AmountPaid, b.Balance,
		})
	}
	if err := writeSheet(f, BalancesSheet,
		[]string{"Code", "Farmer", "Village", "Liters", "Billed", "Paid", "Balance"},
		balanceRows); err != nil {
		return nil, err
	}

	_ = f.SetColWidth(CollectionsSheet, "A", "A", 12)
	_ = f.SetColWidth(CollectionsSheet, "C", "C", 24)
	_ = f.SetColWidth(CollectionsSheet, "I", "I", 40)
	_ = f.SetColWidth(PaymentsSheet, "B", "B", 24)
	_ = f.SetColWidth(PaymentsSheet, "E", "F", 28)
	_ = f.SetColWidth(BalancesSheet, "B", "C", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("workbook exported",
		zap.Int("collections", len(collectionRows)),
		zap.Int("payments", len(paymentRows)),
		zap.Int("farmers", len(balanceRows)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write %s header: %w", sheet, err)
		}
	}
	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("write %s row %d: %w", sheet, r+2, err)
			}
		}
	}
	return nil
}
