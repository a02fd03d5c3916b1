package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/milkcenter/internal/domain/models"
	"github.com/mamadbah2/milkcenter/internal/service/metrics"
	"github.com/mamadbah2/milkcenter/internal/service/procurement"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Ledger is the procurement ledger served over HTTP.
type Ledger interface {
	Hydrated() bool
	Today() string
	AddFarmer(ctx context.Context, req models.CreateFarmerRequest) (models.Farmer, error)
	ToggleFarmerStatus(ctx context.Context, farmerID string) (models.Farmer, error)
	AddCollection(ctx context.Context, req models.CreateCollectionRequest) (models.CollectionEntry, error)
	AddPayment(ctx context.Context, req models.CreatePaymentRequest) (models.PaymentRecord, error)
	ResetAll(ctx context.Context)
	Farmers(query string) []models.Farmer
	Collections(date, keyword string) []models.CollectionEntry
	Payments() []models.PaymentRecord
	Balances(query string) []models.FarmerBalance
	Dashboard(date string) models.DashboardTotals
	TopFarmers(limit int) []models.FarmerVolume
	FarmerName(farmerID string) string
}

// Exporter renders the ledger as a spreadsheet.
type Exporter interface {
	ExportWorkbook() ([]byte, error)
}

// LedgerHandler exposes the procurement ledger as a JSON API.
type LedgerHandler struct {
	ledger   Ledger
	exporter Exporter
	logger   *zap.Logger
}

// NewLedgerHandler constructs the HTTP handler adapter.
func NewLedgerHandler(ledger Ledger, exporter Exporter, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{ledger: ledger, exporter: exporter, logger: logger}
}

type collectionRow struct {
	models.CollectionEntry
	FarmerName string `json:"farmerName"`
}

type paymentRow struct {
	models.PaymentRecord
	FarmerName string `json:"farmerName"`
}

// Health reports liveness and whether stored data was loaded.
func (h *LedgerHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "hydrated": h.ledger.Hydrated()})
}

// ListFarmers returns farmers matching the optional q filter.
func (h *LedgerHandler) ListFarmers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"farmers": h.ledger.Farmers(c.Query("q"))})
}

// CreateFarmer registers a farmer.
func (h *LedgerHandler) CreateFarmer(c *gin.Context) {
	var req models.CreateFarmerRequest
	if !h.bind(c, &req) {
		return
	}

	farmer, err := h.ledger.AddFarmer(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, farmer)
}

// ToggleFarmer flips a farmer between active and inactive.
func (h *LedgerHandler) ToggleFarmer(c *gin.Context) {
	farmer, err := h.ledger.ToggleFarmerStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, farmer)
}

// ListCollections returns the entries for a date (default today) with footer totals.
func (h *LedgerHandler) ListCollections(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}

	entries := h.ledger.Collections(date, c.Query("q"))
	rows := make([]collectionRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, collectionRow{CollectionEntry: entry, FarmerName: h.ledger.FarmerName(entry.FarmerID)})
	}

	c.JSON(http.StatusOK, gin.H{
		"date":        date,
		"collections": rows,
		"summary":     metrics.SummarizeEntries(entries),
	})
}

// CreateCollection logs a collection entry.
func (h *LedgerHandler) CreateCollection(c *gin.Context) {
	var req models.CreateCollectionRequest
	if !h.bind(c, &req) {
		return
	}

	entry, err := h.ledger.AddCollection(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListPayments returns all payments, newest first.
func (h *LedgerHandler) ListPayments(c *gin.Context) {
	payments := h.ledger.Payments()
	rows := make([]paymentRow, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, paymentRow{PaymentRecord: p, FarmerName: h.ledger.FarmerName(p.FarmerID)})
	}
	c.JSON(http.StatusOK, gin.H{"payments": rows})
}

// CreatePayment records a payment.
func (h *LedgerHandler) CreatePayment(c *gin.Context) {
	var req models.CreatePaymentRequest
	if !h.bind(c, &req) {
		return
	}

	record, err := h.ledger.AddPayment(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ListBalances returns per-farmer balances and the total still owed.
func (h *LedgerHandler) ListBalances(c *gin.Context) {
	balances := h.ledger.Balances(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"balances":        balances,
		"outstandingDues": metrics.OutstandingDues(balances),
	})
}

// Dashboard returns the totals for a date and the three largest suppliers.
func (h *LedgerHandler) Dashboard(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totals":     h.ledger.Dashboard(date),
		"topFarmers": h.ledger.TopFarmers(metrics.DefaultTopLimit),
	})
}

// TopFarmers ranks farmers by volume.
func (h *LedgerHandler) TopFarmers(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, gin.H{"topFarmers": h.ledger.TopFarmers(limit)})
}

// Reset restores the demo dataset.
func (h *LedgerHandler) Reset(c *gin.Context) {
	h.ledger.ResetAll(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// Export streams the ledger workbook.
func (h *LedgerHandler) Export(c *gin.Context) {
	data, err := h.exporter.ExportWorkbook()
	if err != nil {
		h.logger.Error("failed to export workbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to export workbook"})
		return
	}

	filename := "milk-ledger-" + h.ledger.Today() + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *LedgerHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return false
	}
	return true
}

func (h *LedgerHandler) dateParam(c *gin.Context) (string, bool) {
	date := c.Query("date")
	if date == "" {
		return h.ledger.Today(), true
	}
	if _, err := time.Parse(procurement.DateLayout, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as YYYY-MM-DD"})
		return "", false
	}
	return date, true
}

func (h *LedgerHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, procurement.ErrMissingField), errors.Is(err, procurement.ErrInvalidValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, procurement.ErrFarmerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("ledger operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
