package procurement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/milkcenter/internal/domain/models"
	"github.com/mamadbah2/milkcenter/internal/repository/slots"
	"github.com/mamadbah2/milkcenter/internal/service/metrics"
	"github.com/mamadbah2/milkcenter/internal/state"
)

// Slot names of the three procurement lists.
const (
	FarmersKey     = "milk-farmers"
	CollectionsKey = "milk-collections"
	PaymentsKey    = "milk-payments"
	DateLayout     = "2006-01-02"
)

var (
	// ErrMissingField indicates a required input was empty.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidValue indicates an enum input that is not recognised.
	ErrInvalidValue = errors.New("invalid value")
	// ErrFarmerNotFound indicates no farmer matched the id or code.
	ErrFarmerNotFound = errors.New("farmer not found")
)

// Snapshot is a point-in-time copy of the three lists.
type Snapshot struct {
	Farmers     []models.Farmer
	Collections []models.CollectionEntry
	Payments    []models.PaymentRecord
}

// Service owns the persisted farmer, collection and payment lists. New records
// are prepended so every list is newest first.
type Service struct {
	mu          sync.RWMutex
	farmers     *state.Persistent[[]models.Farmer]
	collections *state.Persistent[[]models.CollectionEntry]
	payments    *state.Persistent[[]models.PaymentRecord]
	logger      *zap.Logger
	now         func() time.Time
	newID       func() string
}

// NewService builds the ledger over medium with the demo dataset as defaults.
// now supplies the wall clock in the centre's timezone; nil means time.Now.
// The lists are not hydrated until Hydrate is called.
func NewService(medium slots.Medium, logger *zap.Logger, now func() time.Time) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}

	today := now()
	s := &Service{
		farmers:     state.New(FarmersKey, DefaultFarmers(), medium, logger),
		collections: state.New(CollectionsKey, DefaultCollections(today), medium, logger),
		payments:    state.New(PaymentsKey, DefaultPayments(today), medium, logger),
		logger:      logger,
		now:         now,
	}
	s.newID = func() string { return generateID(s.now) }
	return s
}

// Open builds the ledger and hydrates it from medium.
func Open(ctx context.Context, medium slots.Medium, logger *zap.Logger, now func() time.Time) *Service {
	s := NewService(medium, logger, now)
	s.Hydrate(ctx)
	return s
}

// Hydrate loads the three lists from the medium.
func (s *Service) Hydrate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	farmers := s.farmers.Hydrate(ctx)
	collections := s.collections.Hydrate(ctx)
	payments := s.payments.Hydrate(ctx)

	s.logger.Info("procurement ledger hydrated",
		zap.Int("farmers", len(farmers)),
		zap.Int("collections", len(collections)),
		zap.Int("payments", len(payments)))
}

// Hydrated reports whether all three lists finished their initial read.
func (s *Service) Hydrated() bool {
	return s.farmers.Hydrated() && s.collections.Hydrated() && s.payments.Hydrated()
}

// Today returns the current calendar date.
func (s *Service) Today() string {
	return s.now().Format(DateLayout)
}

// Snapshot copies the current lists.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Farmers:     slices.Clone(s.farmers.Get()),
		Collections: slices.Clone(s.collections.Get()),
		Payments:    slices.Clone(s.payments.Get()),
	}
}

// AddFarmer registers an active farmer. Name and village are required.
func (s *Service) AddFarmer(ctx context.Context, req models.CreateFarmerRequest) (models.Farmer, error) {
	name := strings.TrimSpace(req.Name)
	village := strings.TrimSpace(req.Village)
	if name == "" {
		return models.Farmer{}, fmt.Errorf("%w: name", ErrMissingField)
	}
	if village == "" {
		return models.Farmer{}, fmt.Errorf("%w: village", ErrMissingField)
	}

	farmer := models.Farmer{
		ID:           s.newID(),
		Name:         name,
		Village:      village,
		Contact:      strings.TrimSpace(req.Contact),
		Code:         strings.TrimSpace(req.Code),
		RatePerLiter: metrics.Round(finite(req.RatePerLiter), 2),
		IsActive:     true,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.farmers.Update(ctx, func(current []models.Farmer) []models.Farmer {
		return prepend(farmer, current)
	})

	s.logger.Info("farmer registered", zap.String("farmer_id", farmer.ID), zap.String("name", farmer.Name))
	return farmer, nil
}

// ToggleFarmerStatus flips the active flag of the farmer with the given id.
func (s *Service) ToggleFarmerStatus(ctx context.Context, farmerID string) (models.Farmer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.farmers.Get()
	idx := slices.IndexFunc(current, func(f models.Farmer) bool { return f.ID == farmerID })
	if idx < 0 {
		return models.Farmer{}, fmt.Errorf("%w: %s", ErrFarmerNotFound, farmerID)
	}

	updated := slices.Clone(current)
	updated[idx].IsActive = !updated[idx].IsActive
	s.farmers.Set(ctx, updated)

	s.logger.Info("farmer status toggled", zap.String("farmer_id", farmerID), zap.Bool("active", updated[idx].IsActive))
	return updated[idx], nil
}

// AddCollection logs a milk collection. A zero rate falls back to the farmer's
// contracted rate; the amount is fixed here and never recomputed.
func (s *Service) AddCollection(ctx context.Context, req models.CreateCollectionRequest) (models.CollectionEntry, error) {
	farmerID := strings.TrimSpace(req.FarmerID)
	if farmerID == "" {
		return models.CollectionEntry{}, fmt.Errorf("%w: farmerId", ErrMissingField)
	}

	shift := models.ShiftMorning
	if req.Shift != "" {
		parsed, ok := models.ParseShift(string(req.Shift))
		if !ok {
			return models.CollectionEntry{}, fmt.Errorf("%w: shift %q", ErrInvalidValue, req.Shift)
		}
		shift = parsed
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = s.Today()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rate := finite(req.RatePerLiter)
	if rate == 0 {
		if farmer, ok := findFarmer(s.farmers.Get(), farmerID); ok {
			rate = farmer.RatePerLiter
		}
	}
	quantity := finite(req.QuantityLiters)

	entry := models.CollectionEntry{
		ID:             s.newID(),
		FarmerID:       farmerID,
		Date:           date,
		Shift:          shift,
		QuantityLiters: metrics.Round(quantity, 2),
		FatPercentage:  metrics.Round(finite(req.FatPercentage), 2),
		SNFPercentage:  metrics.Round(finite(req.SNFPercentage), 2),
		RatePerLiter:   metrics.Round(rate, 2),
		Amount:         metrics.Round(quantity*rate, 2),
		Notes:          strings.TrimSpace(req.Notes),
	}

	s.collections.Update(ctx, func(current []models.CollectionEntry) []models.CollectionEntry {
		return prepend(entry, current)
	})

	s.logger.Info("collection logged",
		zap.String("entry_id", entry.ID),
		zap.String("farmer_id", entry.FarmerID),
		zap.String("date", entry.Date),
		zap.String("shift", string(entry.Shift)),
		zap.Float64("liters", entry.QuantityLiters),
		zap.Float64("amount", entry.Amount))
	return entry, nil
}

// AddPayment records a settlement. Farmer and a non-zero amount are required.
func (s *Service) AddPayment(ctx context.Context, req models.CreatePaymentRequest) (models.PaymentRecord, error) {
	farmerID := strings.TrimSpace(req.FarmerID)
	if farmerID == "" {
		return models.PaymentRecord{}, fmt.Errorf("%w: farmerId", ErrMissingField)
	}
	amount := finite(req.Amount)
	if amount == 0 {
		return models.PaymentRecord{}, fmt.Errorf("%w: amount", ErrMissingField)
	}

	method := models.PaymentCash
	if req.Method != "" {
		parsed, ok := models.ParsePaymentMethod(string(req.Method))
		if !ok {
			return models.PaymentRecord{}, fmt.Errorf("%w: method %q", ErrInvalidValue, req.Method)
		}
		method = parsed
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = s.Today()
	}

	record := models.PaymentRecord{
		ID:        s.newID(),
		FarmerID:  farmerID,
		Date:      date,
		Amount:    metrics.Round(amount, 2),
		Method:    method,
		Reference: strings.TrimSpace(req.Reference),
		Notes:     strings.TrimSpace(req.Notes),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments.Update(ctx, func(current []models.PaymentRecord) []models.PaymentRecord {
		return prepend(record, current)
	})

	s.logger.Info("payment recorded",
		zap.String("payment_id", record.ID),
		zap.String("farmer_id", record.FarmerID),
		zap.Float64("amount", record.Amount),
		zap.String("method", string(record.Method)))
	return record, nil
}

// ResetAll restores the demo dataset and clears the stored slots.
func (s *Service) ResetAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.farmers.Reset(ctx)
	s.collections.Reset(ctx)
	s.payments.Reset(ctx)

	s.logger.Info("procurement data reset to defaults")
}

// Farmers lists farmers whose name, village, contact or code contains query.
func (s *Service) Farmers(query string) []models.Farmer {
	q := strings.ToLower(strings.TrimSpace(query))
	farmers := s.Snapshot().Farmers
	if q == "" {
		return farmers
	}
	return slices.DeleteFunc(farmers, func(f models.Farmer) bool {
		return !containsAny(q, f.Name, f.Village, f.Contact, f.Code)
	})
}

// ActiveFarmers lists farmers that may still supply milk.
func (s *Service) ActiveFarmers() []models.Farmer {
	return slices.DeleteFunc(s.Snapshot().Farmers, func(f models.Farmer) bool { return !f.IsActive })
}

// FindFarmer resolves a farmer by id or, case-insensitively, by code.
func (s *Service) FindFarmer(ref string) (models.Farmer, bool) {
	return findFarmer(s.Snapshot().Farmers, ref)
}

// FarmerName returns the farmer's name or a placeholder for unknown ids.
func (s *Service) FarmerName(farmerID string) string {
	if farmer, ok := s.FindFarmer(farmerID); ok {
		return farmer.Name
	}
	return models.UnknownFarmerName
}

// Collections returns the entries logged on date matching keyword against the
// farmer's name, village and contact and the entry notes, ordered by shift.
func (s *Service) Collections(date, keyword string) []models.CollectionEntry {
	snap := s.Snapshot()
	return FilterCollections(snap.Farmers, snap.Collections, date, keyword)
}

// FilterCollections is the pure form of Service.Collections.
func FilterCollections(farmers []models.Farmer, collections []models.CollectionEntry, date, keyword string) []models.CollectionEntry {
	q := strings.ToLower(strings.TrimSpace(keyword))
	byID := make(map[string]models.Farmer, len(farmers))
	for _, f := range farmers {
		byID[f.ID] = f
	}

	out := make([]models.CollectionEntry, 0)
	for _, entry := range collections {
		if entry.Date != date {
			continue
		}
		if q != "" {
			f := byID[entry.FarmerID]
			if !containsAny(q, f.Name, f.Village, f.Contact, entry.Notes) {
				continue
			}
		}
		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Shift < out[j].Shift
	})
	return out
}

// Payments returns all payments, newest first.
func (s *Service) Payments() []models.PaymentRecord {
	return s.Snapshot().Payments
}

// Balances returns per-farmer balances filtered by query, largest balance first.
func (s *Service) Balances(query string) []models.FarmerBalance {
	snap := s.Snapshot()
	balances := metrics.ComputeFarmerBalances(snap.Farmers, snap.Collections, snap.Payments)

	q := strings.ToLower(strings.TrimSpace(query))
	if q != "" {
		balances = slices.DeleteFunc(balances, func(b models.FarmerBalance) bool {
			return !containsAny(q, b.Farmer.Name, b.Farmer.Village, b.Farmer.Contact, b.Farmer.Code)
		})
	}

	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].Balance > balances[j].Balance
	})
	return balances
}

// FarmerBalance returns the balance of the farmer matching ref (id or code).
func (s *Service) FarmerBalance(ref string) (models.FarmerBalance, error) {
	snap := s.Snapshot()
	farmer, ok := findFarmer(snap.Farmers, ref)
	if !ok {
		return models.FarmerBalance{}, fmt.Errorf("%w: %s", ErrFarmerNotFound, ref)
	}
	return metrics.ComputeFarmerBalances([]models.Farmer{farmer}, snap.Collections, snap.Payments)[0], nil
}

// Daily returns the metrics for date.
func (s *Service) Daily(date string) models.DailyMetrics {
	return metrics.CalculateDailyMetrics(date, s.Snapshot().Collections)
}

// Dashboard returns the totals for date.
func (s *Service) Dashboard(date string) models.DashboardTotals {
	snap := s.Snapshot()
	return metrics.ComputeDashboardTotals(snap.Farmers, snap.Collections, snap.Payments, date)
}

// TopFarmers ranks farmers by volume supplied.
func (s *Service) TopFarmers(limit int) []models.FarmerVolume {
	snap := s.Snapshot()
	return metrics.TopPerformingFarmers(snap.Farmers, snap.Collections, limit)
}

func findFarmer(farmers []models.Farmer, ref string) (models.Farmer, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Farmer{}, false
	}
	for _, f := range farmers {
		if f.ID == ref {
			return f, true
		}
	}
	for _, f := range farmers {
		if f.Code != "" && strings.EqualFold(f.Code, ref) {
			return f, true
		}
	}
	return models.Farmer{}, false
}

func containsAny(q string, fields ...string) bool {
	for _, field := range fields {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func prepend[T any](item T, list []T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, item)
	return append(out, list...)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// generateID returns a random UUID, or the current Unix millisecond timestamp
// when the random source fails.
func generateID(now func() time.Time) string {
	id, err := uuid.NewRandom()
	if err != nil {
		return strconv.FormatInt(now().UnixMilli(), 10)
	}
	return id.String()
}
