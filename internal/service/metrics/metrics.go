// Package metrics derives dashboard figures from the procurement lists. Every
// function is pure: inputs are only read, and identical inputs give identical
// outputs, so callers recompute on each request instead of caching.
package metrics

import (
	"math"
	"sort"

	"github.com/mamadbah2/milkcenter/internal/domain/models"
)

// DefaultTopLimit is the ranking size used by the dashboard.
const DefaultTopLimit = 3

// Round rounds half-up to the given number of decimal places.
func Round(value float64, precision int) float64 {
	multiplier := math.Pow(10, float64(precision))
	return math.Floor(value*multiplier+0.5) / multiplier
}

func round2(value float64) float64 {
	return Round(value, 2)
}

// divisor floors an entry count at 1 so that averages over nothing are 0.
func divisor(count int) float64 {
	if count == 0 {
		return 1
	}
	return float64(count)
}

// CalculateDailyMetrics aggregates the entries whose date equals date exactly.
func CalculateDailyMetrics(date string, collections []models.CollectionEntry) models.DailyMetrics {
	var (
		liters, amount, fat, snf float64
		breakdown                models.ShiftBreakdown
		count                    int
	)
	farmers := make(map[string]struct{})

	for _, entry := range collections {
		if entry.Date != date {
			continue
		}
		count++
		liters += entry.QuantityLiters
		amount += entry.Amount
		fat += entry.FatPercentage
		snf += entry.SNFPercentage
		farmers[entry.FarmerID] = struct{}{}

		switch entry.Shift {
		case models.ShiftMorning:
			breakdown.Morning += entry.QuantityLiters
		case models.ShiftEvening:
			breakdown.Evening += entry.QuantityLiters
		}
	}

	n := divisor(count)

	return models.DailyMetrics{
		Date:          date,
		TotalLiters:   round2(liters),
		TotalAmount:   round2(amount),
		AverageFat:    round2(fat / n),
		AverageSNF:    round2(snf / n),
		UniqueFarmers: len(farmers),
		ShiftBreakdown: models.ShiftBreakdown{
			Morning: round2(breakdown.Morning),
			Evening: round2(breakdown.Evening),
		},
	}
}

// ComputeFarmerBalances returns one row per farmer in the order given.
// Collections and payments that reference no listed farmer are ignored here.
func ComputeFarmerBalances(farmers []models.Farmer, collections []models.CollectionEntry, payments []models.PaymentRecord) []models.FarmerBalance {
	type totals struct {
		liters, amount, paid float64
	}

	byFarmer := make(map[string]*totals, len(farmers))
	for _, farmer := range farmers {
		byFarmer[farmer.ID] = &totals{}
	}

	for _, entry := range collections {
		if t, ok := byFarmer[entry.FarmerID]; ok {
			t.liters += entry.QuantityLiters
			t.amount += entry.Amount
		}
	}
	for _, payment := range payments {
		if t, ok := byFarmer[payment.FarmerID]; ok {
			t.paid += payment.Amount
		}
	}

	balances := make([]models.FarmerBalance, 0, len(farmers))
	for _, farmer := range farmers {
		t := byFarmer[farmer.ID]
		balances = append(balances, models.FarmerBalance{
			Farmer:      farmer,
			TotalLiters: round2(t.liters),
			TotalAmount: round2(t.amount),
			AmountPaid:  round2(t.paid),
			Balance:     round2(t.amount - t.paid),
		})
	}

	return balances
}

// ComputeDashboardTotals combines the metrics for selectedDate with
// whole-history sums. TotalOutstanding is overall billed minus overall paid,
// computed directly rather than from per-farmer balances, so payments to
// unknown farmers still count against it.
func ComputeDashboardTotals(farmers []models.Farmer, collections []models.CollectionEntry, payments []models.PaymentRecord, selectedDate string) models.DashboardTotals {
	var liters, amount, fat, snf, paid float64

	for _, entry := range collections {
		liters += entry.QuantityLiters
		amount += entry.Amount
		fat += entry.FatPercentage
		snf += entry.SNFPercentage
	}
	for _, payment := range payments {
		paid += payment.Amount
	}

	active := 0
	for _, farmer := range farmers {
		if farmer.IsActive {
			active++
		}
	}

	n := divisor(len(collections))

	return models.DashboardTotals{
		TotalFarmers:      len(farmers),
		ActiveFarmers:     active,
		TotalCollections:  len(collections),
		OverallLiters:     round2(liters),
		OverallAmount:     round2(amount),
		OverallAverageFat: round2(fat / n),
		OverallAverageSNF: round2(snf / n),
		TotalPaid:         round2(paid),
		TotalOutstanding:  round2(amount - paid),
		Daily:             CalculateDailyMetrics(selectedDate, collections),
	}
}

// TopPerformingFarmers ranks farmers by liters supplied, highest first, and
// keeps at most limit rows. Farmers with equal volume keep their input order;
// callers should not depend on that.
func TopPerformingFarmers(farmers []models.Farmer, collections []models.CollectionEntry, limit int) []models.FarmerVolume {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	balances := ComputeFarmerBalances(farmers, collections, nil)
	ranked := make([]models.FarmerVolume, 0, len(balances))
	for _, b := range balances {
		ranked = append(ranked, models.FarmerVolume{
			Farmer:      b.Farmer,
			TotalLiters: b.TotalLiters,
			TotalAmount: b.TotalAmount,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalLiters > ranked[j].TotalLiters
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// OutstandingDues sums only positive balances: what is still owed to farmers,
// ignoring overpayments. It can differ from DashboardTotals.TotalOutstanding.
func OutstandingDues(balances []models.FarmerBalance) float64 {
	var total float64
	for _, b := range balances {
		if b.Balance > 0 {
			total += b.Balance
		}
	}
	return round2(total)
}

// SummarizeEntries totals a list of entries that has already been filtered.
func SummarizeEntries(entries []models.CollectionEntry) models.EntrySummary {
	var liters, amount, fat, snf float64
	for _, entry := range entries {
		liters += entry.QuantityLiters
		amount += entry.Amount
		fat += entry.FatPercentage
		snf += entry.SNFPercentage
	}

	n := divisor(len(entries))

	return models.EntrySummary{
		Entries:    len(entries),
		Liters:     round2(liters),
		Amount:     round2(amount),
		AverageFat: round2(fat / n),
		AverageSNF: round2(snf / n),
	}
}
