package models

// ShiftBreakdown holds liters collected per shift.
type ShiftBreakdown struct {
	Morning float64 `json:"Morning"`
	Evening float64 `json:"Evening"`
}

// DailyMetrics aggregates the collections logged on a single calendar date.
type DailyMetrics struct {
	Date           string         `json:"date"`
	TotalLiters    float64        `json:"totalLiters"`
	TotalAmount    float64        `json:"totalAmount"`
	AverageFat     float64        `json:"averageFat"`
	AverageSNF     float64        `json:"averageSNF"`
	UniqueFarmers  int            `json:"uniqueFarmers"`
	ShiftBreakdown ShiftBreakdown `json:"shiftBreakdown"`
}

// FarmerBalance is the settlement position of one farmer across all history.
// A negative Balance means the farmer was overpaid.
type FarmerBalance struct {
	Farmer      Farmer  `json:"farmer"`
	TotalLiters float64 `json:"totalLiters"`
	TotalAmount float64 `json:"totalAmount"`
	AmountPaid  float64 `json:"amountPaid"`
	Balance     float64 `json:"balance"`
}

// FarmerVolume is a ranking row for top supplying farmers.
type FarmerVolume struct {
	Farmer      Farmer  `json:"farmer"`
	TotalLiters float64 `json:"totalLiters"`
	TotalAmount float64 `json:"totalAmount"`
}

// DashboardTotals combines one day's metrics with whole-history aggregates.
type DashboardTotals struct {
	TotalFarmers      int          `json:"totalFarmers"`
	ActiveFarmers     int          `json:"activeFarmers"`
	TotalCollections  int          `json:"totalCollections"`
	OverallLiters     float64      `json:"overallLiters"`
	OverallAmount     float64      `json:"overallAmount"`
	OverallAverageFat float64      `json:"overallAverageFat"`
	OverallAverageSNF float64      `json:"overallAverageSNF"`
	TotalPaid         float64      `json:"totalPaid"`
	TotalOutstanding  float64      `json:"totalOutstanding"`
	Daily             DailyMetrics `json:"daily"`
}

// EntrySummary totals an already filtered list of collection entries.
type EntrySummary struct {
	Entries    int     `json:"entries"`
	Liters     float64 `json:"liters"`
	Amount     float64 `json:"amount"`
	AverageFat float64 `json:"averageFat"`
	AverageSNF float64 `json:"averageSNF"`
}
