package procurement

import (
	"time"

	"github.com/mamadbah2/milkcenter/internal/domain/models"
)

// DefaultFarmers is the demo registry restored by a reset.
func DefaultFarmers() []models.Farmer {
	return []models.Farmer{
		{ID: "farmer-01", Name: "Anil Kumar", Village: "Holenarasipur", Contact: "98765 43210", Code: "F001", RatePerLiter: 34.5, IsActive: true},
		{ID: "farmer-02", Name: "Savitri Hegde", Village: "Shivamogga", Contact: "99876 54321", Code: "F002", RatePerLiter: 33.8, IsActive: true},
		{ID: "farmer-03", Name: "Mahesh Patil", Village: "Ranebennur", Contact: "91234 56789", Code: "F003", RatePerLiter: 35.2, IsActive: true},
	}
}

// DefaultCollections returns the demo collections dated relative to today.
func DefaultCollections(today time.Time) []models.CollectionEntry {
	todayISO := today.Format(DateLayout)
	yesterdayISO := today.AddDate(0, 0, -1).Format(DateLayout)

	return []models.CollectionEntry{
		{ID: "col-01", FarmerID: "farmer-01", Date: todayISO, Shift: models.ShiftMorning, QuantityLiters: 28, FatPercentage: 3.9, SNFPercentage: 8.4, RatePerLiter: 34.5, Amount: 966, Notes: "Clean sample"},
		{ID: "col-02", FarmerID: "farmer-02", Date: todayISO, Shift: models.ShiftEvening, QuantityLiters: 24, FatPercentage: 3.8, SNFPercentage: 8.2, RatePerLiter: 33.8, Amount: 811.2},
		{ID: "col-03", FarmerID: "farmer-03", Date: yesterdayISO, Shift: models.ShiftMorning, QuantityLiters: 30, FatPercentage: 4.1, SNFPercentage: 8.6, RatePerLiter: 35.2, Amount: 1056},
	}
}

// DefaultPayments returns the demo payments dated yesterday.
func DefaultPayments(today time.Time) []models.PaymentRecord {
	yesterdayISO := today.AddDate(0, 0, -1).Format(DateLayout)

	return []models.PaymentRecord{
		{ID: "pay-01", FarmerID: "farmer-01", Date: yesterdayISO, Amount: 1500, Method: models.PaymentBankTransfer, Reference: "NEFT2811X"},
		{ID: "pay-02", FarmerID: "farmer-02", Date: yesterdayISO, Amount: 1200, Method: models.PaymentUPI, Reference: "UPI812AA"},
	}
}
