package models

// Shift identifies one of the two daily collection windows.
type Shift string

const (
	ShiftMorning Shift = "Morning"
	ShiftEvening Shift = "Evening"
)

// PaymentMethod enumerates how a farmer was settled.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Cash"
	PaymentBankTransfer PaymentMethod = "Bank Transfer"
	PaymentUPI          PaymentMethod = "UPI"
	PaymentCheque       PaymentMethod = "Cheque"
)

// Farmer is a registered milk producer.
type Farmer struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Village      string  `json:"village"`
	Contact      string  `json:"contact"`
	Code         string  `json:"code,omitempty"`
	RatePerLiter float64 `json:"ratePerLiter"`
	IsActive     bool    `json:"isActive"`
}

// CollectionEntry is one shift-wise procurement transaction. Amount is fixed at
// creation and is never recomputed from quantity and rate.
type CollectionEntry struct {
	ID             string  `json:"id"`
	FarmerID       string  `json:"farmerId"`
	Date           string  `json:"date"`
	Shift          Shift   `json:"shift"`
	QuantityLiters float64 `json:"quantityLiters"`
	FatPercentage  float64 `json:"fatPercentage"`
	SNFPercentage  float64 `json:"snfPercentage"`
	RatePerLiter   float64 `json:"ratePerLiter"`
	Amount         float64 `json:"amount"`
	Notes          string  `json:"notes,omitempty"`
}

// PaymentRecord is a settlement made to a farmer.
type PaymentRecord struct {
	ID        string        `json:"id"`
	FarmerID  string        `json:"farmerId"`
	Date      string        `json:"date"`
	Amount    float64       `json:"amount"`
	Method    PaymentMethod `json:"method"`
	Reference string        `json:"reference,omitempty"`
	Notes     string        `json:"notes,omitempty"`
}

// UnknownFarmerName is displayed for records whose farmer cannot be resolved.
const UnknownFarmerName = "Unknown farmer"

// ParseShift maps free text onto a Shift. The second value reports whether the
// text was recognised.
func ParseShift(value string) (Shift, bool) {
	switch normalize(value) {
	case "morning", "am", "m":
		return ShiftMorning, true
	case "evening", "pm", "e":
		return ShiftEvening, true
	default:
		return "", false
	}
}

// ParsePaymentMethod maps free text onto a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, bool) {
	switch normalize(value) {
	case "cash":
		return PaymentCash, true
	case "bank", "bank transfer", "neft", "transfer":
		return PaymentBankTransfer, true
	case "upi":
		return PaymentUPI, true
	case "cheque", "check":
		return PaymentCheque, true
	default:
		return "", false
	}
}
