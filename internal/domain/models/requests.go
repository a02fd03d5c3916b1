package models

// CreateFarmerRequest is the body accepted when registering a farmer.
type CreateFarmerRequest struct {
	Name         string  `json:"name" binding:"required"`
	Village      string  `json:"village" binding:"required"`
	Contact      string  `json:"contact"`
	Code         string  `json:"code"`
	RatePerLiter float64 `json:"ratePerLiter"`
}

// CreateCollectionRequest is the body accepted when logging milk.
// A zero RatePerLiter falls back to the farmer's contracted rate.
type CreateCollectionRequest struct {
	FarmerID       string  `json:"farmerId" binding:"required"`
	Date           string  `json:"date"`
	Shift          Shift   `json:"shift"`
	QuantityLiters float64 `json:"quantityLiters"`
	FatPercentage  float64 `json:"fatPercentage"`
	SNFPercentage  float64 `json:"snfPercentage"`
	RatePerLiter   float64 `json:"ratePerLiter"`
	Notes          string  `json:"notes"`
}

// CreatePaymentRequest is the body accepted when settling a farmer.
type CreatePaymentRequest struct {
	FarmerID  string        `json:"farmerId" binding:"required"`
	Date      string        `json:"date"`
	Amount    float64       `json:"amount" binding:"required"`
	Method    PaymentMethod `json:"method"`
	Reference string        `json:"reference"`
	Notes     string        `json:"notes"`
}
