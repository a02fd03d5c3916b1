package models

import "time"

// DailyReport is the closing snapshot archived for a procurement day.
type DailyReport struct {
	Date             string    `bson:"date" json:"date"`
	TotalLiters      float64   `bson:"total_liters" json:"total_liters"`
	TotalAmount      float64   `bson:"total_amount" json:"total_amount"`
	MorningLiters    float64   `bson:"morning_liters" json:"morning_liters"`
	EveningLiters    float64   `bson:"evening_liters" json:"evening_liters"`
	AverageFat       float64   `bson:"average_fat" json:"average_fat"`
	AverageSNF       float64   `bson:"average_snf" json:"average_snf"`
	UniqueFarmers    int       `bson:"unique_farmers" json:"unique_farmers"`
	TotalPaid        float64   `bson:"total_paid" json:"total_paid"`
	TotalOutstanding float64   `bson:"total_outstanding" json:"total_outstanding"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}
