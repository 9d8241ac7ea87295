package models

import (
	"time"

	"github.com/google/uuid"
)

// Settlement status of a payment, derived from comparing the simulated
// received amount against the requested tuition amount.
const (
	StatusExact        = "EXACT"
	StatusUnderpayment = "UNDERPAYMENT"
	StatusOverpayment  = "OVERPAYMENT"
)

type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id" bson:"_id"`
	Reference string    `gorm:"size:20;not null;unique" json:"reference" bson:"reference"`

	Name      string `gorm:"size:100;not null" json:"name" bson:"name"`
	Email     string `gorm:"size:255;not null" json:"email" bson:"email"`
	StudentID string `gorm:"size:50;default:'Unknown'" json:"studentId" bson:"studentId"`
	School    string `gorm:"size:100;default:'Unknown'" json:"school" bson:"school"`

	Amount         float64 `gorm:"type:numeric(12,2);not null" json:"amount" bson:"amount"`
	AmountReceived float64 `gorm:"type:numeric(12,2);not null" json:"amountReceived" bson:"amountReceived"`
	FeePercentage  float64 `gorm:"type:numeric(5,2);not null" json:"feePercentage" bson:"feePercentage"`
	FeeAmount      float64 `gorm:"type:numeric(12,2);not null" json:"feeAmount" bson:"feeAmount"`
	FinalAmount    float64 `gorm:"type:numeric(12,2);not null" json:"finalAmount" bson:"finalAmount"`
	Status         string  `gorm:"size:20;not null" json:"status" bson:"status"`

	CountryFrom   string `gorm:"size:50;default:'Unknown'" json:"countryFrom" bson:"countryFrom"`
	SenderAddress string `gorm:"type:text" json:"senderAddress" bson:"senderAddress"`
	CurrencyFrom  string `gorm:"size:3;default:'usd'" json:"currencyFrom" bson:"currencyFrom"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ReferenceSequence backs reference-number allocation. A single row per
// sequence name is incremented atomically inside the insert transaction,
// so two concurrent writers can never draw the same label.
type ReferenceSequence struct {
	Name  string `gorm:"primaryKey;size:50"`
	Value int64  `gorm:"not null"`
}
