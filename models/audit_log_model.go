package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog documents a single mutating operation on a payment. Entries are
// written in the same transaction as the record they describe and are never
// updated or deleted afterwards.
type AuditLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id" bson:"_id"`
	PaymentID uuid.UUID `gorm:"type:uuid;not null;index" json:"paymentId" bson:"paymentId"`
	Action    string    `gorm:"size:20;not null" json:"action" bson:"action"`
	NewValue  string    `gorm:"type:text" json:"newValue" bson:"newValue"`
	UserAgent string    `gorm:"size:255" json:"userAgent" bson:"userAgent"`
	IPAddress string    `gorm:"size:45" json:"ipAddress" bson:"ipAddress"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

const AuditActionCreate = "CREATE"
