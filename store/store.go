package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/saurabh-chakrabarthi/hermes/models"
)

var (
	// ErrConflict is returned when an insert violates a uniqueness
	// constraint (duplicate reference or id). The caller should resubmit.
	ErrConflict = errors.New("store: conflicting record")

	// ErrUnavailable is returned when the backing store cannot be reached.
	// Writes are never retried automatically.
	ErrUnavailable = errors.New("store: unavailable")

	ErrNotFound = errors.New("store: record not found")
)

// PaymentStore is the capability every storage backend satisfies. The
// payment service is written once against this interface; the relational,
// document and in-memory backends are interchangeable adapters.
//
// InsertPayment assigns the record's reference from an atomic sequence and
// persists the record together with its audit entry in one transaction:
// on any failure neither row is visible afterwards.
type PaymentStore interface {
	InsertPayment(ctx context.Context, payment *models.Payment, entry *models.AuditLog) error
	ListPayments(ctx context.Context) ([]models.Payment, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	CountPayments(ctx context.Context) (int64, error)
	ListAuditLogs(ctx context.Context) ([]models.AuditLog, error)
	Ping(ctx context.Context) error
}

const paymentSequenceName = "payments"

// FormatReference renders a sequence number as the human-facing label,
// e.g. 7 -> "REF007".
func FormatReference(seq int64) string {
	return fmt.Sprintf("REF%03d", seq)
}
