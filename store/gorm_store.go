package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/saurabh-chakrabarthi/hermes/models"
	"gorm.io/gorm"
)

// GormStore is the authoritative relational backend.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InsertPayment(ctx context.Context, payment *models.Payment, entry *models.AuditLog) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq int64
		err := tx.Raw(`INSERT INTO reference_sequences (name, value) VALUES (?, 1)
			ON CONFLICT (name) DO UPDATE SET value = reference_sequences.value + 1
			RETURNING value`, paymentSequenceName).Scan(&seq).Error
		if err != nil {
			return err
		}
		payment.Reference = FormatReference(seq)

		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		entry.PaymentID = payment.ID
		return tx.Create(entry).Error
	})
	return translateGormError(err)
}

func (s *GormStore) ListPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&payments).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return payments, nil
}

func (s *GormStore) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, translateGormError(err)
	}
	return &payment, nil
}

func (s *GormStore) CountPayments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Payment{}).Count(&count).Error
	if err != nil {
		return 0, translateGormError(err)
	}
	return count, nil
}

func (s *GormStore) ListAuditLogs(ctx context.Context) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&entries).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return entries, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func translateGormError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
