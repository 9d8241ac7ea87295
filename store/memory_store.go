package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/saurabh-chakrabarthi/hermes/models"
)

// MemoryStore keeps everything in process memory. It backs local
// development and the service tests; the mutex makes each insert atomic,
// so the record-plus-audit guarantee holds by construction.
type MemoryStore struct {
	mu       sync.RWMutex
	payments []models.Payment
	entries  []models.AuditLog
	seq      int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) InsertPayment(ctx context.Context, payment *models.Payment, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.payments {
		if p.ID == payment.ID {
			return ErrConflict
		}
	}

	s.seq++
	payment.Reference = FormatReference(s.seq)
	now := time.Now()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
		payment.UpdatedAt = now
	}

	entry.PaymentID = payment.ID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}

	s.payments = append(s.payments, *payment)
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *MemoryStore) ListPayments(ctx context.Context) ([]models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Payment, len(s.payments))
	copy(out, s.payments)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.payments {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CountPayments(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.payments)), nil
}

func (s *MemoryStore) ListAuditLogs(ctx context.Context) ([]models.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AuditLog, len(s.entries))
	copy(out, s.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
