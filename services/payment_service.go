package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saurabh-chakrabarthi/hermes/cache"
	"github.com/saurabh-chakrabarthi/hermes/models"
	"github.com/saurabh-chakrabarthi/hermes/store"
)

const (
	PaymentListCacheKey = "payments:all"
	PaymentListCacheTTL = 300 * time.Second
)

// CreatePaymentInput carries a validated submission plus the request
// provenance recorded in the audit log.
type CreatePaymentInput struct {
	Name          string
	Email         string
	Amount        float64
	School        string
	StudentID     string
	CountryFrom   string
	SenderAddress string
	CurrencyFrom  string

	RawPayload []byte
	UserAgent  string
	IPAddress  string
}

// PaymentService orchestrates the write pipeline (calculate, allocate,
// persist, invalidate cache) and the cache-aside read path. It is written
// once against the store and cache interfaces so backends stay swappable.
type PaymentService struct {
	store store.PaymentStore
	cache cache.Cache
	calc  *FeeCalculator
}

func NewPaymentService(st store.PaymentStore, c cache.Cache, calc *FeeCalculator) *PaymentService {
	return &PaymentService{store: st, cache: c, calc: calc}
}

// CreatePayment runs validation, fee computation and the transactional
// insert. A cache invalidation failure afterwards is non-fatal: the store
// is authoritative and the cache entry expires on its own within the TTL.
func (s *PaymentService) CreatePayment(ctx context.Context, in CreatePaymentInput) (*models.Payment, error) {
	breakdown, err := s.calc.Quote(in.Amount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	payment := &models.Payment{
		ID:             uuid.New(),
		Name:           in.Name,
		Email:          in.Email,
		StudentID:      defaultString(in.StudentID, "Unknown"),
		School:         defaultString(in.School, "Unknown"),
		Amount:         in.Amount,
		AmountReceived: breakdown.AmountReceived,
		FeePercentage:  breakdown.FeePercentage,
		FeeAmount:      breakdown.FeeAmount,
		FinalAmount:    breakdown.FinalAmount,
		Status:         breakdown.Status,
		CountryFrom:    defaultString(in.CountryFrom, "Unknown"),
		SenderAddress:  defaultString(in.SenderAddress, "Unknown"),
		CurrencyFrom:   strings.ToLower(defaultString(in.CurrencyFrom, "usd")),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	entry := &models.AuditLog{
		ID:        uuid.New(),
		Action:    models.AuditActionCreate,
		NewValue:  string(in.RawPayload),
		UserAgent: in.UserAgent,
		IPAddress: in.IPAddress,
		CreatedAt: now,
	}

	if err := s.store.InsertPayment(ctx, payment, entry); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, PaymentListCacheKey); err != nil {
		log.Printf("⚠️ Failed to invalidate payment list cache: %v", err)
	}

	return payment, nil
}

// ListPayments is the cache-aside read: serve the cached list when
// present, otherwise query the store and repopulate. A populate failure
// is non-fatal; the freshly queried data is returned regardless.
func (s *PaymentService) ListPayments(ctx context.Context) ([]models.Payment, error) {
	cached, ok, err := s.cache.Get(ctx, PaymentListCacheKey)
	if err != nil {
		log.Printf("⚠️ Payment list cache read failed: %v", err)
	} else if ok {
		var payments []models.Payment
		if err := json.Unmarshal([]byte(cached), &payments); err == nil {
			return payments, nil
		}
		log.Printf("⚠️ Discarding undecodable payment list cache entry")
	}

	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.populateListCache(ctx, payments); err != nil {
		log.Printf("⚠️ Failed to populate payment list cache: %v", err)
	}
	return payments, nil
}

// RefreshListCache rebuilds the cached list from the store. Used by the
// periodic warm job so dashboard reads rarely hit a cold cache.
func (s *PaymentService) RefreshListCache(ctx context.Context) error {
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return err
	}
	return s.populateListCache(ctx, payments)
}

func (s *PaymentService) populateListCache(ctx context.Context, payments []models.Payment) error {
	encoded, err := json.Marshal(payments)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, PaymentListCacheKey, string(encoded), PaymentListCacheTTL)
}

func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return s.store.GetPayment(ctx, id)
}

func (s *PaymentService) ListAuditLogs(ctx context.Context) ([]models.AuditLog, error) {
	return s.store.ListAuditLogs(ctx)
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
