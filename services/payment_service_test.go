package services

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/saurabh-chakrabarthi/hermes/cache"
	"github.com/saurabh-chakrabarthi/hermes/models"
	"github.com/saurabh-chakrabarthi/hermes/store"
)

func newTestService() (*PaymentService, *store.MemoryStore, *cache.MemoryCache) {
	st := store.NewMemoryStore()
	c := cache.NewMemoryCache()
	svc := NewPaymentService(st, c, NewFeeCalculator(rand.NewSource(99)))
	return svc, st, c
}

func validInput() CreatePaymentInput {
	return CreatePaymentInput{
		Name:       "Jane Doe",
		Email:      "jane@x.edu",
		Amount:     40000,
		RawPayload: []byte(`{"name":"Jane Doe","email":"jane@x.edu","amount":40000}`),
		UserAgent:  "test-agent",
		IPAddress:  "10.0.0.1",
	}
}

func TestCreatePayment_AssignsSequentialReferences(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	refPattern := regexp.MustCompile(`^REF\d{3}$`)
	for i, want := range []string{"REF001", "REF002", "REF003"} {
		payment, err := svc.CreatePayment(ctx, validInput())
		if err != nil {
			t.Fatalf("CreatePayment #%d returned error: %v", i+1, err)
		}
		if !refPattern.MatchString(payment.Reference) {
			t.Errorf("reference %q does not match REF\\d{3}", payment.Reference)
		}
		if payment.Reference != want {
			t.Errorf("reference = %q, want %q", payment.Reference, want)
		}
	}
}

func TestCreatePayment_AppliesDefaults(t *testing.T) {
	svc, _, _ := newTestService()

	payment, err := svc.CreatePayment(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreatePayment returned error: %v", err)
	}

	if payment.School != "Unknown" {
		t.Errorf("School = %q, want Unknown", payment.School)
	}
	if payment.StudentID != "Unknown" {
		t.Errorf("StudentID = %q, want Unknown", payment.StudentID)
	}
	if payment.CountryFrom != "Unknown" {
		t.Errorf("CountryFrom = %q, want Unknown", payment.CountryFrom)
	}
	if payment.SenderAddress != "Unknown" {
		t.Errorf("SenderAddress = %q, want Unknown", payment.SenderAddress)
	}
	if payment.CurrencyFrom != "usd" {
		t.Errorf("CurrencyFrom = %q, want usd", payment.CurrencyFrom)
	}
	if payment.ID == uuid.Nil {
		t.Error("payment ID was not assigned")
	}
}

func TestCreatePayment_ComputesFees(t *testing.T) {
	svc, _, _ := newTestService()

	payment, err := svc.CreatePayment(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreatePayment returned error: %v", err)
	}

	if payment.FeePercentage != 3.0 {
		t.Errorf("FeePercentage = %v, want 3.0", payment.FeePercentage)
	}
	if payment.FeeAmount != 1200.00 {
		t.Errorf("FeeAmount = %v, want 1200.00", payment.FeeAmount)
	}
	if payment.FinalAmount != 41200.00 {
		t.Errorf("FinalAmount = %v, want 41200.00", payment.FinalAmount)
	}
	if payment.AmountReceived < 32000 || payment.AmountReceived > 48000 {
		t.Errorf("AmountReceived = %v, want within [32000, 48000]", payment.AmountReceived)
	}
}

func TestCreatePayment_WritesAuditEntryAtomically(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	payment, err := svc.CreatePayment(ctx, validInput())
	if err != nil {
		t.Fatalf("CreatePayment returned error: %v", err)
	}

	entries, err := st.ListAuditLogs(ctx)
	if err != nil {
		t.Fatalf("ListAuditLogs returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.PaymentID != payment.ID {
		t.Errorf("audit PaymentID = %s, want %s", entry.PaymentID, payment.ID)
	}
	if entry.Action != models.AuditActionCreate {
		t.Errorf("audit Action = %q, want CREATE", entry.Action)
	}
	if entry.NewValue == "" {
		t.Error("audit NewValue is empty, want the raw payload snapshot")
	}
	if entry.UserAgent != "test-agent" || entry.IPAddress != "10.0.0.1" {
		t.Errorf("audit provenance = (%q, %q), want (test-agent, 10.0.0.1)", entry.UserAgent, entry.IPAddress)
	}
}

func TestCreatePayment_InvalidAmountLeavesNoRecord(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	in := validInput()
	in.Amount = -5
	_, err := svc.CreatePayment(ctx, in)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("CreatePayment error = %v, want ErrInvalidAmount", err)
	}

	count, err := st.CountPayments(ctx)
	if err != nil {
		t.Fatalf("CountPayments returned error: %v", err)
	}
	if count != 0 {
		t.Errorf("payment count = %d after rejected submission, want 0", count)
	}
}

// failingStore aborts every insert the way a rolled-back transaction
// does: the error surfaces and nothing becomes visible.
type failingStore struct {
	*store.MemoryStore
}

func (s *failingStore) InsertPayment(ctx context.Context, payment *models.Payment, entry *models.AuditLog) error {
	return store.ErrUnavailable
}

func TestCreatePayment_StoreFailureLeavesNoVisibleRecord(t *testing.T) {
	st := &failingStore{store.NewMemoryStore()}
	svc := NewPaymentService(st, cache.NewMemoryCache(), NewFeeCalculator(rand.NewSource(1)))
	ctx := context.Background()

	_, err := svc.CreatePayment(ctx, validInput())
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("CreatePayment error = %v, want ErrUnavailable", err)
	}

	payments, err := svc.ListPayments(ctx)
	if err != nil {
		t.Fatalf("ListPayments returned error: %v", err)
	}
	if len(payments) != 0 {
		t.Errorf("expected no visible payments after failed insert, got %d", len(payments))
	}
}

// brokenCache fails every operation; cache trouble must never fail a
// write or a read that the store can serve.
type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errors.New("cache down")
}
func (brokenCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errors.New("cache down")
}
func (brokenCache) Invalidate(ctx context.Context, key string) error {
	return errors.New("cache down")
}
func (brokenCache) Ping(ctx context.Context) error {
	return errors.New("cache down")
}

func TestCacheFailuresAreNonFatal(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewPaymentService(st, brokenCache{}, NewFeeCalculator(rand.NewSource(1)))
	ctx := context.Background()

	payment, err := svc.CreatePayment(ctx, validInput())
	if err != nil {
		t.Fatalf("CreatePayment with broken cache returned error: %v", err)
	}
	if payment.Reference != "REF001" {
		t.Errorf("reference = %q, want REF001", payment.Reference)
	}

	payments, err := svc.ListPayments(ctx)
	if err != nil {
		t.Fatalf("ListPayments with broken cache returned error: %v", err)
	}
	if len(payments) != 1 {
		t.Errorf("expected 1 payment, got %d", len(payments))
	}
}

func TestListPayments_RoundTripPersistedFields(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	in := validInput()
	in.School = "MIT"
	in.StudentID = "MIT001"
	in.CountryFrom = "USA"
	in.SenderAddress = "123 Main St"
	in.CurrencyFrom = "eur"

	created, err := svc.CreatePayment(ctx, in)
	if err != nil {
		t.Fatalf("CreatePayment returned error: %v", err)
	}

	payments, err := svc.ListPayments(ctx)
	if err != nil {
		t.Fatalf("ListPayments returned error: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments))
	}

	got := payments[0]
	if got.ID != created.ID ||
		got.Reference != created.Reference ||
		got.Name != created.Name ||
		got.Email != created.Email ||
		got.StudentID != created.StudentID ||
		got.School != created.School ||
		got.Amount != created.Amount ||
		got.AmountReceived != created.AmountReceived ||
		got.FeePercentage != created.FeePercentage ||
		got.FeeAmount != created.FeeAmount ||
		got.FinalAmount != created.FinalAmount ||
		got.Status != created.Status ||
		got.CountryFrom != created.CountryFrom ||
		got.SenderAddress != created.SenderAddress ||
		got.CurrencyFrom != created.CurrencyFrom {
		t.Errorf("listed payment differs from created payment:\n got %+v\nwant %+v", got, created)
	}
}

func TestListPayments_CacheMasksOutOfBandWrites(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreatePayment(ctx, validInput()); err != nil {
		t.Fatalf("CreatePayment returned error: %v", err)
	}

	first, err := svc.ListPayments(ctx)
	if err != nil {
		t.Fatalf("first ListPayments returned error: %v", err)
	}

	// Mutate the store behind the cache's back.
	outOfBand := &models.Payment{ID: uuid.New(), Name: "Ghost", Email: "ghost@x.edu", Amount: 10}
	if err := st.InsertPayment(ctx, outOfBand, &models.AuditLog{ID: uuid.New(), Action: models.AuditActionCreate}); err != nil {
		t.Fatalf("out-of-band insert returned error: %v", err)
	}

	second, err := svc.ListPayments(ctx)
	if err != nil {
		t.Fatalf("second ListPayments returned error: %v", err)
	}
	if len(second) != len(first) {
		t.Errorf("cached list length = %d, want %d (cache should mask the out-of-band write)", len(second), len(first))
	}
}

func TestCreatePayment_InvalidatesListCache(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreatePayment(ctx, validInput()); err != nil {
		t.Fatalf("CreatePayment returned error: %v", err)
	}
	if _, err := svc.ListPayments(ctx); err != nil {
		t.Fatalf("ListPayments returned error: %v", err)
	}

	// The write invalidates the freshly populated cache, so the next read
	// must see the new record.
	if _, err := svc.CreatePayment(ctx, validInput()); err != nil {
		t.Fatalf("second CreatePayment returned error: %v", err)
	}
	payments, err := svc.ListPayments(ctx)
	if err != nil {
		t.Fatalf("ListPayments after second create returned error: %v", err)
	}
	if len(payments) != 2 {
		t.Errorf("expected 2 payments after invalidation, got %d", len(payments))
	}
}

func TestRefreshListCache_PopulatesCache(t *testing.T) {
	svc, st, c := newTestService()
	ctx := context.Background()

	if _, err := svc.CreatePayment(ctx, validInput()); err != nil {
		t.Fatalf("CreatePayment returned error: %v", err)
	}
	if err := svc.RefreshListCache(ctx); err != nil {
		t.Fatalf("RefreshListCache returned error: %v", err)
	}

	if _, ok, _ := c.Get(ctx, PaymentListCacheKey); !ok {
		t.Fatal("expected cache to hold the payment list after refresh")
	}

	// A cached list must keep serving even if the store is mutated.
	outOfBand := &models.Payment{ID: uuid.New(), Name: "Ghost", Email: "ghost@x.edu", Amount: 10}
	if err := st.InsertPayment(ctx, outOfBand, &models.AuditLog{ID: uuid.New(), Action: models.AuditActionCreate}); err != nil {
		t.Fatalf("out-of-band insert returned error: %v", err)
	}
	payments, err := svc.ListPayments(ctx)
	if err != nil {
		t.Fatalf("ListPayments returned error: %v", err)
	}
	if len(payments) != 1 {
		t.Errorf("expected refreshed cache to mask the later write, got %d payments", len(payments))
	}
}
