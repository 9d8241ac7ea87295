package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/saurabh-chakrabarthi/hermes/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the document-backed variant. Without a replica set Mongo
// offers no multi-document transactions, so a failed audit insert is
// compensated by deleting the just-written payment; the relational store
// remains the authoritative backend.
type MongoStore struct {
	payments *mongo.Collection
	entries  *mongo.Collection
	counters *mongo.Collection
	client   *mongo.Client
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	db := client.Database(dbName)
	return &MongoStore{
		payments: db.Collection("payments"),
		entries:  db.Collection("audit_logs"),
		counters: db.Collection("reference_sequences"),
		client:   client,
	}
}

func (s *MongoStore) nextReference(ctx context.Context) (string, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Value int64 `bson:"value"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": paymentSequenceName},
		bson.M{"$inc": bson.M{"value": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return "", err
	}
	return FormatReference(counter.Value), nil
}

func (s *MongoStore) InsertPayment(ctx context.Context, payment *models.Payment, entry *models.AuditLog) error {
	reference, err := s.nextReference(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	payment.Reference = reference

	now := time.Now()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
		payment.UpdatedAt = now
	}
	entry.PaymentID = payment.ID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}

	if _, err := s.payments.InsertOne(ctx, payment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if _, err := s.entries.InsertOne(ctx, entry); err != nil {
		// Compensate so no record is visible without its audit entry.
		if _, delErr := s.payments.DeleteOne(ctx, bson.M{"_id": payment.ID}); delErr != nil {
			log.Printf("🔥 Failed to compensate payment %s after audit insert failure: %v", payment.ID, delErr)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *MongoStore) ListPayments(ctx context.Context) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.payments.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return payments, nil
}

func (s *MongoStore) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := s.payments.FindOne(ctx, bson.M{"_id": id}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &payment, nil
}

func (s *MongoStore) CountPayments(ctx context.Context) (int64, error) {
	count, err := s.payments.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return count, nil
}

func (s *MongoStore) ListAuditLogs(ctx context.Context) ([]models.AuditLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.entries.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer cursor.Close(ctx)

	var entries []models.AuditLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return entries, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
