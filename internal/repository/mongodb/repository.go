package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/milkcenter/internal/domain/models"
	"github.com/mamadbah2/milkcenter/internal/repository/slots"
)

const (
	slotsCollection   = "slots"
	reportsCollection = "daily_reports"
)

// ReportRepository defines the interface for report storage.
type ReportRepository interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

var (
	_ ReportRepository = (*MongoDBRepository)(nil)
	_ slots.Medium     = (*MongoDBRepository)(nil)
)

// MongoDBRepository stores state slots and archived daily reports.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

type slotDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
	}, nil
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// Read returns the JSON document stored under key.
func (r *MongoDBRepository) Read(ctx context.Context, key string) ([]byte, error) {
	var doc slotDocument
	err := r.collection(slotsCollection).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, slots.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return []byte(doc.Value), nil
}

// Write upserts the slot document.
func (r *MongoDBRepository) Write(ctx context.Context, key string, data []byte) error {
	doc := slotDocument{Key: key, Value: string(data), UpdatedAt: time.Now().UTC()}
	_, err := r.collection(slotsCollection).ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

// Remove deletes the slot document if present.
func (r *MongoDBRepository) Remove(ctx context.Context, key string) error {
	if _, err := r.collection(slotsCollection).DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to remove slot %s: %w", key, err)
	}
	return nil
}

// SaveDailyReport saves a daily report, replacing any earlier report for the same date.
func (r *MongoDBRepository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	_, err := r.collection(reportsCollection).ReplaceOne(ctx, bson.M{"date": report.Date}, report, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert daily report: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
