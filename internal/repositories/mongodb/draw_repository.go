package mongodb

import (
	"context"
	"fmt"

	"github.com/ArowuTest/prizedraw-backend/internal/models"
	"github.com/ArowuTest/prizedraw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DrawRecordRepository implements the repositories.DrawRecordRepository interface
type DrawRecordRepository struct {
	collection *mongo.Collection
}

// NewDrawRecordRepository creates a new DrawRecordRepository
func NewDrawRecordRepository(db *mongo.Database) repositories.DrawRecordRepository {
	return &DrawRecordRepository{
		collection: db.Collection("draw_records"),
	}
}

// Create inserts a committed draw
func (r *DrawRecordRepository) Create(ctx context.Context, record *models.DrawRecord) error {
	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert draw record: %w", err)
	}
	return nil
}

// FindRecent finds the latest draws, newest first
func (r *DrawRecordRepository) FindRecent(ctx context.Context, limit int) ([]*models.DrawRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "drawnAt", Value: -1}}) // Sort by date descending
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to execute find query: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*models.DrawRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode draw records: %w", err)
	}
	if records == nil {
		records = []*models.DrawRecord{}
	}
	return records, nil
}
