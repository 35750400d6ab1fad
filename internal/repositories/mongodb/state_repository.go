package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/prizedraw-backend/internal/models"
	"github.com/ArowuTest/prizedraw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Keys of the three state documents
const (
	stateKeyRoster  = "roster"
	stateKeyPool    = "pool"
	stateKeyWinners = "winners"
)

// stateDocument is one named part of the draw state
type stateDocument struct {
	Key       string              `bson:"key"`
	Names     []string            `bson:"names,omitempty"`
	Winners   map[string][]string `bson:"winners,omitempty"`
	UpdatedAt time.Time           `bson:"updatedAt"`
}

// StateRepository implements the repositories.StateRepository interface
type StateRepository struct {
	collection *mongo.Collection
}

// NewStateRepository creates a new StateRepository
func NewStateRepository(db *mongo.Database) repositories.StateRepository {
	return &StateRepository{
		collection: db.Collection("draw_state"),
	}
}

// SaveRoster overwrites the roster document
func (r *StateRepository) SaveRoster(ctx context.Context, roster []string) error {
	return r.upsertByKey(ctx, stateKeyRoster, bson.M{"names": nonNil(roster)})
}

// SavePool overwrites the pool document
func (r *StateRepository) SavePool(ctx context.Context, pool []string) error {
	return r.upsertByKey(ctx, stateKeyPool, bson.M{"names": nonNil(pool)})
}

// SaveWinners overwrites the winners document
func (r *StateRepository) SaveWinners(ctx context.Context, winners map[string][]string) error {
	if winners == nil {
		winners = map[string][]string{}
	}
	return r.upsertByKey(ctx, stateKeyWinners, bson.M{"winners": winners})
}

// Load reads all state documents. Returns repositories.ErrNotFound if none exist.
func (r *StateRepository) Load(ctx context.Context) (*models.PersistedState, error) {
	filter := bson.M{"key": bson.M{"$in": []string{stateKeyRoster, stateKeyPool, stateKeyWinners}}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query draw state: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []stateDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode draw state: %w", err)
	}
	if len(docs) == 0 {
		return nil, repositories.ErrNotFound
	}

	state := &models.PersistedState{Winners: map[string][]string{}}
	for _, doc := range docs {
		switch doc.Key {
		case stateKeyRoster:
			state.Roster = doc.Names
		case stateKeyPool:
			state.Pool = doc.Names
		case stateKeyWinners:
			if doc.Winners != nil {
				state.Winners = doc.Winners
			}
		}
		if doc.UpdatedAt.After(state.UpdatedAt) {
			state.UpdatedAt = doc.UpdatedAt
		}
	}
	return state, nil
}

// upsertByKey updates a state document by key, or creates it if it doesn't exist.
func (r *StateRepository) upsertByKey(ctx context.Context, key string, fields bson.M) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"key": key},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, bson.M{"key": key}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert draw state %q: %w", key, err)
	}
	return nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
