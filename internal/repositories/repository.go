package repositories

import (
	"context"
	"errors"

	"github.com/ArowuTest/prizedraw-backend/internal/models"
)

// ErrNotFound is returned when nothing has been stored yet
var ErrNotFound = errors.New("repository: not found")

// StateRepository persists the three parts of the draw state. Each save
// overwrites only its own part.
type StateRepository interface {
	SaveRoster(ctx context.Context, roster []string) error
	SavePool(ctx context.Context, pool []string) error
	SaveWinners(ctx context.Context, winners map[string][]string) error
	// Load returns ErrNotFound when no state has ever been saved
	Load(ctx context.Context) (*models.PersistedState, error)
}

// DrawRecordRepository stores the history of committed draws
type DrawRecordRepository interface {
	Create(ctx context.Context, record *models.DrawRecord) error
	// FindRecent returns up to limit records, newest first. limit <= 0 means all.
	FindRecent(ctx context.Context, limit int) ([]*models.DrawRecord, error)
}
