// Package memory provides in-process implementations of the repositories,
// used by tests and by the "memory" storage driver.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ArowuTest/prizedraw-backend/internal/models"
	"github.com/ArowuTest/prizedraw-backend/internal/repositories"
)

var (
	_ repositories.StateRepository      = (*StateStore)(nil)
	_ repositories.DrawRecordRepository = (*DrawRecordStore)(nil)
)

// StateStore keeps the persisted draw state in memory.
type StateStore struct {
	mu      sync.RWMutex
	saved   bool
	roster  []string
	pool    []string
	winners map[string][]string
	updated time.Time
}

// NewStateStore creates an empty StateStore
func NewStateStore() *StateStore {
	return &StateStore{}
}

func (s *StateStore) SaveRoster(ctx context.Context, roster []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster = cloneStrings(roster)
	s.touch()
	return nil
}

func (s *StateStore) SavePool(ctx context.Context, pool []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool = cloneStrings(pool)
	s.touch()
	return nil
}

func (s *StateStore) SaveWinners(ctx context.Context, winners map[string][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.winners = cloneWinners(winners)
	s.touch()
	return nil
}

func (s *StateStore) Load(ctx context.Context) (*models.PersistedState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return nil, repositories.ErrNotFound
	}
	return &models.PersistedState{
		Roster:    cloneStrings(s.roster),
		Pool:      cloneStrings(s.pool),
		Winners:   cloneWinners(s.winners),
		UpdatedAt: s.updated,
	}, nil
}

func (s *StateStore) touch() {
	s.saved = true
	s.updated = time.Now().UTC()
}

// DrawRecordStore keeps draw history in memory.
type DrawRecordStore struct {
	mu      sync.RWMutex
	records []*models.DrawRecord
}

// NewDrawRecordStore creates an empty DrawRecordStore
func NewDrawRecordStore() *DrawRecordStore {
	return &DrawRecordStore{}
}

func (s *DrawRecordStore) Create(ctx context.Context, record *models.DrawRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *record
	cp.Names = cloneStrings(record.Names)
	s.records = append(s.records, &cp)
	return nil
}

func (s *DrawRecordStore) FindRecent(ctx context.Context, limit int) ([]*models.DrawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.DrawRecord, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		cp := *s.records[i]
		cp.Names = cloneStrings(s.records[i].Names)
		out = append(out, &cp)
	}
	return out, nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneWinners(in map[string][]string) map[string][]string {
	if in == nil {
		return nil
	}
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = cloneStrings(v)
	}
	return out
}
