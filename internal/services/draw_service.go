package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ArowuTest/prizedraw-backend/internal/models"
	"github.com/ArowuTest/prizedraw-backend/internal/repositories"
	"github.com/ArowuTest/prizedraw-backend/internal/sampler"
	"github.com/ArowuTest/prizedraw-backend/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure DrawServiceImpl implements DrawService
var _ DrawService = (*DrawServiceImpl)(nil)

// Parts of the persisted state, used as log fields and metric labels
const (
	partRoster  = "roster"
	partPool    = "pool"
	partWinners = "winners"
	partHistory = "history"
)

// DrawServiceImpl is the draw engine. It owns the roster, the pool, the
// committed winners and the per-tier state machine. Every operation runs
// under mu, so a finalize is atomic with respect to any other operation.
type DrawServiceImpl struct {
	mu sync.Mutex

	tiers     []models.Tier
	tierIndex map[string]int

	roster  []string
	pool    []string
	winners map[string][]string
	status  map[string]models.TierStatus
	active  *models.DrawTicket

	src          sampler.Source
	stateRepo    repositories.StateRepository
	recordRepo   repositories.DrawRecordRepository
	publisher    EventPublisher
	metrics      MetricsRecorder
	writeTimeout time.Duration
	now          func() time.Time
}

// NewDrawService creates a new DrawServiceImpl with an empty roster. The tier
// table must already be validated. A nil publisher or metrics recorder
// disables that output.
func NewDrawService(
	tiers []models.Tier,
	src sampler.Source,
	stateRepo repositories.StateRepository,
	recordRepo repositories.DrawRecordRepository,
	publisher EventPublisher,
	metrics MetricsRecorder,
	writeTimeout time.Duration,
) *DrawServiceImpl {
	if src == nil {
		src = sampler.NewTimeSource()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}

	s := &DrawServiceImpl{
		tiers:        append([]models.Tier(nil), tiers...),
		tierIndex:    make(map[string]int, len(tiers)),
		src:          src,
		stateRepo:    stateRepo,
		recordRepo:   recordRepo,
		publisher:    publisher,
		metrics:      metrics,
		writeTimeout: writeTimeout,
		now:          time.Now,
	}
	for i, t := range s.tiers {
		s.tierIndex[t.Key] = i
	}
	s.clearTiers()
	return s
}

// LoadState restores the stored snapshot. Stored data that breaks the
// partition invariant is repaired rather than trusted: the roster is
// deduplicated, winner sets that don't fit a known tier exactly are dropped
// and the pool is rebuilt as roster minus winners when it doesn't match.
func (s *DrawServiceImpl) LoadState(ctx context.Context) error {
	// 1. Read the stored snapshot
	stored, err := s.stateRepo.Load(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		slog.Info("No stored draw state, starting with an empty roster")
		return nil
	}
	if err != nil {
		slog.Error("Failed to load draw state", "error", err)
		return fmt.Errorf("failed to load draw state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 2. The roster is authoritative
	roster, duplicates := utils.NormalizeRoster(stored.Roster)
	if duplicates > 0 {
		slog.Warn("Stored roster contained duplicates", "duplicates", duplicates)
	}
	inRoster := toSet(roster)

	// 3. Keep winner sets that exactly fit a known tier
	s.roster = roster
	s.clearTiers()
	taken := make(map[string]bool)
	committed := 0
	for key, names := range stored.Winners {
		if _, ok := s.tierIndex[key]; !ok && len(names) > 0 {
			slog.Warn("Discarding stored winners for unknown tier", "tier", key, "stored", len(names))
		}
	}
	for _, t := range s.tiers {
		names := stored.Winners[t.Key]
		if len(names) == 0 {
			continue
		}
		if !fitsTier(names, t.Count, inRoster, taken) {
			slog.Warn("Discarding stored winners that don't fit the tier", "tier", t.Key, "stored", len(names), "count", t.Count)
			continue
		}
		for _, n := range names {
			taken[n] = true
		}
		s.winners[t.Key] = cloneStrings(names)
		s.status[t.Key] = models.TierStatusCommitted
		committed++
	}

	// 4. The pool must be exactly roster minus winners
	expected := make([]string, 0, len(roster))
	for _, n := range roster {
		if !taken[n] {
			expected = append(expected, n)
		}
	}
	if sameMembers(stored.Pool, expected) {
		s.pool = cloneStrings(stored.Pool)
	} else {
		if stored.Pool != nil {
			slog.Warn("Stored pool is inconsistent with roster and winners, rebuilding", "stored", len(stored.Pool), "expected", len(expected))
		}
		s.pool = expected
	}

	s.metrics.SetSizes(len(s.roster), len(s.pool))
	slog.Info("Draw state restored", "roster", len(s.roster), "pool", len(s.pool), "committedTiers", committed)
	return nil
}

// StartDraw arms a tier. Preconditions are checked in order: the tier must
// exist, must not be committed, the pool must cover its count, and no draw
// may be in progress on any tier.
func (s *DrawServiceImpl) StartDraw(ctx context.Context, tierKey string) (*models.DrawTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. Resolve the tier
	tier, ok := s.tier(tierKey)
	if !ok {
		return nil, s.reject("start", tierKey, fmt.Errorf("%w: %q", ErrUnknownTier, tierKey))
	}

	// 2. Committed tiers stay committed until the roster is replaced
	if s.status[tier.Key] == models.TierStatusCommitted {
		return nil, s.reject("start", tier.Key, ErrAlreadyDrawn)
	}

	// 3. The pool must cover the tier
	if len(s.pool) < tier.Count {
		return nil, s.reject("start", tier.Key,
			fmt.Errorf("%w: tier %q needs %d, pool has %d", ErrInsufficientPool, tier.Key, tier.Count, len(s.pool)))
	}

	// 4. One draw at a time across all tiers
	if s.active != nil {
		return nil, s.reject("start", tier.Key, fmt.Errorf("%w: tier %q", ErrDrawInProgress, s.active.Tier))
	}

	ticket := &models.DrawTicket{
		Tier:      tier.Key,
		Token:     uuid.NewString(),
		StartedAt: s.now().UTC(),
	}
	s.status[tier.Key] = models.TierStatusInProgress
	s.active = ticket

	s.metrics.DrawStarted(tier.Key)
	slog.Info("Draw started", "tier", tier.Key, "count", tier.Count, "pool", len(s.pool), "token", ticket.Token)
	s.publisher.Publish(models.NewEvent(models.EventDrawStarted, tier.Key, *ticket))

	out := *ticket
	return &out, nil
}

// FinalizeDraw samples tier.Count names from the pool, commits them as the
// tier's winners and removes them from the pool. A repeated finalize for
// the same tier fails with ErrAlreadyDrawn and changes nothing.
func (s *DrawServiceImpl) FinalizeDraw(ctx context.Context, tierKey, token string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. Check the state machine
	tier, ok := s.tier(tierKey)
	if !ok {
		return nil, s.reject("finalize", tierKey, fmt.Errorf("%w: %q", ErrUnknownTier, tierKey))
	}
	switch {
	case s.status[tier.Key] == models.TierStatusCommitted:
		return nil, s.reject("finalize", tier.Key, ErrAlreadyDrawn)
	case s.status[tier.Key] != models.TierStatusInProgress:
		return nil, s.reject("finalize", tier.Key, ErrNotInProgress)
	case token != "" && token != s.active.Token:
		return nil, s.reject("finalize", tier.Key, fmt.Errorf("%w: stale draw token", ErrNotInProgress))
	}

	// 2. Sample
	poolBefore := len(s.pool)
	selected := sampler.PickRandom(s.src, s.pool, tier.Count)

	// 3. Commit
	picked := toSet(selected)
	remaining := make([]string, 0, len(s.pool)-len(selected))
	for _, n := range s.pool {
		if !picked[n] {
			remaining = append(remaining, n)
		}
	}
	s.pool = remaining
	s.winners[tier.Key] = selected
	s.status[tier.Key] = models.TierStatusCommitted
	s.active = nil

	drawnAt := s.now().UTC()
	s.metrics.DrawFinalized(tier.Key)
	s.metrics.SetSizes(len(s.roster), len(s.pool))
	slog.Info("Draw finalized", "tier", tier.Key, "winners", len(selected), "poolBefore", poolBefore, "poolAfter", len(s.pool))

	// 4. Persist. Failures are reported, never rolled back.
	s.persist(ctx, partPool, func(ctx context.Context) error {
		return s.stateRepo.SavePool(ctx, cloneStrings(s.pool))
	})
	s.persist(ctx, partWinners, func(ctx context.Context) error {
		return s.stateRepo.SaveWinners(ctx, s.winnersSnapshot())
	})

	record := &models.DrawRecord{
		ID:         uuid.NewString(),
		Round:      s.committedCount(),
		Tier:       tier.Key,
		TierLabel:  tier.Label,
		Names:      cloneStrings(selected),
		PoolBefore: poolBefore,
		DrawnAt:    drawnAt,
	}
	if s.recordRepo != nil {
		s.persist(ctx, partHistory, func(ctx context.Context) error {
			return s.recordRepo.Create(ctx, record)
		})
	}

	s.publisher.Publish(models.NewEvent(models.EventDrawFinalized, tier.Key, record))
	return cloneStrings(selected), nil
}

// CancelDraw returns an in-progress tier to idle. Pool and winners are untouched.
func (s *DrawServiceImpl) CancelDraw(ctx context.Context, tierKey, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tier, ok := s.tier(tierKey)
	if !ok {
		return s.reject("cancel", tierKey, fmt.Errorf("%w: %q", ErrUnknownTier, tierKey))
	}
	if s.status[tier.Key] != models.TierStatusInProgress {
		return s.reject("cancel", tier.Key, ErrNotInProgress)
	}
	if token != "" && token != s.active.Token {
		return s.reject("cancel", tier.Key, fmt.Errorf("%w: stale draw token", ErrNotInProgress))
	}

	ticket := *s.active
	s.status[tier.Key] = models.TierStatusIdle
	s.active = nil

	s.metrics.DrawCancelled(tier.Key)
	slog.Info("Draw cancelled", "tier", tier.Key, "token", ticket.Token)
	s.publisher.Publish(models.NewEvent(models.EventDrawCancelled, tier.Key, ticket))
	return nil
}

// ResetAll replaces the roster with the trimmed, deduplicated names and puts
// every tier back to idle. An in-progress draw is discarded.
func (s *DrawServiceImpl) ResetAll(ctx context.Context, rawNames []string) (*models.RosterSummary, error) {
	// 1. Normalize outside the lock; it touches no engine state
	names, duplicates := utils.NormalizeRoster(rawNames)
	summary := &models.RosterSummary{
		Imported:   len(names),
		Submitted:  len(rawNames),
		Duplicates: duplicates,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(names) == 0 {
		return nil, s.reject("reset", "", ErrEmptyRoster)
	}

	// 2. Replace everything
	if s.active != nil {
		slog.Warn("Discarding in-progress draw for roster reset", "tier", s.active.Tier, "token", s.active.Token)
	}
	s.roster = names
	s.pool = cloneStrings(names)
	s.clearTiers()

	s.metrics.RosterReset()
	s.metrics.SetSizes(len(s.roster), len(s.pool))
	slog.Info("Roster replaced", "imported", summary.Imported, "submitted", summary.Submitted, "duplicates", summary.Duplicates)

	// 3. Persist all three parts
	s.persist(ctx, partRoster, func(ctx context.Context) error {
		return s.stateRepo.SaveRoster(ctx, cloneStrings(s.roster))
	})
	s.persist(ctx, partPool, func(ctx context.Context) error {
		return s.stateRepo.SavePool(ctx, cloneStrings(s.pool))
	})
	s.persist(ctx, partWinners, func(ctx context.Context) error {
		return s.stateRepo.SaveWinners(ctx, s.winnersSnapshot())
	})

	s.publisher.Publish(models.NewEvent(models.EventRosterReset, "", *summary))
	return summary, nil
}

// QueryState returns a snapshot safe for the caller to keep
func (s *DrawServiceImpl) QueryState(ctx context.Context) *models.DrawState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &models.DrawState{
		RosterSize: len(s.roster),
		PoolSize:   len(s.pool),
		Pool:       nonNil(cloneStrings(s.pool)),
		Tiers:      make([]models.TierState, 0, len(s.tiers)),
	}
	for _, t := range s.tiers {
		state.Tiers = append(state.Tiers, models.TierState{
			Tier:    t,
			Status:  s.status[t.Key],
			Winners: nonNil(cloneStrings(s.winners[t.Key])),
		})
	}
	if s.active != nil {
		ticket := *s.active
		state.ActiveDraw = &ticket
	}
	return state
}

// Roster returns a copy of the current roster
func (s *DrawServiceImpl) Roster(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nonNil(cloneStrings(s.roster))
}

// History returns committed draws, newest first
func (s *DrawServiceImpl) History(ctx context.Context, limit int) ([]*models.DrawRecord, error) {
	if s.recordRepo == nil {
		return []*models.DrawRecord{}, nil
	}
	records, err := s.recordRepo.FindRecent(ctx, limit)
	if err != nil {
		slog.Error("Failed to fetch draw history", "error", err, "limit", limit)
		return nil, fmt.Errorf("failed to fetch draw history: %w", err)
	}
	return records, nil
}

// persist runs one best-effort write. The write gets its own deadline and
// survives cancellation of the caller's context.
func (s *DrawServiceImpl) persist(ctx context.Context, part string, write func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	var cancel context.CancelFunc
	if s.writeTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.writeTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	if err := write(ctx); err != nil {
		s.metrics.PersistFailed(part)
		slog.Error("Failed to persist draw state", "error", err, "part", part)
		s.publisher.Publish(models.NewEvent(models.EventPersistFailed, "", map[string]string{
			"part":  part,
			"error": err.Error(),
		}))
	}
}

func (s *DrawServiceImpl) reject(op, tier string, err error) error {
	s.metrics.Rejected(op, reason(err))
	slog.Warn("Draw operation rejected", "operation", op, "tier", tier, "error", err)
	return err
}

func (s *DrawServiceImpl) tier(key string) (models.Tier, bool) {
	i, ok := s.tierIndex[key]
	if !ok {
		return models.Tier{}, false
	}
	return s.tiers[i], true
}

// clearTiers empties every tier's winners and sets it idle. Caller holds mu.
func (s *DrawServiceImpl) clearTiers() {
	s.winners = make(map[string][]string, len(s.tiers))
	s.status = make(map[string]models.TierStatus, len(s.tiers))
	for _, t := range s.tiers {
		s.winners[t.Key] = []string{}
		s.status[t.Key] = models.TierStatusIdle
	}
	s.active = nil
}

func (s *DrawServiceImpl) committedCount() int {
	n := 0
	for _, st := range s.status {
		if st == models.TierStatusCommitted {
			n++
		}
	}
	return n
}

func (s *DrawServiceImpl) winnersSnapshot() map[string][]string {
	out := make(map[string][]string, len(s.winners))
	for k, v := range s.winners {
		out[k] = nonNil(cloneStrings(v))
	}
	return out
}

// fitsTier reports whether names is a valid committed set for a tier of the
// given count: exact size, all in the roster, no repeats, none already taken.
func fitsTier(names []string, count int, inRoster, taken map[string]bool) bool {
	if len(names) != count {
		return false
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if !inRoster[n] || taken[n] || seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}

// sameMembers reports whether got holds exactly the names in want, once each.
func sameMembers(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	wantSet := toSet(want)
	seen := make(map[string]bool, len(got))
	for _, n := range got {
		if !wantSet[n] || seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

type noopPublisher struct{}

func (noopPublisher) Publish(models.Event) {}

type noopMetrics struct{}

func (noopMetrics) DrawStarted(string)        {}
func (noopMetrics) DrawFinalized(string)      {}
func (noopMetrics) DrawCancelled(string)      {}
func (noopMetrics) RosterReset()              {}
func (noopMetrics) Rejected(string, string)   {}
func (noopMetrics) PersistFailed(string)      {}
func (noopMetrics) SetSizes(roster, pool int) {}
