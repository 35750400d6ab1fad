package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/prizedraw-backend/internal/models"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure CountdownServiceImpl implements CountdownService
var _ CountdownService = (*CountdownServiceImpl)(nil)

// CountdownServiceImpl is the timer that drives start and finalize for
// callers that want the engine to own the suspense delay. The engine itself
// never waits.
type CountdownServiceImpl struct {
	draws     DrawService
	publisher EventPublisher
	tick      time.Duration
}

// NewCountdownService creates a new CountdownServiceImpl ticking once per second
func NewCountdownService(draws DrawService, publisher EventPublisher) *CountdownServiceImpl {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &CountdownServiceImpl{
		draws:     draws,
		publisher: publisher,
		tick:      time.Second,
	}
}

// CountdownTick is the payload of a countdown_tick event
type CountdownTick struct {
	Remaining int    `json:"remaining"`
	Token     string `json:"token"`
}

// RunDraw starts the tier, publishes one tick per second for countdownSeconds
// and then finalizes. If ctx ends first the draw is cancelled and the tier
// returns to idle.
func (s *CountdownServiceImpl) RunDraw(ctx context.Context, tier string, countdownSeconds int) ([]string, error) {
	if countdownSeconds < 0 {
		countdownSeconds = 0
	}

	// 1. Arm the tier
	ticket, err := s.draws.StartDraw(ctx, tier)
	if err != nil {
		return nil, err
	}

	// 2. Count down
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for remaining := countdownSeconds; remaining > 0; remaining-- {
		s.publisher.Publish(models.NewEvent(models.EventCountdownTick, tier, CountdownTick{
			Remaining: remaining,
			Token:     ticket.Token,
		}))
		select {
		case <-ctx.Done():
			cerr := s.draws.CancelDraw(context.WithoutCancel(ctx), tier, ticket.Token)
			if cerr != nil && !errors.Is(cerr, ErrNotInProgress) {
				slog.Error("Failed to cancel interrupted draw", "error", cerr, "tier", tier)
			}
			return nil, fmt.Errorf("draw countdown interrupted: %w", ctx.Err())
		case <-ticker.C:
		}
	}

	// 3. Reveal
	return s.draws.FinalizeDraw(ctx, tier, ticket.Token)
}
