package services

import (
	"context"
	"testing"
	"time"

	"github.com/ArowuTest/prizedraw-backend/internal/config"
	"github.com/ArowuTest/prizedraw-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCountdown(f *fixture) *CountdownServiceImpl {
	c := NewCountdownService(f.svc, f.events)
	c.tick = time.Millisecond
	return c
}

func TestCountdownService_RunDraw(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultTiers())
	_, err := f.svc.ResetAll(ctx, entrants(100))
	require.NoError(t, err)

	winners, err := newCountdown(f).RunDraw(ctx, "3rd", 3)
	require.NoError(t, err)
	assert.Len(t, winners, 45)
	assert.Equal(t, models.TierStatusCommitted, tierState(t, f.svc, "3rd").Status)

	assert.Equal(t, []models.EventType{
		models.EventRosterReset,
		models.EventDrawStarted,
		models.EventCountdownTick,
		models.EventCountdownTick,
		models.EventCountdownTick,
		models.EventDrawFinalized,
	}, f.events.types())

	f.events.mu.Lock()
	tick := f.events.events[2].Payload.(CountdownTick)
	f.events.mu.Unlock()
	assert.Equal(t, 3, tick.Remaining)
}

func TestCountdownService_ZeroCountdownFinalizesImmediately(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultTiers())
	_, err := f.svc.ResetAll(ctx, entrants(30))
	require.NoError(t, err)

	winners, err := newCountdown(f).RunDraw(ctx, "1st", 0)
	require.NoError(t, err)
	assert.Len(t, winners, 25)
	assert.NotContains(t, f.events.types(), models.EventCountdownTick)
}

func TestCountdownService_PreconditionFailurePassesThrough(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.DefaultTiers())
	_, err := f.svc.ResetAll(ctx, entrants(10))
	require.NoError(t, err)

	_, err = newCountdown(f).RunDraw(ctx, "3rd", 1)
	assert.ErrorIs(t, err, ErrInsufficientPool)
}

func TestCountdownService_CancelledContextReturnsTierToIdle(t *testing.T) {
	f := newFixture(t, config.DefaultTiers())
	_, err := f.svc.ResetAll(context.Background(), entrants(100))
	require.NoError(t, err)

	c := NewCountdownService(f.svc, f.events)
	c.tick = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer cancel()
		assert.Eventually(t, func() bool {
			return f.svc.QueryState(context.Background()).ActiveDraw != nil
		}, 2*time.Second, time.Millisecond)
	}()

	_, err = c.RunDraw(ctx, "3rd", 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.TierStatusIdle, tierState(t, f.svc, "3rd").Status)
	assert.Equal(t, 100, f.svc.QueryState(context.Background()).PoolSize)
	assert.Contains(t, f.events.types(), models.EventDrawCancelled)
}
