package services

import (
	"context"

	"github.com/ArowuTest/prizedraw-backend/internal/models"
)

// DrawService defines the interface for draw engine operations
type DrawService interface {
	// LoadState restores the roster, pool and committed tiers from storage
	LoadState(ctx context.Context) error

	// StartDraw moves an idle tier to in-progress and returns the ticket for it
	StartDraw(ctx context.Context, tier string) (*models.DrawTicket, error)

	// FinalizeDraw samples the winners for an in-progress tier and commits them.
	// An empty token matches the active draw.
	FinalizeDraw(ctx context.Context, tier, token string) ([]string, error)

	// CancelDraw returns an in-progress tier to idle without drawing.
	// An empty token matches the active draw.
	CancelDraw(ctx context.Context, tier, token string) error

	// ResetAll replaces the roster and clears every tier
	ResetAll(ctx context.Context, names []string) (*models.RosterSummary, error)

	// QueryState returns a read-only snapshot
	QueryState(ctx context.Context) *models.DrawState

	// Roster returns the current roster in import order
	Roster(ctx context.Context) []string

	// History returns committed draws, newest first
	History(ctx context.Context, limit int) ([]*models.DrawRecord, error)
}

// CountdownService drives a draw through its countdown on behalf of callers
// that don't run their own timer.
type CountdownService interface {
	RunDraw(ctx context.Context, tier string, countdownSeconds int) ([]string, error)
}

// AuthService defines the interface for operator authentication
type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

// EventPublisher receives engine notifications for the presentation layer
type EventPublisher interface {
	Publish(evt models.Event)
}

// MetricsRecorder receives engine counters and gauges
type MetricsRecorder interface {
	DrawStarted(tier string)
	DrawFinalized(tier string)
	DrawCancelled(tier string)
	RosterReset()
	Rejected(operation, reason string)
	PersistFailed(part string)
	SetSizes(roster, pool int)
}
