package models

import "time"

// TierStatus represents where a tier is in its draw cycle
type TierStatus string

const (
	TierStatusIdle       TierStatus = "IDLE"
	TierStatusInProgress TierStatus = "IN_PROGRESS"
	TierStatusCommitted  TierStatus = "COMMITTED"
)

// DrawTicket is handed out by a successful start and identifies the draw
// that a later finalize or cancel refers to.
type DrawTicket struct {
	Tier      string    `json:"tier"`
	Token     string    `json:"token"`
	StartedAt time.Time `json:"startedAt"`
}

// TierState is the per-tier part of a DrawState snapshot
type TierState struct {
	Tier
	Status  TierStatus `json:"status"`
	Winners []string   `json:"winners"`
}

// DrawState is a read-only snapshot of the engine used for rendering
type DrawState struct {
	RosterSize int         `json:"rosterSize"`
	PoolSize   int         `json:"poolSize"`
	Pool       []string    `json:"pool"`
	Tiers      []TierState `json:"tiers"`
	ActiveDraw *DrawTicket `json:"activeDraw,omitempty"`
}

// RosterSummary is returned after a roster replacement
type RosterSummary struct {
	Imported   int `json:"imported"`   // Unique names kept
	Submitted  int `json:"submitted"`  // Raw lines/entries received
	Duplicates int `json:"duplicates"` // Non-empty entries dropped as duplicates
}
