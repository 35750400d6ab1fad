package models

import "time"

// DrawRecord is one committed draw, kept as history for display and audit.
type DrawRecord struct {
	ID         string    `bson:"_id" json:"id"`
	Round      int       `bson:"round" json:"round"` // Position of this draw within the current roster
	Tier       string    `bson:"tier" json:"tier"`
	TierLabel  string    `bson:"tierLabel" json:"tierLabel"`
	Names      []string  `bson:"names" json:"names"`
	PoolBefore int       `bson:"poolBefore" json:"poolBefore"` // Pool size at the moment of the draw
	DrawnAt    time.Time `bson:"drawnAt" json:"drawnAt"`
}
