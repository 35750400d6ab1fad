package models

import "time"

// PersistedState is the durable snapshot of the engine. Each part is written
// independently by the operation that changes it.
type PersistedState struct {
	Roster    []string            `bson:"roster" json:"roster"`
	Pool      []string            `bson:"pool" json:"pool"`
	Winners   map[string][]string `bson:"winners" json:"winners"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsEmpty reports whether nothing has ever been stored
func (p *PersistedState) IsEmpty() bool {
	return p == nil || (len(p.Roster) == 0 && len(p.Pool) == 0 && len(p.Winners) == 0)
}
