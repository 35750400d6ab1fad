package models

// Tier defines a single prize level and how many winners it takes.
type Tier struct {
	Key   string `mapstructure:"key" bson:"key" json:"key"`       // e.g., "3rd", "2nd", "1st"
	Label string `mapstructure:"label" bson:"label" json:"label"` // Display name for the tier
	Count int    `mapstructure:"count" bson:"count" json:"count"` // Number of winners drawn for this tier
}
