package domain

import "fmt"

// Hierarchy tier of a metric row or aggregate.
type Level string

const (
	LevelCampaign Level = "campaign"
	LevelAdSet    Level = "adset"
	LevelAd       Level = "ad"
)

func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelCampaign, LevelAdSet, LevelAd:
		return Level(s), nil
	}
	return "", fmt.Errorf("unknown level %q", s)
}

func (l Level) Valid() bool {
	switch l {
	case LevelCampaign, LevelAdSet, LevelAd:
		return true
	}
	return false
}

// DefaultStatus is used when the metadata cache has no entry for an
// entity. Campaigns default to UNKNOWN, child levels to ACTIVE.
func (l Level) DefaultStatus() string {
	if l == LevelCampaign {
		return "UNKNOWN"
	}
	return "ACTIVE"
}
