package models

import "time"

// Config is the per-tenant scoring policy. It is created lazily with defaults
// on first access and updated through validated patches only.
type Config struct {
	TenantID string `json:"tenant_id" gorm:"primaryKey"`

	// MinimumGamesPerPlayer is the leaderboard inclusion floor; players with
	// fewer confirmed games are hidden from standings.
	MinimumGamesPerPlayer int `json:"minimum_games_per_player" gorm:"default:10"`

	PointsGained int `json:"points_gained" gorm:"default:1"`
	PointsLost   int `json:"points_lost" gorm:"default:0"`

	// BasePoints is a display offset added to every player's net score.
	BasePoints int `json:"base_points" gorm:"default:100"`

	// DeckLimit caps how many decks a single player may register.
	DeckLimit int `json:"deck_limit" gorm:"default:50"`

	// DisputeRoleRef is an opaque role handle pulled into dispute threads by
	// the messaging collaborator. Optional.
	DisputeRoleRef *string `json:"dispute_role_ref,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// DefaultConfig returns the scoring policy a tenant starts with.
func DefaultConfig(tenantID string) Config {
	return Config{
		TenantID:              tenantID,
		MinimumGamesPerPlayer: 10,
		PointsGained:          1,
		PointsLost:            0,
		BasePoints:            100,
		DeckLimit:             50,
	}
}
