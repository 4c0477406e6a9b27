package models

import "time"

// Profile is a tenant-scoped player profile. It records which deck the player
// currently plays plus display data mirrored from the identity service by the
// profile sync worker.
type Profile struct {
	TenantID      string  `json:"tenant_id" gorm:"primaryKey"`
	UserID        string  `json:"user_id" gorm:"primaryKey"`
	CurrentDeckID *string `json:"current_deck_id,omitempty" gorm:"type:uuid"`

	// Mirrored display data (owned by the identity service, refreshed by the
	// sync worker; never authoritative here).
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
