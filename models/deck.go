package models

import "time"

// Deck is a named deck owned by a player within a tenant. Decks are created
// on demand and never deleted by the service.
type Deck struct {
	ID       string `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID string `json:"tenant_id" gorm:"uniqueIndex:idx_decks_tenant_user_name;not null"`
	UserID   string `json:"user_id" gorm:"uniqueIndex:idx_decks_tenant_user_name;not null"`
	Name     string `json:"name" gorm:"uniqueIndex:idx_decks_tenant_user_name;not null"`

	// DeckList is an optional URL to the full deck list (external site or an
	// uploaded list in object storage).
	DeckList *string `json:"deck_list,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
