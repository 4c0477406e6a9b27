package models

import "time"

// Match is a logged game between 2-4 players. It stays pending until every
// player has confirmed the result; ConfirmedAt is set exactly once, at the
// moment the last confirmation lands. Channel/message/thread refs are opaque
// handles owned by the messaging collaborator.
type Match struct {
	ID           string `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID     string `json:"tenant_id" gorm:"index;not null"`
	SeasonID     string `json:"season_id" gorm:"index;not null"`
	WinnerUserID string `json:"winner_user_id" gorm:"not null"`

	ChannelRef       string `json:"channel_ref,omitempty"`
	MessageRef       string `json:"message_ref,omitempty"`
	DisputeThreadRef string `json:"dispute_thread_ref,omitempty"`

	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`

	Players []MatchPlayer `json:"players,omitempty" gorm:"foreignKey:MatchID"`
	Season  Season        `json:"season,omitempty" gorm:"foreignKey:SeasonID"`
}

// MatchPlayer is one participant's slot in a match. Confirmed flips true at
// most once, through a conditional update keyed on (match_id, user_id).
type MatchPlayer struct {
	ID      string `json:"id" gorm:"primaryKey;type:uuid"`
	MatchID string `json:"match_id" gorm:"index;not null"`
	UserID  string `json:"user_id" gorm:"index;not null"`

	// DeckID points at the deck the player used, resolved from their profile
	// at log time. Optional.
	DeckID *string `json:"deck_id,omitempty" gorm:"type:uuid"`

	Confirmed bool `json:"confirmed" gorm:"default:false"`
}

// AllConfirmed reports whether every player has confirmed the result.
func (m *Match) AllConfirmed() bool {
	if len(m.Players) == 0 {
		return false
	}
	for _, p := range m.Players {
		if !p.Confirmed {
			return false
		}
	}
	return true
}

// Disputed reports whether a dispute thread has been opened for the match.
func (m *Match) Disputed() bool {
	return m.DisputeThreadRef != ""
}

// PlayerSlot returns the slot for userID, or nil if the user did not play.
func (m *Match) PlayerSlot(userID string) *MatchPlayer {
	for i := range m.Players {
		if m.Players[i].UserID == userID {
			return &m.Players[i]
		}
	}
	return nil
}
