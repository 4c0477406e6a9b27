package services

import (
	"errors"

	"league-match-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProfileService serves player profiles: current deck plus the display data
// the sync worker mirrors from the identity service.
type ProfileService struct {
	DB        *gorm.DB
	Decks     *DeckService
	Standings *StandingsService
}

func NewProfileService(db *gorm.DB, decks *DeckService, standings *StandingsService) *ProfileService {
	return &ProfileService{DB: db, Decks: decks, Standings: standings}
}

// FetchProfile returns the player's profile, creating an empty one on first
// touch.
func (s *ProfileService) FetchProfile(tenantID, userID string) (*models.Profile, error) {
	profile := models.Profile{TenantID: tenantID, UserID: userID}
	err := s.DB.FirstOrCreate(&profile, models.Profile{TenantID: tenantID, UserID: userID}).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// --- HTTP surface ---

// ProfileHandler shows the caller's profile: current deck, overall record,
// and the current season's record and points.
func (s *ProfileService) ProfileHandler(c *fiber.Ctx) error {
	tenantID := c.Locals("tenant_id").(string)
	userID := c.Locals("user_id").(string)

	profile, err := s.FetchProfile(tenantID, userID)
	if err != nil {
		return respondError(c, err)
	}

	var deck *models.Deck
	if profile.CurrentDeckID != nil {
		deck, err = s.Decks.CurrentDeck(tenantID, userID)
		if err != nil && !errors.Is(err, ErrDeckNotFound) {
			return respondError(c, err)
		}
	}

	total, season, err := s.Standings.PlayerStats(tenantID, userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"profile":      profile,
		"current_deck": deck,
		"total":        total,
		"season":       season,
	})
}
