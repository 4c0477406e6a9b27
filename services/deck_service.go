package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"league-match-system/models"
	"league-match-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeckService is the deck registry: named, optionally-linked decks owned by a
// player within a tenant. Decks are upserted on use and never deleted.
type DeckService struct {
	DB        *gorm.DB
	Configs   *ConfigService
	Standings *StandingsService
}

func NewDeckService(db *gorm.DB, configs *ConfigService, standings *StandingsService) *DeckService {
	return &DeckService{DB: db, Configs: configs, Standings: standings}
}

// UseDeck upserts a deck for the player and marks it as their current deck.
// An existing deck is matched by name or deck list so re-using either updates
// in place; brand-new decks count against the tenant's deck limit.
func (s *DeckService) UseDeck(tenantID, userID, name, deckList string) (*models.Deck, error) {
	cfg, err := s.Configs.FetchConfig(tenantID)
	if err != nil {
		return nil, err
	}

	var deck models.Deck

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		q := tx.Where("tenant_id = ? AND user_id = ?", tenantID, userID)
		if deckList != "" {
			q = q.Where("name = ? OR deck_list = ?", name, deckList)
		} else {
			q = q.Where("name = ?", name)
		}

		err := q.First(&deck).Error
		switch {
		case err == nil:
			updates := map[string]any{"name": name}
			if deckList != "" {
				updates["deck_list"] = deckList
			}
			if err := tx.Model(&deck).Updates(updates).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			var count int64
			if err := tx.Model(&models.Deck{}).
				Where("tenant_id = ? AND user_id = ?", tenantID, userID).
				Count(&count).Error; err != nil {
				return err
			}
			if count >= int64(cfg.DeckLimit) {
				return ErrDeckLimit
			}

			deck = models.Deck{
				ID:       uuid.NewString(),
				TenantID: tenantID,
				UserID:   userID,
				Name:     name,
			}
			if deckList != "" {
				deck.DeckList = &deckList
			}
			if err := tx.Create(&deck).Error; err != nil {
				return err
			}
		default:
			return err
		}

		// Point the player's profile at the deck they just picked up.
		profile := models.Profile{TenantID: tenantID, UserID: userID}
		if err := tx.FirstOrCreate(&profile, models.Profile{TenantID: tenantID, UserID: userID}).Error; err != nil {
			return err
		}
		return tx.Model(&profile).Update("current_deck_id", deck.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &deck, nil
}

// DeckByName looks up one of the player's decks.
func (s *DeckService) DeckByName(tenantID, userID, name string) (*models.Deck, error) {
	var deck models.Deck
	err := s.DB.First(&deck, "tenant_id = ? AND user_id = ? AND name = ?", tenantID, userID, name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeckNotFound
		}
		return nil, err
	}
	return &deck, nil
}

// CurrentDeck resolves the deck the player's profile currently points at.
func (s *DeckService) CurrentDeck(tenantID, userID string) (*models.Deck, error) {
	var profile models.Profile
	err := s.DB.First(&profile, "tenant_id = ? AND user_id = ?", tenantID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeckNotFound
		}
		return nil, err
	}
	if profile.CurrentDeckID == nil {
		return nil, ErrDeckNotFound
	}

	var deck models.Deck
	if err := s.DB.First(&deck, "id = ?", *profile.CurrentDeckID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeckNotFound
		}
		return nil, err
	}
	return &deck, nil
}

// --- HTTP surface ---

// UseDeckHandler upserts the caller's deck and makes it current. Sent as a
// form: name (required), deck_list (URL), or deck_list_file (uploaded list,
// stored in object storage and linked by URL).
func (s *DeckService) UseDeckHandler(c *fiber.Ctx) error {
	tenantID := c.Locals("tenant_id").(string)
	userID := c.Locals("user_id").(string)

	name := c.FormValue("name")
	if name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}

	deckList := c.FormValue("deck_list")
	if file, err := c.FormFile("deck_list_file"); err == nil && file.Size > 0 {
		ext := filepath.Ext(file.Filename)
		if ext == "" {
			ext = ".txt"
		}
		key := fmt.Sprintf("decklists/%s/%s%s", tenantID, uuid.NewString(), ext)
		url, err := utils.UploadDeckList(file, key)
		if err != nil {
			log.Printf("ERROR: deck list upload failed for %s: %v", userID, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload deck list"})
		}
		deckList = url
	}

	deck, err := s.UseDeck(tenantID, userID, name, deckList)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(deck)
}

// DeckStatsHandler shows the caller's record with one deck, overall and for
// the current season. ?name= picks a deck; without it the current deck is
// used.
func (s *DeckService) DeckStatsHandler(c *fiber.Ctx) error {
	tenantID := c.Locals("tenant_id").(string)
	userID := c.Locals("user_id").(string)

	var deck *models.Deck
	var err error
	if name := c.Params("name"); name != "" && name != "current" {
		deck, err = s.DeckByName(tenantID, userID, name)
	} else {
		deck, err = s.CurrentDeck(tenantID, userID)
	}
	if err != nil {
		return respondError(c, err)
	}

	total, season, err := s.Standings.DeckStats(tenantID, userID, deck.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"deck":   deck,
		"total":  total,
		"season": season,
	})
}
