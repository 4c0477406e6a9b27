package services

import (
	"errors"
	"time"

	"league-match-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// SeasonService manages a tenant's scoring windows. One open season at a
// time; a season closes by getting its end date set, exactly once, and is
// never deleted.
type SeasonService struct {
	DB *gorm.DB
}

func NewSeasonService(db *gorm.DB) *SeasonService {
	return &SeasonService{DB: db}
}

// StartSeason opens a new season. Rejected while another season is open or
// when the name was already used in this tenant.
func (s *SeasonService) StartSeason(tenantID, name string) (*models.Season, error) {
	season := &models.Season{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		Name:     name,
		Slug:     slug.Make(name),
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Season
		err := tx.First(&existing, "tenant_id = ? AND (end_date IS NULL OR name = ?)", tenantID, name).Error
		if err == nil {
			if existing.Open() {
				return ErrSeasonActive
			}
			return ErrSeasonNameTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(season).Error
	})
	if err != nil {
		return nil, err
	}
	return season, nil
}

// EndSeason closes the tenant's open season. The end date is set through a
// conditional update so two simultaneous closes cannot both land.
func (s *SeasonService) EndSeason(tenantID string) (*models.Season, error) {
	season, err := s.CurrentSeason(tenantID)
	if err != nil {
		return nil, err
	}

	res := s.DB.Model(&models.Season{}).
		Where("id = ? AND end_date IS NULL", season.ID).
		Update("end_date", time.Now())
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNoActiveSeason
	}

	return s.SeasonByName(tenantID, season.Name)
}

// CurrentSeason returns the tenant's open season.
func (s *SeasonService) CurrentSeason(tenantID string) (*models.Season, error) {
	var season models.Season
	if err := s.DB.First(&season, "tenant_id = ? AND end_date IS NULL", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSeason
		}
		return nil, err
	}
	return &season, nil
}

// SeasonByName looks a season up by its name or URL slug within the tenant.
func (s *SeasonService) SeasonByName(tenantID, name string) (*models.Season, error) {
	var season models.Season
	if err := s.DB.First(&season, "tenant_id = ? AND (name = ? OR slug = ?)", tenantID, name, name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return &season, nil
}

// MatchCount counts every match logged against a season, confirmed or not.
func (s *SeasonService) MatchCount(seasonID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Match{}).Where("season_id = ?", seasonID).Count(&count).Error
	return count, err
}

// --- HTTP surface ---

type startSeasonRequest struct {
	Name string `json:"name"`
}

// StartSeasonHandler starts a new season (admin only).
func (s *SeasonService) StartSeasonHandler(c *fiber.Ctx) error {
	tenantID := c.Locals("tenant_id").(string)
	if !hasRole(c, "admin") {
		return respondError(c, ErrForbidden)
	}

	var req startSeasonRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}

	season, err := s.StartSeason(tenantID, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(season)
}

// EndSeasonHandler closes the current season (admin only).
func (s *SeasonService) EndSeasonHandler(c *fiber.Ctx) error {
	tenantID := c.Locals("tenant_id").(string)
	if !hasRole(c, "admin") {
		return respondError(c, ErrForbidden)
	}

	season, err := s.EndSeason(tenantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(season)
}

// SeasonInfoHandler shows a season's dates and how many matches it saw.
// /seasons/current resolves to the open season.
func (s *SeasonService) SeasonInfoHandler(c *fiber.Ctx) error {
	tenantID := c.Locals("tenant_id").(string)

	var season *models.Season
	var err error
	if name := c.Params("name"); name == "current" {
		season, err = s.CurrentSeason(tenantID)
	} else {
		season, err = s.SeasonByName(tenantID, name)
	}
	if err != nil {
		return respondError(c, err)
	}

	count, err := s.MatchCount(season.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"season":         season,
		"matches_played": count,
	})
}
