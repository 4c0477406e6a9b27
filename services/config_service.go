package services

import (
	"errors"

	"league-match-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ConfigService serves the per-tenant scoring policy. The row is created
// lazily with defaults the first time a tenant touches it; updates only ever
// arrive as validated patches.
type ConfigService struct {
	DB *gorm.DB
}

func NewConfigService(db *gorm.DB) *ConfigService {
	return &ConfigService{DB: db}
}

// FetchConfig returns the tenant's config, creating the default row on first
// access.
func (s *ConfigService) FetchConfig(tenantID string) (*models.Config, error) {
	var cfg models.Config
	err := s.DB.First(&cfg, "tenant_id = ?", tenantID).Error
	if err == nil {
		return &cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cfg = models.DefaultConfig(tenantID)
	if err := s.DB.Create(&cfg).Error; err != nil {
		// Lost a create race; the winner's row is authoritative.
		if fetchErr := s.DB.First(&cfg, "tenant_id = ?", tenantID).Error; fetchErr == nil {
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// PatchConfig applies a validated patch to the tenant's config and returns
// the updated policy. Only fields supplied in the patch change.
func (s *ConfigService) PatchConfig(tenantID string, patch models.Patch) (*models.Config, error) {
	updates, err := patch.Apply(models.ConfigFields)
	if err != nil {
		return nil, err
	}

	if _, err := s.FetchConfig(tenantID); err != nil {
		return nil, err
	}

	if err := s.DB.Model(&models.Config{}).
		Where("tenant_id = ?", tenantID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	var cfg models.Config
	if err := s.DB.First(&cfg, "tenant_id = ?", tenantID).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// --- HTTP surface ---

// GetConfigHandler returns the tenant's scoring policy (admin only).
func (s *ConfigService) GetConfigHandler(c *fiber.Ctx) error {
	tenantID := c.Locals("tenant_id").(string)
	if !hasRole(c, "admin") {
		return respondError(c, ErrForbidden)
	}

	cfg, err := s.FetchConfig(tenantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cfg)
}

type patchConfigRequest struct {
	Ops models.Patch `json:"ops"`
}

// PatchConfigHandler applies field set/unset ops to the tenant's scoring
// policy (admin only).
func (s *ConfigService) PatchConfigHandler(c *fiber.Ctx) error {
	tenantID := c.Locals("tenant_id").(string)
	if !hasRole(c, "admin") {
		return respondError(c, ErrForbidden)
	}

	var req patchConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	cfg, err := s.PatchConfig(tenantID, req.Ops)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(cfg)
}
