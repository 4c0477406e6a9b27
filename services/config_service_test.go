package services

import (
	"testing"

	"league-match-system/models"
)

func TestFetchConfigCreatesDefaults(t *testing.T) {
	ts := newTestServices(t)

	cfg, err := ts.Configs.FetchConfig(testTenant)
	if err != nil {
		t.Fatalf("FetchConfig() error = %v", err)
	}

	if cfg.MinimumGamesPerPlayer != 10 {
		t.Errorf("MinimumGamesPerPlayer = %d, want 10", cfg.MinimumGamesPerPlayer)
	}
	if cfg.PointsGained != 1 || cfg.PointsLost != 0 {
		t.Errorf("points = +%d/-%d, want +1/-0", cfg.PointsGained, cfg.PointsLost)
	}
	if cfg.BasePoints != 100 {
		t.Errorf("BasePoints = %d, want 100", cfg.BasePoints)
	}
	if cfg.DeckLimit != 50 {
		t.Errorf("DeckLimit = %d, want 50", cfg.DeckLimit)
	}
	if cfg.DisputeRoleRef != nil {
		t.Errorf("DisputeRoleRef = %v, want unset", cfg.DisputeRoleRef)
	}

	// The lazily created row persists; a second fetch reads it back.
	var count int64
	ts.DB.Model(&models.Config{}).Count(&count)
	if count != 1 {
		t.Fatalf("config rows = %d, want 1", count)
	}
	again, err := ts.Configs.FetchConfig(testTenant)
	if err != nil {
		t.Fatalf("second FetchConfig() error = %v", err)
	}
	if again.TenantID != cfg.TenantID {
		t.Error("second fetch returned a different row")
	}
}

func TestPatchConfig(t *testing.T) {
	ts := newTestServices(t)

	cfg, err := ts.Configs.PatchConfig(testTenant, models.Patch{
		{Field: "minimum_games_per_player", Value: 5},
		{Field: "points_lost", Value: float64(2)},
		{Field: "dispute_role_ref", Value: "role-judges"},
	})
	if err != nil {
		t.Fatalf("PatchConfig() error = %v", err)
	}

	if cfg.MinimumGamesPerPlayer != 5 {
		t.Errorf("MinimumGamesPerPlayer = %d, want 5", cfg.MinimumGamesPerPlayer)
	}
	if cfg.PointsLost != 2 {
		t.Errorf("PointsLost = %d, want 2", cfg.PointsLost)
	}
	if cfg.DisputeRoleRef == nil || *cfg.DisputeRoleRef != "role-judges" {
		t.Errorf("DisputeRoleRef = %v, want role-judges", cfg.DisputeRoleRef)
	}
	// Untouched fields keep their defaults.
	if cfg.PointsGained != 1 || cfg.BasePoints != 100 {
		t.Errorf("untouched fields changed: gained=%d base=%d", cfg.PointsGained, cfg.BasePoints)
	}
}

func TestPatchConfigUnset(t *testing.T) {
	ts := newTestServices(t)

	if _, err := ts.Configs.PatchConfig(testTenant, models.Patch{
		{Field: "dispute_role_ref", Value: "role-judges"},
	}); err != nil {
		t.Fatalf("PatchConfig(set) error = %v", err)
	}

	cfg, err := ts.Configs.PatchConfig(testTenant, models.Patch{
		{Field: "dispute_role_ref", Unset: true},
	})
	if err != nil {
		t.Fatalf("PatchConfig(unset) error = %v", err)
	}
	if cfg.DisputeRoleRef != nil {
		t.Errorf("DisputeRoleRef = %v, want cleared", cfg.DisputeRoleRef)
	}
}

func TestPatchConfigRejectsBadPatches(t *testing.T) {
	ts := newTestServices(t)

	tests := []struct {
		name  string
		patch models.Patch
	}{
		{"empty patch", models.Patch{}},
		{"unknown field", models.Patch{{Field: "elo_k_factor", Value: 32}}},
		{"non-nullable unset", models.Patch{{Field: "base_points", Unset: true}}},
		{"fractional int", models.Patch{{Field: "points_gained", Value: 1.5}}},
		{"string for int", models.Patch{{Field: "deck_limit", Value: "many"}}},
		{"int for string", models.Patch{{Field: "dispute_role_ref", Value: 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ts.Configs.PatchConfig(testTenant, tt.patch); err == nil {
				t.Error("PatchConfig() accepted an invalid patch")
			}
		})
	}

	// Nothing leaked through: the config still reads as defaults.
	cfg, err := ts.Configs.FetchConfig(testTenant)
	if err != nil {
		t.Fatalf("FetchConfig() error = %v", err)
	}
	if cfg.BasePoints != 100 || cfg.PointsGained != 1 {
		t.Errorf("config mutated by rejected patches: %+v", cfg)
	}
}

func TestConfigIsTenantScoped(t *testing.T) {
	ts := newTestServices(t)

	if _, err := ts.Configs.PatchConfig(testTenant, models.Patch{
		{Field: "deck_limit", Value: 3},
	}); err != nil {
		t.Fatalf("PatchConfig() error = %v", err)
	}

	other, err := ts.Configs.FetchConfig("other-tenant")
	if err != nil {
		t.Fatalf("FetchConfig(other) error = %v", err)
	}
	if other.DeckLimit != 50 {
		t.Errorf("other tenant's DeckLimit = %d, want the default 50", other.DeckLimit)
	}
}
