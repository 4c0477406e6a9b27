package services

import (
	"errors"
	"testing"
)

func TestStartSeason(t *testing.T) {
	ts := newTestServices(t)

	season, err := ts.Seasons.StartSeason(testTenant, "Winter League 2026")
	if err != nil {
		t.Fatalf("StartSeason() error = %v", err)
	}
	if !season.Open() {
		t.Error("fresh season not open")
	}
	if season.Slug != "winter-league-2026" {
		t.Errorf("slug = %q, want winter-league-2026", season.Slug)
	}

	// A second season cannot open while one is running.
	if _, err := ts.Seasons.StartSeason(testTenant, "Spring League"); !errors.Is(err, ErrSeasonActive) {
		t.Fatalf("StartSeason() with open season error = %v, want ErrSeasonActive", err)
	}
}

func TestSeasonNamesAreUniquePerTenant(t *testing.T) {
	ts := newTestServices(t)

	ts.startSeason(t, testTenant, "Season One")
	if _, err := ts.Seasons.EndSeason(testTenant); err != nil {
		t.Fatalf("EndSeason() error = %v", err)
	}

	// The name stays claimed after the season closes.
	if _, err := ts.Seasons.StartSeason(testTenant, "Season One"); !errors.Is(err, ErrSeasonNameTaken) {
		t.Fatalf("StartSeason() reused name error = %v, want ErrSeasonNameTaken", err)
	}

	// Another tenant may use the same name.
	if _, err := ts.Seasons.StartSeason("other-tenant", "Season One"); err != nil {
		t.Fatalf("StartSeason() in other tenant error = %v", err)
	}
}

func TestSeasonLookupBySlug(t *testing.T) {
	ts := newTestServices(t)
	started := ts.startSeason(t, testTenant, "Winter League 2026")

	// The stored slug resolves the season just like its display name.
	bySlug, err := ts.Seasons.SeasonByName(testTenant, "winter-league-2026")
	if err != nil {
		t.Fatalf("SeasonByName(slug) error = %v", err)
	}
	if bySlug.ID != started.ID {
		t.Errorf("slug lookup = %s, want %s", bySlug.ID, started.ID)
	}

	byName, err := ts.Seasons.SeasonByName(testTenant, "Winter League 2026")
	if err != nil {
		t.Fatalf("SeasonByName(name) error = %v", err)
	}
	if byName.ID != started.ID {
		t.Errorf("name lookup = %s, want %s", byName.ID, started.ID)
	}
}

func TestEndSeason(t *testing.T) {
	ts := newTestServices(t)

	if _, err := ts.Seasons.EndSeason(testTenant); !errors.Is(err, ErrNoActiveSeason) {
		t.Fatalf("EndSeason() with no season error = %v, want ErrNoActiveSeason", err)
	}

	ts.startSeason(t, testTenant, "Season One")
	ended, err := ts.Seasons.EndSeason(testTenant)
	if err != nil {
		t.Fatalf("EndSeason() error = %v", err)
	}
	if ended.EndDate == nil {
		t.Fatal("end date not set")
	}

	// The record survives as history.
	kept, err := ts.Seasons.SeasonByName(testTenant, "Season One")
	if err != nil {
		t.Fatalf("SeasonByName() error = %v", err)
	}
	if kept.Open() {
		t.Error("ended season still reads as open")
	}

	// Ending again has nothing to close.
	if _, err := ts.Seasons.EndSeason(testTenant); !errors.Is(err, ErrNoActiveSeason) {
		t.Fatalf("second EndSeason() error = %v, want ErrNoActiveSeason", err)
	}
}

func TestCurrentSeason(t *testing.T) {
	ts := newTestServices(t)

	if _, err := ts.Seasons.CurrentSeason(testTenant); !errors.Is(err, ErrNoActiveSeason) {
		t.Fatalf("CurrentSeason() error = %v, want ErrNoActiveSeason", err)
	}

	started := ts.startSeason(t, testTenant, "Season One")
	current, err := ts.Seasons.CurrentSeason(testTenant)
	if err != nil {
		t.Fatalf("CurrentSeason() error = %v", err)
	}
	if current.ID != started.ID {
		t.Errorf("current season = %s, want %s", current.ID, started.ID)
	}

	// Other tenants do not see it.
	if _, err := ts.Seasons.CurrentSeason("other-tenant"); !errors.Is(err, ErrNoActiveSeason) {
		t.Fatalf("cross-tenant CurrentSeason() error = %v, want ErrNoActiveSeason", err)
	}
}

func TestMatchCount(t *testing.T) {
	ts := newTestServices(t)
	season := ts.startSeason(t, testTenant, "Season One")

	ts.logMatch(t, testTenant, "alice", []string{"alice", "bob"})
	m := ts.logMatch(t, testTenant, "bob", []string{"alice", "bob"})
	ts.confirmAll(t, testTenant, m.ID, []string{"alice", "bob"})

	// Pending matches count too; only standings require confirmation.
	count, err := ts.Seasons.MatchCount(season.ID)
	if err != nil {
		t.Fatalf("MatchCount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
