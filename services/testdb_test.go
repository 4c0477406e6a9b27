package services

import (
	"testing"

	"league-match-system/models"

	moderncSqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

// newTestDB opens a private in-memory database with the full schema. One
// connection only, so the pool cannot hand a second connection a different
// empty memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(moderncSqlite.New(moderncSqlite.Config{
		DSN:        ":memory:",
		DriverName: "sqlite",
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.Season{},
		&models.Deck{},
		&models.Profile{},
		&models.Match{},
		&models.MatchPlayer{},
		&models.Config{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// newTestServices wires the full service graph over one test database.
type testServices struct {
	DB        *gorm.DB
	Configs   *ConfigService
	Seasons   *SeasonService
	Standings *StandingsService
	Matches   *MatchService
	Decks     *DeckService
	Profiles  *ProfileService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	db := newTestDB(t)
	configs := NewConfigService(db)
	seasons := NewSeasonService(db)
	standings := NewStandingsService(db, configs, seasons)
	matches := NewMatchService(db, nil)
	decks := NewDeckService(db, configs, standings)
	profiles := NewProfileService(db, decks, standings)

	return &testServices{
		DB:        db,
		Configs:   configs,
		Seasons:   seasons,
		Standings: standings,
		Matches:   matches,
		Decks:     decks,
		Profiles:  profiles,
	}
}

// startSeason opens a season for the tenant or fails the test.
func (ts *testServices) startSeason(t *testing.T, tenantID, name string) *models.Season {
	t.Helper()

	season, err := ts.Seasons.StartSeason(tenantID, name)
	if err != nil {
		t.Fatalf("failed to start season %q: %v", name, err)
	}
	return season
}

// logMatch logs a match or fails the test.
func (ts *testServices) logMatch(t *testing.T, tenantID, winner string, players []string) *models.Match {
	t.Helper()

	match, err := ts.Matches.LogMatch(tenantID, winner, players, "", "")
	if err != nil {
		t.Fatalf("failed to log match: %v", err)
	}
	return match
}

// confirmAll confirms the match for every listed player.
func (ts *testServices) confirmAll(t *testing.T, tenantID, matchID string, players []string) *models.Match {
	t.Helper()

	var match *models.Match
	var err error
	for _, p := range players {
		match, err = ts.Matches.Confirm(tenantID, matchID, p)
		if err != nil {
			t.Fatalf("failed to confirm match for %s: %v", p, err)
		}
	}
	return match
}
