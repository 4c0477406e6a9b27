package services

import (
	"errors"
	"sort"

	"league-match-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// leaderboardPageSize is the number of entries one leaderboard page shows.
const leaderboardPageSize = 25

// StandingsService folds a season's confirmed matches into ranked standings.
// Nothing is persisted; every query recomputes from the match records, so
// concurrent invocations are safe without coordination.
type StandingsService struct {
	DB      *gorm.DB
	Configs *ConfigService
	Seasons *SeasonService
}

func NewStandingsService(db *gorm.DB, configs *ConfigService, seasons *SeasonService) *StandingsService {
	return &StandingsService{DB: db, Configs: configs, Seasons: seasons}
}

// StandingRow is one leaderboard line. Points is the signed net score;
// DisplayPoints adds the tenant's base offset and may still be negative.
type StandingRow struct {
	UserID         string `json:"user_id"`
	Matches        int    `json:"matches"`
	Wins           int    `json:"wins"`
	Losses         int    `json:"losses"`
	WinRatePercent int    `json:"win_rate_percent"`
	Points         int    `json:"points"`
	DisplayPoints  int    `json:"display_points"`
}

// StatLine is a win/loss summary for an individual stat view.
type StatLine struct {
	Matches        int `json:"matches"`
	Wins           int `json:"wins"`
	Losses         int `json:"losses"`
	WinRatePercent int `json:"win_rate_percent"`
}

// SeasonStatLine is a StatLine scoped to one season, with the season's
// points under the tenant's scoring policy.
type SeasonStatLine struct {
	SeasonID   string `json:"season_id"`
	SeasonName string `json:"season_name"`
	StatLine
	Points int `json:"points"`
}

type tally struct {
	matches int
	wins    int
	losses  int
	points  int
}

// Leaderboard ranks a season's players. Only fully-confirmed matches count;
// players below the minimum-games floor are dropped; ties on points break by
// win rate, further ties keep stable order. Capped to one display page.
func (s *StandingsService) Leaderboard(tenantID, seasonID string, cfg *models.Config) ([]StandingRow, error) {
	matches, err := s.confirmedMatches(s.DB.Where("tenant_id = ? AND season_id = ?", tenantID, seasonID))
	if err != nil {
		return nil, err
	}

	standings := make(map[string]*tally)
	order := make([]string, 0)

	for _, match := range matches {
		for _, player := range match.Players {
			t, ok := standings[player.UserID]
			if !ok {
				t = &tally{}
				standings[player.UserID] = t
				order = append(order, player.UserID)
			}

			t.matches++
			if player.UserID == match.WinnerUserID {
				t.wins++
				t.points += cfg.PointsGained
			} else {
				t.losses++
				t.points -= cfg.PointsLost
			}
		}
	}

	rows := make([]StandingRow, 0, len(order))
	for _, userID := range order {
		t := standings[userID]
		if t.matches < cfg.MinimumGamesPerPlayer {
			continue
		}
		rows = append(rows, StandingRow{
			UserID:         userID,
			Matches:        t.matches,
			Wins:           t.wins,
			Losses:         t.losses,
			WinRatePercent: winRate(t.wins, t.matches),
			Points:         t.points,
			DisplayPoints:  cfg.BasePoints + t.points,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		// Win-rate tie-break on the exact ratio, not the floored percent.
		return float64(rows[i].Wins)*float64(rows[j].Matches) > float64(rows[j].Wins)*float64(rows[i].Matches)
	})

	if len(rows) > leaderboardPageSize {
		rows = rows[:leaderboardPageSize]
	}
	return rows, nil
}

// PlayerStats summarizes one player's confirmed matches across all seasons,
// with a sub-summary and points for the currently open season. Individual
// views show every game regardless of the leaderboard floor.
func (s *StandingsService) PlayerStats(tenantID, userID string) (StatLine, *SeasonStatLine, error) {
	matches, err := s.confirmedMatches(s.DB.
		Where("tenant_id = ?", tenantID).
		Where("id IN (?)", s.DB.Model(&models.MatchPlayer{}).Select("match_id").Where("user_id = ?", userID)))
	if err != nil {
		return StatLine{}, nil, err
	}

	return s.splitBySeason(tenantID, userID, matches)
}

// DeckStats summarizes the confirmed matches one player played with one
// specific deck, with a current-season sub-summary.
func (s *StandingsService) DeckStats(tenantID, userID, deckID string) (StatLine, *SeasonStatLine, error) {
	matches, err := s.confirmedMatches(s.DB.
		Where("tenant_id = ?", tenantID).
		Where("id IN (?)", s.DB.Model(&models.MatchPlayer{}).Select("match_id").
			Where("user_id = ? AND deck_id = ?", userID, deckID)))
	if err != nil {
		return StatLine{}, nil, err
	}

	return s.splitBySeason(tenantID, userID, matches)
}

// confirmedMatches loads matches that have zero unconfirmed player slots.
func (s *StandingsService) confirmedMatches(q *gorm.DB) ([]models.Match, error) {
	var matches []models.Match
	err := q.Preload("Players").
		Where("id NOT IN (?)", s.DB.Model(&models.MatchPlayer{}).Select("match_id").Where("confirmed = ?", false)).
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *StandingsService) splitBySeason(tenantID, userID string, matches []models.Match) (StatLine, *SeasonStatLine, error) {
	total := foldStats(userID, matches, "")

	season, err := s.Seasons.CurrentSeason(tenantID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSeason) {
			return total, nil, nil
		}
		return total, nil, err
	}

	cfg, err := s.Configs.FetchConfig(tenantID)
	if err != nil {
		return total, nil, err
	}

	line := foldStats(userID, matches, season.ID)
	return total, &SeasonStatLine{
		SeasonID:   season.ID,
		SeasonName: season.Name,
		StatLine:   line,
		Points:     line.Wins*cfg.PointsGained - line.Losses*cfg.PointsLost,
	}, nil
}

// foldStats tallies one player's wins and losses, optionally restricted to a
// single season.
func foldStats(userID string, matches []models.Match, seasonID string) StatLine {
	var line StatLine
	for _, match := range matches {
		if seasonID != "" && match.SeasonID != seasonID {
			continue
		}
		line.Matches++
		if match.WinnerUserID == userID {
			line.Wins++
		} else {
			line.Losses++
		}
	}
	line.WinRatePercent = winRate(line.Wins, line.Matches)
	return line
}

// winRate is floor(wins/matches*100); zero matches is 0%, never a division
// error.
func winRate(wins, matches int) int {
	if matches == 0 {
		return 0
	}
	return wins * 100 / matches
}

// --- HTTP surface ---

// LeaderboardHandler shows the standings for the current season, or for
// ?season=<name>.
func (s *StandingsService) LeaderboardHandler(c *fiber.Ctx) error {
	tenantID := c.Locals("tenant_id").(string)

	var season *models.Season
	var err error
	if name := c.Query("season"); name != "" {
		season, err = s.Seasons.SeasonByName(tenantID, name)
	} else {
		season, err = s.Seasons.CurrentSeason(tenantID)
	}
	if err != nil {
		return respondError(c, err)
	}

	cfg, err := s.Configs.FetchConfig(tenantID)
	if err != nil {
		return respondError(c, err)
	}

	rows, err := s.Leaderboard(tenantID, season.ID, cfg)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"season":    season.Name,
		"standings": rows,
	})
}
