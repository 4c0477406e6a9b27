package handlers

import (
	"league-match-system/middleware"
	"league-match-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeagueRoutes(app *fiber.App, seasonService *services.SeasonService, standingsService *services.StandingsService, configService *services.ConfigService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Seasons (start/end are admin-gated inside the handlers)
	secured.Post("/seasons", seasonService.StartSeasonHandler)
	secured.Post("/seasons/end", seasonService.EndSeasonHandler)
	secured.Get("/seasons/:name", seasonService.SeasonInfoHandler)

	// Standings
	secured.Get("/leaderboard", standingsService.LeaderboardHandler)

	// Scoring policy
	secured.Get("/config", configService.GetConfigHandler)
	secured.Patch("/config", configService.PatchConfigHandler)
}
