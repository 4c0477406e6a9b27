package handlers

import (
	"league-match-system/middleware"
	"league-match-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDeckRoutes(app *fiber.App, deckService *services.DeckService, profileService *services.ProfileService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Deck registry
	secured.Put("/decks", deckService.UseDeckHandler)
	secured.Get("/decks/:name/stats", deckService.DeckStatsHandler)

	// Profiles
	secured.Get("/profile", profileService.ProfileHandler)
}
