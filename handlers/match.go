package handlers

import (
	"league-match-system/middleware"
	"league-match-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Match lifecycle
	secured.Post("/matches", matchService.LogMatchHandler)
	secured.Get("/matches", matchService.ListMatchesHandler)
	secured.Get("/matches/:id", matchService.GetMatchHandler)
	secured.Post("/matches/:id/confirm", matchService.ConfirmHandler)
	secured.Post("/matches/:id/dispute", matchService.DisputeHandler)
	secured.Delete("/matches/:id", matchService.CancelHandler)
}
