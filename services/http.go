package services

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error to its HTTP status with the error's own
// short message as the body. Unknown errors are logged and reported as 500
// without leaking internals.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrMatchNotFound),
		errors.Is(err, ErrSeasonNotFound),
		errors.Is(err, ErrDeckNotFound),
		errors.Is(err, ErrNoActiveSeason):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, ErrInvalidPlayers),
		errors.Is(err, ErrAlreadyConfirmed),
		errors.Is(err, ErrAlreadyDisputed),
		errors.Is(err, ErrSeasonActive),
		errors.Is(err, ErrSeasonNameTaken),
		errors.Is(err, ErrDeckLimit):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, ErrNotAParticipant),
		errors.Is(err, ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})

	default:
		log.Printf("ERROR: %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

// hasRole reports whether the gateway attached the given role to the caller.
func hasRole(c *fiber.Ctx, role string) bool {
	roles, _ := c.Locals("user_roles").([]string)
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
