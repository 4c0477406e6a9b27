// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the caller's identity and tenant set by the
// Gateway. The ids are opaque strings; the service only ever compares them
// for equality.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		tenantID := c.Get("X-Tenant-ID")
		rolesStr := c.Get("X-User-Roles")

		if userID == "" || tenantID == "" {
			log.Printf("[USER_CTX] missing identity headers on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID/X-Tenant-ID — request must come through gateway with auth context",
			})
		}

		var roles []string
		if rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				r = strings.TrimSpace(r)
				if r != "" {
					roles = append(roles, r)
				}
			}
		}

		c.Locals("user_id", userID)
		c.Locals("tenant_id", tenantID)
		c.Locals("user_roles", roles)

		return c.Next()
	}
}
