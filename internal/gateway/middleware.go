package gateway

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"tessera/internal/auth"
	"tessera/internal/metadata"
)

// AuthMiddleware validates the bearer token and attaches the principal
// context. Tokens scoped to a different table than the one this gateway
// serves are rejected outright.
func AuthMiddleware(secret, table string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return UnauthorizedError("Missing auth token")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return UnauthorizedError("Invalid auth header format")
		}

		claims, err := auth.ParseAccessToken(parts[1], secret)
		if err != nil {
			return UnauthorizedError("Invalid or expired token")
		}
		if claims.Table != table {
			return ForbiddenError("Token is not scoped to this table")
		}

		c.Locals("principal", claims.Principal())
		return c.Next()
	}
}

// GetPrincipal extracts the principal context from a Fiber context.
func GetPrincipal(c *fiber.Ctx) *metadata.PrincipalContext {
	p, _ := c.Locals("principal").(*metadata.PrincipalContext)
	return p
}

// requireOperation checks the principal's granted role against the
// operation the handler is about to perform.
func requireOperation(c *fiber.Ctx, op metadata.Operation) error {
	p := GetPrincipal(c)
	if p == nil {
		return UnauthorizedError("Missing auth token")
	}
	if !p.Allows(op) {
		return ForbiddenError("Role " + string(p.Role) + " does not permit " + string(op))
	}
	return nil
}
