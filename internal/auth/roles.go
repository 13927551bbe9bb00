package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-portal/internal/domain"
)

// RequireRole gates a route on the resolved identity's role. Failures use
// the same closed shape as the auth middleware so nothing about the gate
// leaks to the caller.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return WriteUnauthenticated(c)
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[identity.Role]; !exists {
			return WriteUnauthenticated(c)
		}
		return c.Next()
	}
}
