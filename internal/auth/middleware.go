package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-portal/internal/domain"
)

const identityKey = "auth_identity"

// Middleware guards authenticated routes. The scope comes from the :scope
// route parameter; any failure produces the one closed response shape.
type Middleware struct {
	cookies  *CookieManager
	resolver *Resolver
	scopes   *Registry
}

// NewMiddleware constructs middleware.
func NewMiddleware(cookies *CookieManager, resolver *Resolver, scopes *Registry) *Middleware {
	return &Middleware{cookies: cookies, resolver: resolver, scopes: scopes}
}

// Handle resolves the session cookie for the requested scope and stores the
// identity in request locals.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	scope, err := m.scopes.Get(c.Params("scope"))
	if err != nil {
		return WriteUnauthenticated(c)
	}

	token, ok := m.cookies.Read(c, scope.CookieName)
	if !ok {
		// equivalent raw-header entry point for clients that bypass
		// the structured cookie store
		token, ok = TokenFromCookieHeader(c.Get(fiber.HeaderCookie), scope.CookieName)
		if !ok {
			return WriteUnauthenticated(c)
		}
	}

	identity, err := m.resolver.Resolve(c.Context(), scope.Name, token)
	if err != nil {
		return WriteUnauthenticated(c)
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// IdentityFromContext retrieves the resolved identity.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok
}

// WriteUnauthenticated emits the uniform closed response. Authenticated
// endpoints answer identically no matter which stage failed.
func WriteUnauthenticated(c *fiber.Ctx) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"loggedIn": false})
}
