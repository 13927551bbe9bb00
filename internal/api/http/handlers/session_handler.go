package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-portal/internal/api/dto"
	"github.com/spec-kit/marketplace-portal/internal/auth"
	"github.com/spec-kit/marketplace-portal/internal/domain"
	"github.com/spec-kit/marketplace-portal/internal/service"
	apperrors "github.com/spec-kit/marketplace-portal/pkg/util"
)

// SessionsHandler exposes the login/me/logout triad for every scope. The
// :scope route parameter picks the flow out of the scope registry; there is
// no per-role handler code.
type SessionsHandler struct {
	sessions *service.SessionService
	cookies  *auth.CookieManager
	scopes   *auth.Registry
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(sessions *service.SessionService, cookies *auth.CookieManager, scopes *auth.Registry) *SessionsHandler {
	return &SessionsHandler{sessions: sessions, cookies: cookies, scopes: scopes}
}

// Login handles POST /auth/login/:scope.
func (h *SessionsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username and password required")
	}

	scopeName := c.Params("scope")
	_, token, _, err := h.sessions.Login(c.Context(), scopeName, req.Username, req.Password)
	if err != nil {
		switch err {
		case domain.ErrCredentialNotFound:
			return apperrors.NewNotFound("account", nil)
		case domain.ErrBadPassword:
			return apperrors.NewUnauthorized("invalid credentials")
		case domain.ErrLoginThrottled:
			return apperrors.NewTooManyRequests("too many login attempts")
		default:
			return apperrors.NewInternalError(err)
		}
	}

	scope, err := h.scopes.Get(scopeName)
	if err != nil {
		return apperrors.NewNotFound("account", nil)
	}
	h.cookies.Set(c, scope.CookieName, token, scope.TTL)

	return c.JSON(fiber.Map{"message": "login successful"})
}

// Me handles GET /auth/me/:scope. The auth middleware has already resolved
// the identity; every failure was answered there with the closed shape.
func (h *SessionsHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return auth.WriteUnauthenticated(c)
	}

	response := fiber.Map{"loggedIn": true}
	response[string(identity.Role)] = identity.Profile
	return c.JSON(response)
}

// Logout handles POST /auth/logout/:scope. Sessions are stateless: clearing
// the cookie is the whole operation.
func (h *SessionsHandler) Logout(c *fiber.Ctx) error {
	scope, err := h.scopes.Get(c.Params("scope"))
	if err != nil {
		return apperrors.NewNotFound("scope", nil)
	}

	if token, ok := h.cookies.Read(c, scope.CookieName); ok {
		h.sessions.Logout(c.Context(), scope.Name, token)
	}
	h.cookies.Clear(c, scope.CookieName)

	// intermediaries must never serve a stale authenticated page
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Set(fiber.HeaderPragma, "no-cache")

	return c.JSON(fiber.Map{"success": true})
}
