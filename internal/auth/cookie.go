package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Cookie names, one per principal scope. Vendor and customer logins share
// one name, so a browser holds at most one vendor-or-customer session while
// sudo and admin sessions coexist independently.
const (
	CookieSudo    = "sudo_token"
	CookieAdmin   = "admin_token"
	CookieSession = "token"
	CookieUser    = "user_token"
)

// CookieManager binds session tokens to HTTP-only cookies. The Secure
// attribute is set only for production deployments.
type CookieManager struct {
	secure bool
}

// NewCookieManager builds a manager.
func NewCookieManager(secure bool) *CookieManager {
	return &CookieManager{secure: secure}
}

// Set attaches a session cookie carrying the token. The TTL must match the
// token's expiry so cookie and token die together.
func (m *CookieManager) Set(c *fiber.Ctx, name, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Clear re-sets the cookie with an empty value and an epoch expiry, keeping
// the attributes identical to Set so strict clients honor the deletion.
// Calling it repeatedly produces the same header.
func (m *CookieManager) Clear(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Read extracts the token from the request cookie without validating it.
func (m *CookieManager) Read(c *fiber.Ctx, name string) (string, bool) {
	value := c.Cookies(name)
	return value, value != ""
}

// TokenFromCookieHeader extracts a named cookie value out of a raw Cookie
// header. Equivalent entry point to Read for callers that only hold the
// header string.
func TokenFromCookieHeader(header, name string) (string, bool) {
	for _, part := range strings.Split(header, ";") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) == 2 && pair[0] == name && pair[1] != "" {
			return pair[1], true
		}
	}
	return "", false
}
