package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/marketplace-portal/internal/api/http"
	"github.com/spec-kit/marketplace-portal/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-portal/internal/auth"
	"github.com/spec-kit/marketplace-portal/internal/domain"
	"github.com/spec-kit/marketplace-portal/internal/events"
	"github.com/spec-kit/marketplace-portal/internal/observability"
	"github.com/spec-kit/marketplace-portal/internal/service"
)

type stubAdminRepo struct {
	admins map[string]*domain.Admin
}

func (r *stubAdminRepo) GetByUsername(_ context.Context, username string) (*domain.Admin, error) {
	for _, admin := range r.admins {
		if admin.Username == username {
			return admin, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubAdminRepo) GetByID(_ context.Context, id string) (*domain.Admin, error) {
	if admin, ok := r.admins[id]; ok {
		return admin, nil
	}
	return nil, pgx.ErrNoRows
}

type stubVendorRepo struct {
	vendors map[string]*domain.Vendor
}

func (r *stubVendorRepo) GetByUsername(_ context.Context, username string) (*domain.Vendor, error) {
	for _, vendor := range r.vendors {
		if vendor.Username == username {
			return vendor, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubVendorRepo) GetByID(_ context.Context, id string) (*domain.Vendor, error) {
	if vendor, ok := r.vendors[id]; ok {
		return vendor, nil
	}
	return nil, pgx.ErrNoRows
}

type stubCustomerRepo struct {
	customers map[string]*domain.Customer
}

func (r *stubCustomerRepo) GetByUsername(_ context.Context, username string) (*domain.Customer, error) {
	for _, customer := range r.customers {
		if customer.Username == username {
			return customer, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	if customer, ok := r.customers[id]; ok {
		return customer, nil
	}
	return nil, pgx.ErrNoRows
}

type testEnv struct {
	app     *fiber.App
	tokens  *auth.TokenManager
	vendors *stubVendorRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hash := func(password string) string {
		h, err := auth.HashPassword(password, bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		return h
	}

	admins := &stubAdminRepo{admins: map[string]*domain.Admin{
		"admin-1": {ID: "admin-1", Username: "root", Role: domain.RoleSudo, PasswordHash: hash("rootpw"), Active: true},
	}}
	vendors := &stubVendorRepo{vendors: map[string]*domain.Vendor{
		"vendor-1": {ID: "vendor-1", Username: "v1", VendorName: "Acme Supplies", Email: "v1@example.com", Phone: "555-0100", PasswordHash: hash("correct"), Active: true},
	}}
	customers := &stubCustomerRepo{customers: map[string]*domain.Customer{
		"customer-1": {ID: "customer-1", Username: "c1", FullName: "Carol Jones", Email: "c1@example.com", PasswordHash: hash("carolpw"), Active: true},
	}}

	logger := zap.NewNop()
	tokens := auth.NewTokenManager("secret", 168*time.Hour)
	cookies := auth.NewCookieManager(false)
	registry := auth.NewRegistry(admins, vendors, customers, 168*time.Hour)
	resolver := auth.NewResolver(tokens, registry, logger)
	middleware := auth.NewMiddleware(cookies, resolver, registry)

	dispatcher := events.NewInMemoryDispatcher()
	sessions := service.NewSessionService(service.SessionDependencies{
		Scopes:     registry,
		Tokens:     tokens,
		Dispatcher: dispatcher,
	}, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Sessions:       handlers.NewSessionsHandler(sessions, cookies, registry),
		AuthMiddleware: middleware,
	})

	return &testEnv{app: app, tokens: tokens, vendors: vendors}
}

func (e *testEnv) login(t *testing.T, scope, username, password string) *http.Response {
	t.Helper()
	body := strings.NewReader(`{"username":"` + username + `","password":"` + password + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login/"+scope, body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(raw)
}

func sessionCookie(t *testing.T, resp *http.Response, name string) string {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	t.Fatalf("cookie %s not set", name)
	return ""
}

func TestVendorLoginRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	resp := env.login(t, "vendor", "v1", "correct")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	setCookie := strings.ToLower(resp.Header.Get("Set-Cookie"))
	if !strings.Contains(setCookie, "max-age=604800") || !strings.Contains(setCookie, "httponly") {
		t.Fatalf("unexpected session cookie: %q", setCookie)
	}
	token := sessionCookie(t, resp, "token")

	req := httptest.NewRequest(http.MethodGet, "/auth/me/vendor", nil)
	req.Header.Set("Cookie", "token="+token)
	meResp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("me request: %v", err)
	}
	if meResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", meResp.StatusCode)
	}
	body := readBody(t, meResp)
	for _, want := range []string{`"loggedIn":true`, `"vendor"`, `"vendorName":"Acme Supplies"`, `"email":"v1@example.com"`, `"phone":"555-0100"`, `"active":true`} {
		if !strings.Contains(body, want) {
			t.Fatalf("me body missing %s: %s", want, body)
		}
	}
	if strings.Contains(body, "password") {
		t.Fatalf("password material leaked: %s", body)
	}
}

func TestLoginFailureStatuses(t *testing.T) {
	env := newTestEnv(t)

	if resp := env.login(t, "vendor", "ghost", "pw"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown account: expected 404, got %d", resp.StatusCode)
	}
	if resp := env.login(t, "vendor", "v1", "wrong"); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", resp.StatusCode)
	}
	if resp := env.login(t, "superuser", "v1", "correct"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown scope: expected 404, got %d", resp.StatusCode)
	}
	if resp := env.login(t, "admin", "root", "rootpw"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("verify-only scope: expected 404, got %d", resp.StatusCode)
	}
}

func TestMeUniform401(t *testing.T) {
	env := newTestEnv(t)

	vendorToken, _, err := env.tokens.Issue("vendor-1", domain.RoleVendor)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := map[string]*http.Request{
		"no cookie":     httptest.NewRequest(http.MethodGet, "/auth/me/vendor", nil),
		"garbage token": httptest.NewRequest(http.MethodGet, "/auth/me/vendor", nil),
		"wrong scope":   httptest.NewRequest(http.MethodGet, "/auth/me/sudo", nil),
	}
	cases["garbage token"].Header.Set("Cookie", "token=garbage")
	cases["wrong scope"].Header.Set("Cookie", "sudo_token="+vendorToken)

	for name, req := range cases {
		resp, err := env.app.Test(req, -1)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, resp.StatusCode)
		}
		if body := readBody(t, resp); body != `{"loggedIn":false}` {
			t.Fatalf("%s: expected closed shape, got %s", name, body)
		}
	}
}

func TestMeDeletedAccountWithValidToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.login(t, "vendor", "v1", "correct")
	token := sessionCookie(t, resp, "token")

	delete(env.vendors.vendors, "vendor-1")

	req := httptest.NewRequest(http.MethodGet, "/auth/me/vendor", nil)
	req.Header.Set("Cookie", "token="+token)
	meResp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("me request: %v", err)
	}
	if meResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after deletion, got %d", meResp.StatusCode)
	}
	if body := readBody(t, meResp); body != `{"loggedIn":false}` {
		t.Fatalf("expected closed shape, got %s", body)
	}
}

func TestLogoutClearsCookieAndSuppressesCaching(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout/vendor", nil)
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("logout request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, `"success":true`) {
		t.Fatalf("unexpected body: %s", body)
	}
	setCookie := strings.ToLower(resp.Header.Get("Set-Cookie"))
	if !strings.Contains(setCookie, "token=") || !strings.Contains(setCookie, "01 jan 1970") {
		t.Fatalf("expected expired cookie, got %q", setCookie)
	}
	if resp.Header.Get("Cache-Control") != "no-store" || resp.Header.Get("Pragma") != "no-cache" {
		t.Fatalf("missing cache suppression headers")
	}
}

func TestUserScopeLoginUsesOwnCookie(t *testing.T) {
	env := newTestEnv(t)

	resp := env.login(t, "user", "c1", "carolpw")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	token := sessionCookie(t, resp, "user_token")

	req := httptest.NewRequest(http.MethodGet, "/auth/me/user", nil)
	req.Header.Set("Cookie", "user_token="+token)
	meResp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("me request: %v", err)
	}
	body := readBody(t, meResp)
	if meResp.StatusCode != http.StatusOK || !strings.Contains(body, `"fullName":"Carol Jones"`) {
		t.Fatalf("unexpected me response %d: %s", meResp.StatusCode, body)
	}
}
