package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/marketplace-portal/internal/auth"
	"github.com/spec-kit/marketplace-portal/internal/domain"
	"github.com/spec-kit/marketplace-portal/internal/events"
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

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string, string) bool { return false }

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func newTestService(t *testing.T, limiter LoginLimiter) (*SessionService, events.Dispatcher, *stubVendorRepo) {
	t.Helper()

	vendors := &stubVendorRepo{vendors: map[string]*domain.Vendor{
		"vendor-1": {ID: "vendor-1", Username: "v1", VendorName: "Acme Supplies", PasswordHash: mustHash(t, "correct"), Active: true},
		"vendor-2": {ID: "vendor-2", Username: "v2", VendorName: "Dormant Co", PasswordHash: mustHash(t, "correct"), Active: false},
	}}
	admins := &stubAdminRepo{admins: map[string]*domain.Admin{
		"admin-1": {ID: "admin-1", Username: "root", Role: domain.RoleSudo, PasswordHash: mustHash(t, "rootpw"), Active: true},
	}}
	customers := &stubCustomerRepo{customers: map[string]*domain.Customer{
		"customer-1": {ID: "customer-1", Username: "c1", FullName: "Carol Jones", PasswordHash: mustHash(t, "carolpw"), Active: true},
	}}

	registry := auth.NewRegistry(admins, vendors, customers, 168*time.Hour)
	tokens := auth.NewTokenManager("secret", 168*time.Hour)
	dispatcher := events.NewInMemoryDispatcher()

	svc := NewSessionService(SessionDependencies{
		Scopes:     registry,
		Tokens:     tokens,
		Limiter:    limiter,
		Dispatcher: dispatcher,
	}, zap.NewNop())
	return svc, dispatcher, vendors
}

func captureEvents(dispatcher events.Dispatcher, types ...events.EventType) *[]events.Event {
	captured := &[]events.Event{}
	for _, eventType := range types {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			*captured = append(*captured, event)
			return nil
		})
	}
	return captured
}

func TestSessionService_LoginSuccess(t *testing.T) {
	svc, dispatcher, _ := newTestService(t, nil)
	captured := captureEvents(dispatcher, events.EventLoginSucceeded)

	record, token, expiresAt, err := svc.Login(context.Background(), "vendor", "v1", "correct")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if record.ID != "vendor-1" || record.Role != domain.RoleVendor {
		t.Fatalf("unexpected record: %+v", record)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if until := time.Until(expiresAt); until < 167*time.Hour {
		t.Fatalf("expected 7 day expiry, got %v", until)
	}
	if len(*captured) != 1 || (*captured)[0].SubjectID != "vendor-1" {
		t.Fatalf("expected login_succeeded event, got %+v", *captured)
	}
}

func TestSessionService_LoginUnknownAccount(t *testing.T) {
	svc, dispatcher, _ := newTestService(t, nil)
	captured := captureEvents(dispatcher, events.EventLoginFailed)

	if _, _, _, err := svc.Login(context.Background(), "vendor", "ghost", "pw"); err != domain.ErrCredentialNotFound {
		t.Fatalf("expected ErrCredentialNotFound, got %v", err)
	}
	if len(*captured) != 1 || (*captured)[0].Username != "ghost" {
		t.Fatalf("expected login_failed event, got %+v", *captured)
	}
}

func TestSessionService_LoginBadPassword(t *testing.T) {
	svc, dispatcher, _ := newTestService(t, nil)
	captured := captureEvents(dispatcher, events.EventLoginFailed)

	if _, _, _, err := svc.Login(context.Background(), "vendor", "v1", "wrong"); err != domain.ErrBadPassword {
		t.Fatalf("expected ErrBadPassword, got %v", err)
	}
	if len(*captured) != 1 || (*captured)[0].SubjectID != "vendor-1" {
		t.Fatalf("expected login_failed event, got %+v", *captured)
	}
}

func TestSessionService_InactiveAccountLooksAbsent(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	if _, _, _, err := svc.Login(context.Background(), "vendor", "v2", "correct"); err != domain.ErrCredentialNotFound {
		t.Fatalf("expected ErrCredentialNotFound for inactive account, got %v", err)
	}
}

func TestSessionService_UnknownOrVerifyOnlyScope(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	if _, _, _, err := svc.Login(context.Background(), "superuser", "v1", "correct"); err != domain.ErrCredentialNotFound {
		t.Fatalf("unknown scope: expected ErrCredentialNotFound, got %v", err)
	}
	// the admin scope verifies sessions but never issues them
	if _, _, _, err := svc.Login(context.Background(), "admin", "root", "rootpw"); err != domain.ErrCredentialNotFound {
		t.Fatalf("verify-only scope: expected ErrCredentialNotFound, got %v", err)
	}
}

func TestSessionService_UserScopeSpansStores(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	record, _, _, err := svc.Login(context.Background(), "user", "v1", "correct")
	if err != nil || record.Role != domain.RoleVendor {
		t.Fatalf("vendor via user scope: record=%+v err=%v", record, err)
	}
	record, _, _, err = svc.Login(context.Background(), "user", "c1", "carolpw")
	if err != nil || record.Role != domain.RoleCustomer {
		t.Fatalf("customer via user scope: record=%+v err=%v", record, err)
	}
}

func TestSessionService_Throttled(t *testing.T) {
	svc, _, _ := newTestService(t, denyLimiter{})

	if _, _, _, err := svc.Login(context.Background(), "vendor", "v1", "correct"); err != domain.ErrLoginThrottled {
		t.Fatalf("expected ErrLoginThrottled, got %v", err)
	}
}

func TestSessionService_LogoutPublishesEvent(t *testing.T) {
	svc, dispatcher, _ := newTestService(t, nil)
	captured := captureEvents(dispatcher, events.EventLogout)

	_, token, _, err := svc.Login(context.Background(), "vendor", "v1", "correct")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	svc.Logout(context.Background(), "vendor", token)
	if len(*captured) != 1 || (*captured)[0].SubjectID != "vendor-1" {
		t.Fatalf("expected logout event, got %+v", *captured)
	}

	// unverifiable tokens still audit the attempt, unattributed
	svc.Logout(context.Background(), "vendor", "garbage")
	if len(*captured) != 2 || (*captured)[1].SubjectID != "" {
		t.Fatalf("expected unattributed logout event, got %+v", *captured)
	}
}
