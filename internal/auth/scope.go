package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-portal/internal/domain"
	"github.com/spec-kit/marketplace-portal/internal/repository"
)

// Scope describes one authentication surface: its cookie, session lifetime,
// whether it issues tokens, and how it reaches the credential stores. The
// four login/me/logout flows are driven entirely by this table.
type Scope struct {
	Name       string
	CookieName string
	TTL        time.Duration
	Issuable   bool

	byUsername func(ctx context.Context, username string) (*domain.PrincipalRecord, error)
	byID       func(ctx context.Context, role domain.Role, id string) (*domain.PrincipalRecord, error)
}

// FindByUsername looks up login credentials within the scope's partition.
func (s *Scope) FindByUsername(ctx context.Context, username string) (*domain.PrincipalRecord, error) {
	if s.byUsername == nil {
		return nil, domain.ErrCredentialNotFound
	}
	return s.byUsername(ctx, username)
}

// FindByID re-fetches the canonical record for a verified token claim. The
// role claim selects the store partition; it is never trusted beyond that.
func (s *Scope) FindByID(ctx context.Context, role domain.Role, id string) (*domain.PrincipalRecord, error) {
	return s.byID(ctx, role, id)
}

// Registry maps scope names to their definitions.
type Registry struct {
	scopes map[string]*Scope
	ttl    time.Duration
}

// NewRegistry wires the scope table against the credential repositories.
// All scopes share one session TTL.
func NewRegistry(admins repository.AdminRepository, vendors repository.VendorRepository, customers repository.CustomerRepository, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}

	vendorByID := func(ctx context.Context, id string) (*domain.PrincipalRecord, error) {
		vendor, err := vendors.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return vendor.Record(), nil
	}
	customerByID := func(ctx context.Context, id string) (*domain.PrincipalRecord, error) {
		customer, err := customers.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return customer.Record(), nil
	}
	adminByID := func(ctx context.Context, id string) (*domain.PrincipalRecord, error) {
		admin, err := admins.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return admin.Record(), nil
	}

	r := &Registry{scopes: make(map[string]*Scope), ttl: ttl}

	r.add(&Scope{
		Name:       "sudo",
		CookieName: CookieSudo,
		TTL:        ttl,
		Issuable:   true,
		byUsername: func(ctx context.Context, username string) (*domain.PrincipalRecord, error) {
			admin, err := admins.GetByUsername(ctx, username)
			if err != nil {
				return nil, err
			}
			// the admins table also holds non-sudo rows
			if admin.Role != domain.RoleSudo {
				return nil, domain.ErrCredentialNotFound
			}
			return admin.Record(), nil
		},
		byID: func(ctx context.Context, role domain.Role, id string) (*domain.PrincipalRecord, error) {
			if role != domain.RoleSudo {
				return nil, domain.ErrUnauthenticated
			}
			return adminByID(ctx, id)
		},
	})

	r.add(&Scope{
		Name:       "admin",
		CookieName: CookieAdmin,
		TTL:        ttl,
		Issuable:   false,
		byID: func(ctx context.Context, role domain.Role, id string) (*domain.PrincipalRecord, error) {
			return adminByID(ctx, id)
		},
	})

	r.add(&Scope{
		Name:       "vendor",
		CookieName: CookieSession,
		TTL:        ttl,
		Issuable:   true,
		byUsername: func(ctx context.Context, username string) (*domain.PrincipalRecord, error) {
			vendor, err := vendors.GetByUsername(ctx, username)
			if err != nil {
				return nil, err
			}
			return vendor.Record(), nil
		},
		byID: func(ctx context.Context, role domain.Role, id string) (*domain.PrincipalRecord, error) {
			if role != domain.RoleVendor {
				return nil, domain.ErrUnauthenticated
			}
			return vendorByID(ctx, id)
		},
	})

	r.add(&Scope{
		Name:       "customer",
		CookieName: CookieSession,
		TTL:        ttl,
		Issuable:   true,
		byUsername: func(ctx context.Context, username string) (*domain.PrincipalRecord, error) {
			customer, err := customers.GetByUsername(ctx, username)
			if err != nil {
				return nil, err
			}
			return customer.Record(), nil
		},
		byID: func(ctx context.Context, role domain.Role, id string) (*domain.PrincipalRecord, error) {
			if role != domain.RoleCustomer {
				return nil, domain.ErrUnauthenticated
			}
			return customerByID(ctx, id)
		},
	})

	r.add(&Scope{
		Name:       "user",
		CookieName: CookieUser,
		TTL:        ttl,
		Issuable:   true,
		byUsername: func(ctx context.Context, username string) (*domain.PrincipalRecord, error) {
			vendor, err := vendors.GetByUsername(ctx, username)
			if err == nil {
				return vendor.Record(), nil
			}
			if !errors.Is(err, pgx.ErrNoRows) && !errors.Is(err, domain.ErrCredentialNotFound) {
				return nil, err
			}
			customer, err := customers.GetByUsername(ctx, username)
			if err != nil {
				return nil, err
			}
			return customer.Record(), nil
		},
		byID: func(ctx context.Context, role domain.Role, id string) (*domain.PrincipalRecord, error) {
			switch role {
			case domain.RoleVendor:
				return vendorByID(ctx, id)
			case domain.RoleCustomer:
				return customerByID(ctx, id)
			default:
				return nil, domain.ErrUnauthenticated
			}
		},
	})

	return r
}

func (r *Registry) add(scope *Scope) {
	r.scopes[scope.Name] = scope
}

// Get returns the scope definition for a route parameter.
func (r *Registry) Get(name string) (*Scope, error) {
	scope, ok := r.scopes[name]
	if !ok {
		return nil, domain.ErrUnknownScope
	}
	return scope, nil
}
