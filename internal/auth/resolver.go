package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-portal/internal/domain"
)

// Resolver turns a raw cookie token into a verified identity by re-fetching
// the canonical record and enforcing role-store binding. Every failure edge
// resolves to domain.ErrUnauthenticated; callers see no intermediate state.
type Resolver struct {
	tokens *TokenManager
	scopes *Registry
	logger *zap.Logger
}

// NewResolver builds a resolver.
func NewResolver(tokens *TokenManager, scopes *Registry, logger *zap.Logger) *Resolver {
	return &Resolver{tokens: tokens, scopes: scopes, logger: logger}
}

// Resolve validates the token, re-fetches the principal from the partition
// selected by the role claim and checks that the persisted role still
// matches. A token never outlives a role change or deletion.
func (r *Resolver) Resolve(ctx context.Context, scopeName, rawToken string) (*domain.Identity, error) {
	if rawToken == "" {
		return nil, domain.ErrUnauthenticated
	}

	scope, err := r.scopes.Get(scopeName)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := r.tokens.Verify(rawToken)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	record, err := scope.FindByID(ctx, claims.Role, claims.Subject)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) && !errors.Is(err, domain.ErrUnauthenticated) {
			r.logger.Warn("credential lookup failed during session resolution",
				zap.String("scope", scopeName), zap.Error(err))
		}
		return nil, domain.ErrUnauthenticated
	}

	// inactive principals are treated as non-existent
	if record == nil || !record.Active || record.Role != claims.Role {
		return nil, domain.ErrUnauthenticated
	}

	return &domain.Identity{Role: record.Role, Profile: record.Profile}, nil
}
