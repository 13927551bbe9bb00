package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-portal/internal/auth"
	"github.com/spec-kit/marketplace-portal/internal/domain"
	"github.com/spec-kit/marketplace-portal/internal/events"
)

// LoginLimiter bounds authentication attempts per scope and username.
type LoginLimiter interface {
	Allow(ctx context.Context, scope, username string) bool
}

// SessionService runs the generalized login pipeline for every scope and
// emits audit events for authentication outcomes.
type SessionService struct {
	scopes     *auth.Registry
	tokens     *auth.TokenManager
	limiter    LoginLimiter
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// SessionDependencies encapsulates collaborator requirements.
type SessionDependencies struct {
	Scopes     *auth.Registry
	Tokens     *auth.TokenManager
	Limiter    LoginLimiter
	Dispatcher events.Dispatcher
}

// NewSessionService builds the service.
func NewSessionService(deps SessionDependencies, logger *zap.Logger) *SessionService {
	return &SessionService{
		scopes:     deps.Scopes,
		tokens:     deps.Tokens,
		limiter:    deps.Limiter,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Login verifies credentials for the scope and issues a session token.
// Unknown and non-issuable scopes behave like unknown accounts.
func (s *SessionService) Login(ctx context.Context, scopeName, username, password string) (*domain.PrincipalRecord, string, time.Time, error) {
	scope, err := s.scopes.Get(scopeName)
	if err != nil || !scope.Issuable {
		return nil, "", time.Time{}, domain.ErrCredentialNotFound
	}

	if s.limiter != nil && !s.limiter.Allow(ctx, scopeName, username) {
		return nil, "", time.Time{}, domain.ErrLoginThrottled
	}

	record, err := scope.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, domain.ErrCredentialNotFound) {
			s.publish(ctx, events.EventLoginFailed, scopeName, "", "", username)
			return nil, "", time.Time{}, domain.ErrCredentialNotFound
		}
		return nil, "", time.Time{}, err
	}
	if !record.Active {
		s.publish(ctx, events.EventLoginFailed, scopeName, record.Role, record.ID, username)
		return nil, "", time.Time{}, domain.ErrCredentialNotFound
	}

	if !auth.VerifyPassword(record.PasswordHash, password) {
		s.publish(ctx, events.EventLoginFailed, scopeName, record.Role, record.ID, username)
		return nil, "", time.Time{}, domain.ErrBadPassword
	}

	token, expiresAt, err := s.tokens.Issue(record.ID, record.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.EventLoginSucceeded, scopeName, record.Role, record.ID, username)
	return record, token, expiresAt, nil
}

// Logout records the logout for auditing. Sessions are stateless, so there
// is nothing to invalidate server-side; the token is parsed best-effort only
// to attribute the event.
func (s *SessionService) Logout(ctx context.Context, scopeName, rawToken string) {
	role := domain.Role("")
	subjectID := ""
	if claims, err := s.tokens.Verify(rawToken); err == nil {
		role = claims.Role
		subjectID = claims.Subject
	}
	s.publish(ctx, events.EventLogout, scopeName, role, subjectID, "")
}

func (s *SessionService) publish(ctx context.Context, eventType events.EventType, scope string, role domain.Role, subjectID, username string) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Scope:     scope,
		Role:      role,
		SubjectID: subjectID,
		Username:  username,
		Timestamp: time.Now().UTC(),
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish auth event", zap.String("type", string(eventType)), zap.Error(err))
	}
}
