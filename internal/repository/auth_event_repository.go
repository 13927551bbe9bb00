package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuthEvent is an audit row describing one authentication outcome.
type AuthEvent struct {
	ID        string
	EventType string
	Scope     string
	Role      string
	SubjectID *string
	Username  string
	CreatedAt time.Time
}

// AuthEventRepository persists the authentication audit trail.
type AuthEventRepository interface {
	Insert(ctx context.Context, event *AuthEvent) error
}

type authEventRepository struct {
	pool *pgxpool.Pool
}

// NewAuthEventRepository returns a Postgres-backed implementation.
func NewAuthEventRepository(pool *pgxpool.Pool) AuthEventRepository {
	return &authEventRepository{pool: pool}
}

func (r *authEventRepository) Insert(ctx context.Context, event *AuthEvent) error {
	const query = `
        INSERT INTO auth_events (id, event_type, scope, role, subject_id, username)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		event.ID,
		event.EventType,
		event.Scope,
		event.Role,
		event.SubjectID,
		event.Username,
	).Scan(&event.CreatedAt)
}
