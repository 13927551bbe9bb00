package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-portal/internal/domain"
)

// CustomerRepository defines persistence access for customers.
type CustomerRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a Postgres-backed implementation.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) GetByUsername(ctx context.Context, username string) (*domain.Customer, error) {
	const query = `
        SELECT id, username, full_name, email, phone, password_hash, active, created_at, updated_at
        FROM customers WHERE username=$1`

	return r.scanOne(ctx, query, username)
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const query = `
        SELECT id, username, full_name, email, phone, password_hash, active, created_at, updated_at
        FROM customers WHERE id=$1`

	return r.scanOne(ctx, query, id)
}

func (r *customerRepository) scanOne(ctx context.Context, query string, arg any) (*domain.Customer, error) {
	var customer domain.Customer
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&customer.ID,
		&customer.Username,
		&customer.FullName,
		&customer.Email,
		&customer.Phone,
		&customer.PasswordHash,
		&customer.Active,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}
