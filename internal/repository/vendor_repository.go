package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-portal/internal/domain"
)

// VendorRepository defines persistence access for vendors.
type VendorRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.Vendor, error)
	GetByID(ctx context.Context, id string) (*domain.Vendor, error)
}

type vendorRepository struct {
	pool *pgxpool.Pool
}

// NewVendorRepository returns a Postgres-backed implementation.
func NewVendorRepository(pool *pgxpool.Pool) VendorRepository {
	return &vendorRepository{pool: pool}
}

func (r *vendorRepository) GetByUsername(ctx context.Context, username string) (*domain.Vendor, error) {
	const query = `
        SELECT id, username, vendor_name, email, phone, password_hash, active, created_at, updated_at
        FROM vendors WHERE username=$1`

	return r.scanOne(ctx, query, username)
}

func (r *vendorRepository) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	const query = `
        SELECT id, username, vendor_name, email, phone, password_hash, active, created_at, updated_at
        FROM vendors WHERE id=$1`

	return r.scanOne(ctx, query, id)
}

func (r *vendorRepository) scanOne(ctx context.Context, query string, arg any) (*domain.Vendor, error) {
	var vendor domain.Vendor
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&vendor.ID,
		&vendor.Username,
		&vendor.VendorName,
		&vendor.Email,
		&vendor.Phone,
		&vendor.PasswordHash,
		&vendor.Active,
		&vendor.CreatedAt,
		&vendor.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &vendor, nil
}
