package repository

import (
	"context"
	"database/sql"

	"github.com/stokwise/stokwise/pkg/domain"
)

// StoresRepository handles store (branch) persistence.
type StoresRepository struct {
	db *sql.DB
}

// NewStoresRepository creates a new stores repository.
func NewStoresRepository(db *sql.DB) *StoresRepository {
	return &StoresRepository{db: db}
}

// Create inserts a store.
func (r *StoresRepository) Create(ctx context.Context, s *domain.Store) error {
	query := `
		INSERT INTO stores (id, business_id, name, location, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.BusinessID, s.Name, s.Location, s.CreatedAt)
	return err
}

// ListByBusiness returns the stores of a business in creation order.
// TotalItems is left at 0.
func (r *StoresRepository) ListByBusiness(ctx context.Context, businessID string) ([]domain.Store, error) {
	query := `
		SELECT id, business_id, name, location, created_at
		FROM stores
		WHERE business_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := []domain.Store{}
	for rows.Next() {
		var s domain.Store
		if err := rows.Scan(&s.ID, &s.BusinessID, &s.Name, &s.Location, &s.CreatedAt); err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}

	return stores, rows.Err()
}
