package repository

import (
	"context"
	"database/sql"

	"github.com/stokwise/stokwise/pkg/domain"
)

// BusinessesRepository handles business persistence.
type BusinessesRepository struct {
	db *sql.DB
}

// NewBusinessesRepository creates a new businesses repository.
func NewBusinessesRepository(db *sql.DB) *BusinessesRepository {
	return &BusinessesRepository{db: db}
}

// Create inserts a business. A slug collision returns domain.ErrSlugTaken.
func (r *BusinessesRepository) Create(ctx context.Context, b *domain.Business) error {
	query := `
		INSERT INTO businesses (id, owner_id, name, slug, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, b.ID, b.OwnerID, b.Name, b.Slug, b.CreatedAt)
	if pqCode(err) == pqUniqueViolation {
		return domain.ErrSlugTaken
	}
	return err
}

// ListByOwner returns every business owned by ownerID, oldest first.
func (r *BusinessesRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Business, error) {
	query := `
		SELECT id, owner_id, name, slug, created_at
		FROM businesses
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	businesses := []domain.Business{}
	for rows.Next() {
		var b domain.Business
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Slug, &b.CreatedAt); err != nil {
			return nil, err
		}
		businesses = append(businesses, b)
	}

	return businesses, rows.Err()
}

// Delete removes a business owned by ownerID.
func (r *BusinessesRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM businesses WHERE id = $1 AND owner_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrBusinessNotFound
	}

	return nil
}
