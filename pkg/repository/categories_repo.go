package repository

import (
	"context"
	"database/sql"

	"github.com/stokwise/stokwise/pkg/domain"
)

// CategoriesRepository handles category persistence.
type CategoriesRepository struct {
	db *sql.DB
}

// NewCategoriesRepository creates a new categories repository.
func NewCategoriesRepository(db *sql.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

// Create inserts a category.
func (r *CategoriesRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (id, business_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.BusinessID, c.Name, c.CreatedAt)
	return err
}

// ListByBusiness returns the categories of a business in creation order.
func (r *CategoriesRepository) ListByBusiness(ctx context.Context, businessID string) ([]domain.Category, error) {
	query := `
		SELECT id, business_id, name, created_at
		FROM categories
		WHERE business_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// Delete removes a category. Products still referencing it yield domain.ErrCategoryInUse.
func (r *CategoriesRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if pqCode(err) == pqForeignKeyViolation {
		return domain.ErrCategoryInUse
	}
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCategoryNotFound
	}

	return nil
}
