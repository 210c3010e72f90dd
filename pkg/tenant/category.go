package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stokwise/stokwise/pkg/gateway"
)

// Category flow errors. Both are rejected before any gateway call.
var (
	ErrEmptyCategoryName       = errors.New("category name cannot be empty")
	ErrCategoryBusinessMissing = errors.New("business id is required for category creation")
	ErrCategoryIDMissing       = errors.New("category id cannot be empty")
)

// ValidateCategoryName returns the trimmed name or ErrEmptyCategoryName.
func ValidateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyCategoryName
	}
	return name, nil
}

// AddCategory creates a category for businessID and refreshes the
// categories held by store.
func AddCategory(ctx context.Context, gw gateway.Gateway, store *Store, businessID, name string) (*domain.Category, error) {
	name, err := ValidateCategoryName(name)
	if err != nil {
		return nil, err
	}
	if businessID == "" {
		return nil, ErrCategoryBusinessMissing
	}

	c, err := gw.CreateCategory(ctx, businessID, name)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	store.FetchGlobalStoreCategories(ctx, businessID)
	return c, nil
}

// DeleteCategory removes a category and refreshes the categories of
// businessID. A category with linked products returns domain.ErrCategoryInUse.
func DeleteCategory(ctx context.Context, gw gateway.Gateway, store *Store, businessID, categoryID string) error {
	if strings.TrimSpace(categoryID) == "" {
		return ErrCategoryIDMissing
	}

	if err := gw.DeleteCategory(ctx, categoryID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if businessID != "" {
		store.FetchGlobalStoreCategories(ctx, businessID)
	}
	return nil
}
