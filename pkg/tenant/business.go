package tenant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stokwise/stokwise/pkg/gateway"
)

const (
	maxBusinessNameLength = 100
	maxSlugLength         = 63
	maxStoreNameLength    = 100
)

var (
	slugPattern   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugStrip     = regexp.MustCompile(`[^a-z0-9_\s-]+`)
	slugSeparator = regexp.MustCompile(`[\s_-]+`)
)

// Business and store validation errors.
var (
	ErrBusinessNameRequired = errors.New("business name is required")
	ErrBusinessNameTooLong  = fmt.Errorf("business name must be at most %d characters", maxBusinessNameLength)
	ErrStoreNameRequired    = errors.New("store name is required")
	ErrStoreNameTooLong     = fmt.Errorf("store name must be at most %d characters", maxStoreNameLength)
)

// ValidateSlug checks that slug is a lower-case, hyphen separated URL segment.
func ValidateSlug(slug string) error {
	if slug == "" || len(slug) > maxSlugLength || !slugPattern.MatchString(slug) {
		return domain.ErrInvalidSlug
	}
	return nil
}

// SuggestSlug derives a URL slug from a business name: lower-cased,
// punctuation dropped, separator runs collapsed to one hyphen.
// The result may be empty and is not checked for uniqueness.
func SuggestSlug(name string) string {
	slug := strings.TrimSpace(strings.ToLower(name))
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugSeparator.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}

// ValidateBusiness trims and checks a new business.
func ValidateBusiness(name, slug string) (string, string, error) {
	name = strings.TrimSpace(name)
	slug = strings.TrimSpace(slug)
	if name == "" {
		return "", "", ErrBusinessNameRequired
	}
	if utf8.RuneCountInString(name) > maxBusinessNameLength {
		return "", "", ErrBusinessNameTooLong
	}
	if err := ValidateSlug(slug); err != nil {
		return "", "", err
	}
	return name, slug, nil
}

// CreateBusiness creates a business owned by ownerID and reloads the
// session's global data. A taken slug returns domain.ErrSlugTaken.
func CreateBusiness(ctx context.Context, gw gateway.Gateway, store *Store, ownerID, name, slug string) (*domain.Business, error) {
	name, slug, err := ValidateBusiness(name, slug)
	if err != nil {
		return nil, err
	}

	b, err := gw.CreateBusiness(ctx, ownerID, name, slug)
	if err != nil {
		return nil, fmt.Errorf("create business: %w", err)
	}

	store.RefetchData(ctx)
	return b, nil
}

// DeleteBusiness deletes a business owned by ownerID and reloads the
// session's global data. Deleting the active business moves the session to
// the next owned business.
func DeleteBusiness(ctx context.Context, gw gateway.Gateway, store *Store, ownerID, businessID string) error {
	if err := gw.DeleteBusiness(ctx, businessID, ownerID); err != nil {
		return fmt.Errorf("delete business: %w", err)
	}

	store.RefetchData(ctx)
	return nil
}

// CreateStore adds a store (branch) to businessID and refreshes the stores
// held by the session.
func CreateStore(ctx context.Context, gw gateway.Gateway, store *Store, businessID, name string, location *string) (*domain.Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrStoreNameRequired
	}
	if utf8.RuneCountInString(name) > maxStoreNameLength {
		return nil, ErrStoreNameTooLong
	}
	if location != nil {
		loc := strings.TrimSpace(*location)
		if loc == "" {
			location = nil
		} else {
			location = &loc
		}
	}

	s, err := gw.CreateStore(ctx, businessID, name, location)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	store.FetchGlobalStores(ctx, businessID)
	return s, nil
}
