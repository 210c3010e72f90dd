package domain

import "time"

// Business is the tenant root. Slug is a globally unique URL segment.
type Business struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a branch or location belonging to a business.
//
// TotalItems is derived for display and stays 0 until stock aggregation exists.
type Store struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Name       string    `json:"name"`
	Location   *string   `json:"location"`
	TotalItems int       `json:"totalItems"`
	CreatedAt  time.Time `json:"created_at"`
}

// Category groups products within a business.
type Category struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// FindBusinessBySlug returns the business with the given slug, if any.
func FindBusinessBySlug(businesses []Business, slug string) (Business, bool) {
	for _, b := range businesses {
		if b.Slug == slug {
			return b, true
		}
	}
	return Business{}, false
}

// FindBusinessByID returns the business with the given id, if any.
func FindBusinessByID(businesses []Business, id string) (Business, bool) {
	for _, b := range businesses {
		if b.ID == id {
			return b, true
		}
	}
	return Business{}, false
}
