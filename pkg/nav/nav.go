// Package nav builds the sidebar navigation tree for the active business.
package nav

import (
	"regexp"
	"strings"

	"github.com/stokwise/stokwise/pkg/domain"
)

// Icon names understood by the dashboard front end.
const (
	IconDashboard = "terminal"
	IconProducts  = "bot"
	IconStores    = "store"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Slugify lower-cases s and replaces every whitespace run with a single hyphen.
// Distinct inputs may produce the same slug.
func Slugify(s string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(s), "-")
}

// Static returns the fixed entries that precede the dynamic groups.
func Static() []domain.NavItem {
	return []domain.NavItem{
		{Title: "Dashboard", URL: "/dashboard", Icon: IconDashboard, Items: []domain.NavSubItem{}},
	}
}

// Build returns the Products and Stores groups, in that order.
// Both groups are present even when their inputs are empty.
func Build(stores []domain.Store, categories []domain.Category) []domain.NavItem {
	products := domain.NavItem{
		Title: "Products",
		URL:   "/products",
		Icon:  IconProducts,
		Items: make([]domain.NavSubItem, 0, len(categories)),
	}
	for _, c := range categories {
		products.Items = append(products.Items, domain.NavSubItem{
			Title: c.Name,
			URL:   "/products/" + Slugify(c.Name),
		})
	}

	storesNav := domain.NavItem{
		Title: "Stores",
		URL:   "/stores",
		Icon:  IconStores,
		Items: make([]domain.NavSubItem, 0, len(stores)),
	}
	for _, s := range stores {
		storesNav.Items = append(storesNav.Items, domain.NavSubItem{
			Title: s.Name,
			URL:   "/stores/" + s.ID,
		})
	}

	return []domain.NavItem{products, storesNav}
}

// Tree is the full sidebar: static entries followed by Build.
func Tree(stores []domain.Store, categories []domain.Category) []domain.NavItem {
	return append(Static(), Build(stores, categories)...)
}

// Clone deep-copies a navigation tree.
func Clone(items []domain.NavItem) []domain.NavItem {
	if items == nil {
		return nil
	}
	out := make([]domain.NavItem, len(items))
	for i, item := range items {
		out[i] = item
		if item.Items != nil {
			out[i].Items = append([]domain.NavSubItem(nil), item.Items...)
			if len(item.Items) == 0 {
				out[i].Items = []domain.NavSubItem{}
			}
		}
	}
	return out
}
