package domain

// NavSubItem is a leaf link in the sidebar.
type NavSubItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// NavItem is a top-level sidebar entry.
type NavItem struct {
	Title    string       `json:"title"`
	URL      string       `json:"url"`
	Icon     string       `json:"icon"`
	IsActive bool         `json:"isActive,omitempty"`
	Items    []NavSubItem `json:"items"`
}
