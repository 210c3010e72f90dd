package tenant

import (
	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stokwise/stokwise/pkg/nav"
)

// Status is the lifecycle position of a store.
//
//	Uninitialized -> Loading -> Ready | Error
//
// Any fetch re-enters Loading; Error is not terminal.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "uninitialized"
	}
}

// MarshalText renders the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is the tenant context of one session.
type State struct {
	CurrentUser     *domain.User      `json:"currentUser"`
	Businesses      []domain.Business `json:"businesses"`
	CurrentBusiness *domain.Business  `json:"currentBusiness"`
	Stores          []domain.Store    `json:"stores"`
	Categories      []domain.Category `json:"categories"`
	DynamicNav      []domain.NavItem  `json:"dynamicNav"`
	IsLoading       bool              `json:"isLoading"`
	Error           string            `json:"error,omitempty"`
	Status          Status            `json:"status"`

	sessionError bool
}

func initialState() State {
	return State{
		Businesses: []domain.Business{},
		Stores:     []domain.Store{},
		Categories: []domain.Category{},
		DynamicNav: nav.Static(),
		IsLoading:  true,
		Status:     StatusUninitialized,
	}
}

// ShowPlaceholder reports whether consumers should render a loading
// placeholder instead of tenant data.
func (s State) ShowPlaceholder() bool {
	return s.IsLoading || s.CurrentUser == nil
}

// SessionError reports whether the last global fetch found no
// authenticated user. The session is over and must not be retried.
func (s State) SessionError() bool {
	return s.sessionError
}

// clone returns a deep copy so callers never share slices with the store.
func (s State) clone() State {
	out := s
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		out.CurrentUser = &u
	}
	if s.CurrentBusiness != nil {
		b := *s.CurrentBusiness
		out.CurrentBusiness = &b
	}
	out.Businesses = append([]domain.Business{}, s.Businesses...)
	out.Categories = append([]domain.Category{}, s.Categories...)
	out.Stores = make([]domain.Store, len(s.Stores))
	for i, st := range s.Stores {
		if st.Location != nil {
			loc := *st.Location
			st.Location = &loc
		}
		out.Stores[i] = st
	}
	out.DynamicNav = nav.Clone(s.DynamicNav)
	return out
}
