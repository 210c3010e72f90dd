package tenant

import "github.com/stokwise/stokwise/pkg/domain"

// SelectionPath is the business selection and creation page.
const SelectionPath = "/business"

// DashboardPath is the dashboard of the business with the given slug.
func DashboardPath(slug string) string {
	return "/" + slug + "/dashboard"
}

// ActionKind is the outcome of reconciling a URL slug with the state.
type ActionKind int

const (
	ActionNoOp ActionKind = iota
	ActionSetActive
	ActionRedirect
)

func (k ActionKind) String() string {
	switch k {
	case ActionSetActive:
		return "set_active"
	case ActionRedirect:
		return "redirect"
	default:
		return "noop"
	}
}

// MarshalText renders the kind by name.
func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Action tells the caller how to make the active business match the URL.
type Action struct {
	Kind     ActionKind
	Business *domain.Business // for ActionSetActive
	Path     string           // for ActionRedirect
}

// Reconcile decides how to bring the active business in line with slug.
// A slug naming an owned business always wins over the active business, so
// deep links work without a redirect loop.
func Reconcile(slug string, s State) Action {
	if s.IsLoading {
		return Action{Kind: ActionNoOp}
	}
	if s.CurrentBusiness != nil && s.CurrentBusiness.Slug == slug {
		return Action{Kind: ActionNoOp}
	}
	if b, ok := domain.FindBusinessBySlug(s.Businesses, slug); ok {
		return Action{Kind: ActionSetActive, Business: &b}
	}
	if s.CurrentBusiness != nil {
		return Action{Kind: ActionRedirect, Path: DashboardPath(s.CurrentBusiness.Slug)}
	}
	return Action{Kind: ActionRedirect, Path: SelectionPath}
}

// Apply performs a SetActive action on store and reports whether the
// business scoped data must be fetched next.
func Apply(store *Store, a Action) bool {
	if a.Kind != ActionSetActive || a.Business == nil {
		return false
	}
	store.SetCurrentBusiness(*a.Business)
	return true
}
