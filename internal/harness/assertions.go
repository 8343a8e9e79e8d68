package harness

import (
	"fmt"

	"github.com/binderhq/binderd/internal/domain"
	"github.com/binderhq/binderd/internal/state"
)

// Assertion is one check against the final state.
type Assertion struct {
	// Type selects the check:
	//   authenticated  - Value matches the authenticated flag ("true"/"false")
	//   view           - Value matches the current view
	//   role           - Value matches the effective role
	//   binder_count   - Count matches the visible binder count
	//   bundle_count   - Count matches the catalog size
	//   user_count     - Count matches the directory size
	//   has_binder     - a binder with ID exists (Value "false" negates)
	//   has_bundle     - a bundle with ID exists (Value "false" negates)
	//   purchased      - ID appears in purchased bundles
	//   selected       - BinderID/PageID match the cursors
	//   simulating     - Value matches the simulated role ("" for none)
	Type string `yaml:"type"`

	Value    string `yaml:"value,omitempty"`
	Count    int    `yaml:"count,omitempty"`
	ID       string `yaml:"id,omitempty"`
	BinderID string `yaml:"binder_id,omitempty"`
	PageID   string `yaml:"page_id,omitempty"`
}

// Assertion type constants.
const (
	AssertAuthenticated = "authenticated"
	AssertView          = "view"
	AssertRole          = "role"
	AssertBinderCount   = "binder_count"
	AssertBundleCount   = "bundle_count"
	AssertUserCount     = "user_count"
	AssertHasBinder     = "has_binder"
	AssertHasBundle     = "has_bundle"
	AssertPurchased     = "purchased"
	AssertSelected      = "selected"
	AssertSimulating    = "simulating"
)

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertAuthenticated, AssertView, AssertRole, AssertSimulating:
		// Value carries the expectation; empty is valid for simulating.
	case AssertBinderCount, AssertBundleCount, AssertUserCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertHasBinder, AssertHasBundle, AssertPurchased:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for %s", index, a.Type)
		}
	case AssertSelected:
		if a.BinderID == "" && a.PageID == "" {
			return fmt.Errorf("assertions[%d]: binder_id or page_id is required for selected", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// EvaluateAssertions checks every assertion against the final state and
// returns one message per failure.
func EvaluateAssertions(s *state.AppState, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if msg := evaluateAssertion(s, &a); msg != "" {
			failures = append(failures, fmt.Sprintf("assertions[%d] (%s): %s", i, a.Type, msg))
		}
	}
	return failures
}

func evaluateAssertion(s *state.AppState, a *Assertion) string {
	switch a.Type {
	case AssertAuthenticated:
		want := a.Value == "true"
		if s.Authenticated != want {
			return fmt.Sprintf("authenticated = %v, want %v", s.Authenticated, want)
		}
	case AssertView:
		if string(s.CurrentView) != a.Value {
			return fmt.Sprintf("view = %q, want %q", s.CurrentView, a.Value)
		}
	case AssertRole:
		if string(s.EffectiveRole()) != a.Value {
			return fmt.Sprintf("effective role = %q, want %q", s.EffectiveRole(), a.Value)
		}
	case AssertBinderCount:
		if len(s.Binders) != a.Count {
			return fmt.Sprintf("binder count = %d, want %d", len(s.Binders), a.Count)
		}
	case AssertBundleCount:
		if len(s.Bundles) != a.Count {
			return fmt.Sprintf("bundle count = %d, want %d", len(s.Bundles), a.Count)
		}
	case AssertUserCount:
		if len(s.Users) != a.Count {
			return fmt.Sprintf("user count = %d, want %d", len(s.Users), a.Count)
		}
	case AssertHasBinder:
		found := s.FindBinder(a.ID) != nil
		want := a.Value != "false"
		if found != want {
			return fmt.Sprintf("binder %s present = %v, want %v", a.ID, found, want)
		}
	case AssertHasBundle:
		found := domain.FindBundle(s.Bundles, a.ID) != nil
		want := a.Value != "false"
		if found != want {
			return fmt.Sprintf("bundle %s present = %v, want %v", a.ID, found, want)
		}
	case AssertPurchased:
		found := false
		for _, id := range s.PurchasedBundles {
			if id == a.ID {
				found = true
				break
			}
		}
		if !found {
			return fmt.Sprintf("bundle %s not in purchased set %v", a.ID, s.PurchasedBundles)
		}
	case AssertSelected:
		if a.BinderID != "" && s.SelectedBinderID != a.BinderID {
			return fmt.Sprintf("selected binder = %q, want %q", s.SelectedBinderID, a.BinderID)
		}
		if a.PageID != "" && s.SelectedPageID != a.PageID {
			return fmt.Sprintf("selected page = %q, want %q", s.SelectedPageID, a.PageID)
		}
	case AssertSimulating:
		if string(s.SimulatedRole) != a.Value {
			return fmt.Sprintf("simulated role = %q, want %q", s.SimulatedRole, a.Value)
		}
	}
	return ""
}
