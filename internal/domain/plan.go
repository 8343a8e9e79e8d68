package domain

// SubscriptionPlan describes a paid tier in the upgrade flow. The plan's ID
// is the role it grants, which is what makes UpgradeSubscription a pure role
// swap on the current user.
type SubscriptionPlan struct {
	ID          UserRole `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`

	PriceCents       int64 `json:"priceCents" yaml:"price_cents"`
	PriceYearlyCents int64 `json:"priceYearlyCents" yaml:"price_yearly_cents"`

	Features []string `json:"features" yaml:"features"`

	// Payment provider price identifiers, opaque to the core.
	PriceRef       string `json:"priceRef,omitempty" yaml:"price_ref,omitempty"`
	PriceRefYearly string `json:"priceRefYearly,omitempty" yaml:"price_ref_yearly,omitempty"`
}

// Clone returns a deep copy of the plan.
func (p SubscriptionPlan) Clone() SubscriptionPlan {
	out := p
	if p.Features != nil {
		out.Features = make([]string, len(p.Features))
		copy(out.Features, p.Features)
	}
	return out
}

// ClonePlans deep-copies a plan catalog.
func ClonePlans(plans []SubscriptionPlan) []SubscriptionPlan {
	if plans == nil {
		return nil
	}
	out := make([]SubscriptionPlan, len(plans))
	for i := range plans {
		out[i] = plans[i].Clone()
	}
	return out
}

// FindPlan returns the plan granting the given role, or nil.
func FindPlan(plans []SubscriptionPlan, role UserRole) *SubscriptionPlan {
	for i := range plans {
		if plans[i].ID == role {
			return &plans[i]
		}
	}
	return nil
}
