package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/binderhq/binderd/internal/state"
)

// Scenario is one YAML-defined end-to-end run.
type Scenario struct {
	// Name uniquely identifies the scenario; the golden file shares it.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description"`

	// Steps run in order against a freshly seeded process.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scenario step: exactly one of the operation fields is set.
// Raw actions go through Do; operations that need glue (credential
// verification, payment, push) use the dedicated fields.
type Step struct {
	// Login authenticates with an email and password from the seed.
	Login *LoginStep `yaml:"login,omitempty"`

	// Logout ends the session.
	Logout bool `yaml:"logout,omitempty"`

	// Publish lists a binder for sale through the payment provider.
	Publish *PublishStep `yaml:"publish,omitempty"`

	// Purchase buys a catalog bundle through the payment provider.
	Purchase string `yaml:"purchase,omitempty"`

	// Upgrade buys a subscription plan by role.
	Upgrade string `yaml:"upgrade,omitempty"`

	// Do dispatches a raw action. The action's yaml form mirrors its
	// journal form; omit time to use the harness clock.
	Do *state.Action `yaml:"do,omitempty"`

	// Expect names the expected outcome: empty or "ok" for success, a
	// rejection code (e.g. "NOT_FOUND"), or "not_permitted" for a flow the
	// acting role may not run.
	Expect string `yaml:"expect,omitempty"`
}

// LoginStep carries scenario credentials.
type LoginStep struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// PublishStep lists a binder with a price in cents.
type PublishStep struct {
	BinderID   string `yaml:"binder_id"`
	PriceCents int64  `yaml:"price_cents"`
	ImageURL   string `yaml:"image_url,omitempty"`
}

// LoadScenario reads and parses a scenario file. Unknown YAML fields are
// rejected so a typoed key fails the scenario instead of silently doing
// nothing.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		n := 0
		if step.Login != nil {
			n++
			if step.Login.Email == "" || step.Login.Password == "" {
				return fmt.Errorf("steps[%d].login: email and password are required", i)
			}
		}
		if step.Logout {
			n++
		}
		if step.Publish != nil {
			n++
			if step.Publish.BinderID == "" {
				return fmt.Errorf("steps[%d].publish: binder_id is required", i)
			}
		}
		if step.Purchase != "" {
			n++
		}
		if step.Upgrade != "" {
			n++
		}
		if step.Do != nil {
			n++
			if step.Do.Type == "" {
				return fmt.Errorf("steps[%d].do: action is required", i)
			}
		}
		if n != 1 {
			return fmt.Errorf("steps[%d]: exactly one operation per step, got %d", i, n)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}
