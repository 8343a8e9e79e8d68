package bootstrap

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/binderhq/binderd/internal/domain"
)

//go:embed seed.yaml
var seedYAML []byte

//go:embed schema.cue
var schemaCUE string

// SeedUser is a directory entry plus the plain seed credential. The
// credential is hashed by Directory and never stored in plain form.
type SeedUser struct {
	domain.User `yaml:",inline"`
	Password    string `yaml:"password"`
}

// Seed is the validated seed document.
type Seed struct {
	Users   []SeedUser                 `yaml:"users"`
	Binders map[string][]domain.Binder `yaml:"binders"`
	Bundles []domain.Bundle            `yaml:"bundles"`
	Plans   []domain.SubscriptionPlan  `yaml:"plans"`
}

// Load parses and validates the embedded seed document.
func Load() (*Seed, error) {
	return Parse(seedYAML)
}

// Parse validates a seed document against the embedded schema and decodes
// it. Split from Load so tests can feed malformed documents.
func Parse(data []byte) (*Seed, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	if err := validateSeed(doc); err != nil {
		return nil, fmt.Errorf("validate seed: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &seed, nil
}

// validateSeed unifies the document with the #Seed schema and checks the
// result is concrete.
func validateSeed(doc map[string]any) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Seed"))
	if !def.Exists() {
		return fmt.Errorf("schema has no #Seed definition")
	}

	unified := def.Unify(ctx.Encode(doc))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}

// Directory returns the seed users as directory entries with bcrypt-hashed
// credentials.
func (s *Seed) Directory() ([]domain.User, error) {
	users := make([]domain.User, len(s.Users))
	for i, su := range s.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash credential for %s: %w", su.Email, err)
		}
		u := su.User
		u.PasswordHash = string(hash)
		users[i] = u
	}
	return users, nil
}
