package status

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry holds effect templates keyed by ID.
type Registry struct {
	defs map[string]*Effect
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Effect)}
}

// Register adds e to the registry, overwriting any existing entry with the same ID.
//
// Precondition: e must not be nil and e.ID must not be empty.
func (r *Registry) Register(e *Effect) {
	r.defs[e.ID] = e
}

// Get returns the template for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Effect, bool) {
	e, ok := r.defs[id]
	return e, ok
}

// Len returns the number of registered templates.
func (r *Registry) Len() int { return len(r.defs) }

// All returns the registered templates sorted by ID.
func (r *Registry) All() []*Effect {
	out := make([]*Effect, 0, len(r.defs))
	for _, e := range r.defs {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Validate checks the template invariants.
//
// Postcondition: nil return guarantees a non-empty ID and non-negative per-turn amounts.
func (e *Effect) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("status.Effect: id must not be empty")
	}
	if e.DamagePerTurn < 0 {
		return fmt.Errorf("status.Effect %q: damage_per_turn must be >= 0, got %d", e.ID, e.DamagePerTurn)
	}
	if e.HealPerTurn < 0 {
		return fmt.Errorf("status.Effect %q: heal_per_turn must be >= 0, got %d", e.ID, e.HealPerTurn)
	}
	return nil
}

// LoadDirectory reads every *.yaml file in dir, parses each as an Effect,
// and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading effect dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, ent.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var e Effect
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		if _, dup := reg.Get(e.ID); dup {
			return nil, fmt.Errorf("duplicate effect id %q in %q", e.ID, path)
		}
		reg.Register(&e)
	}
	return reg, nil
}
