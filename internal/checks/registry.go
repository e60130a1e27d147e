package checks

import "fmt"

// Registry holds the static set of forensic checks. Checks register at
// startup, never at verification time, so every request sees the same suite
// and the same weight distribution.
type Registry struct {
	order  []string
	checks map[string]Check
}

func NewRegistry() *Registry {
	return &Registry{checks: make(map[string]Check)}
}

// Register adds a check. Registering the same name twice is a programming
// error and fails loudly.
func (r *Registry) Register(c Check) error {
	name := c.Name()
	if _, exists := r.checks[name]; exists {
		return fmt.Errorf("check %q already registered", name)
	}
	r.checks[name] = c
	r.order = append(r.order, name)
	return nil
}

// MustRegister panics on duplicate registration. Used during startup wiring.
func (r *Registry) MustRegister(cs ...Check) {
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

// Names returns check names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Checks returns the registered checks in registration order.
func (r *Registry) Checks() []Check {
	out := make([]Check, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.checks[name])
	}
	return out
}

// Get returns a registered check.
func (r *Registry) Get(name string) (Check, bool) {
	c, ok := r.checks[name]
	return c, ok
}

// Len returns the number of registered checks.
func (r *Registry) Len() int { return len(r.order) }
