package material

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ohkbilal/certa/internal/regime"
)

// ErrUnknownMaterial is returned when a registry id does not exist.
var ErrUnknownMaterial = errors.New("unknown material")

// #region registry
// Registry is a read-only ordered set of materials. Lookups return copies,
// so a Registry can be shared across goroutines without locking.
type Registry struct {
	entries []Material
}

// NewRegistry builds a registry from entries. Resolution order follows the
// slice order, so more specific entries must precede generic ones.
func NewRegistry(entries []Material) (*Registry, error) {
	seen := map[string]bool{}
	out := make([]Material, 0, len(entries))
	for _, m := range entries {
		key := strings.ToLower(m.ID)
		if key == "" {
			return nil, fmt.Errorf("new registry: empty material id")
		}
		if seen[key] {
			return nil, fmt.Errorf("new registry: duplicate material id %s", m.ID)
		}
		seen[key] = true
		out = append(out, m.clone())
	}
	return &Registry{entries: out}, nil
}

// All returns every entry in resolution order.
func (r *Registry) All() []Material {
	out := make([]Material, len(r.entries))
	for i, m := range r.entries {
		out[i] = m.clone()
	}
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int { return len(r.entries) }

// Lookup finds an entry by canonical id, case-insensitively.
func (r *Registry) Lookup(id string) (Material, bool) {
	for _, m := range r.entries {
		if strings.EqualFold(m.ID, strings.TrimSpace(id)) {
			return m.clone(), true
		}
	}
	return Material{}, false
}

// Resolve maps a free-form material identifier onto a registry entry.
func (r *Registry) Resolve(materialID string) (Material, bool) {
	id := normalize(materialID)
	if id == "" {
		return Material{}, false
	}
	for _, m := range r.entries {
		if strings.EqualFold(m.ID, id) {
			return m.clone(), true
		}
		for _, e := range m.Exact {
			if id == e {
				return m.clone(), true
			}
		}
		for _, f := range m.Fragments {
			if strings.Contains(id, f) {
				return m.clone(), true
			}
		}
	}
	return Material{}, false
}

// ByType returns entries of type t.
func (r *Registry) ByType(t Type) []Material {
	return r.filter(func(m Material) bool { return m.Type == t })
}

// ByStatus returns entries with lifecycle status s.
func (r *Registry) ByStatus(s RegistryStatus) []Material {
	return r.filter(func(m Material) bool { return m.Status == s })
}

// RegimeBehavior returns the documented behavior of a material in a regime,
// or UNKNOWN when the material or regime is not documented.
func (r *Registry) RegimeBehavior(id string, rg regime.Regime) Status {
	m, ok := r.Lookup(id)
	if !ok {
		return Unknown
	}
	if s, ok := m.Behavior[rg]; ok {
		return s
	}
	return Unknown
}

// WithStatus returns a new registry in which id carries status s. The
// receiver is not modified.
func (r *Registry) WithStatus(id string, s RegistryStatus) (*Registry, error) {
	entries := r.All()
	for i := range entries {
		if strings.EqualFold(entries[i].ID, id) {
			entries[i].Status = s
			return &Registry{entries: entries}, nil
		}
	}
	return nil, fmt.Errorf("with status %s: %w", id, ErrUnknownMaterial)
}

func (r *Registry) filter(keep func(Material) bool) []Material {
	var out []Material
	for _, m := range r.entries {
		if keep(m) {
			out = append(out, m.clone())
		}
	}
	return out
}

// #endregion registry

// #region helpers
func normalize(materialID string) string {
	return strings.ToLower(strings.TrimSpace(materialID))
}

func (m Material) clone() Material {
	c := m
	c.Exact = append([]string(nil), m.Exact...)
	c.Fragments = append([]string(nil), m.Fragments...)
	if m.Limits != nil {
		l := *m.Limits
		c.Limits = &l
	}
	if m.Behavior != nil {
		c.Behavior = make(map[regime.Regime]Status, len(m.Behavior))
		for k, v := range m.Behavior {
			c.Behavior[k] = v
		}
	}
	if m.RegimeMaxC != nil {
		c.RegimeMaxC = make(map[regime.Regime]float64, len(m.RegimeMaxC))
		for k, v := range m.RegimeMaxC {
			c.RegimeMaxC[k] = v
		}
	}
	c.FailureModes = append([]FailureMode(nil), m.FailureModes...)
	c.References = append([]string(nil), m.References...)
	return c
}

// IsDocumented reports whether an entry carries regime behavior, failure
// modes, references, and temperature limits.
func (m Material) IsDocumented() bool {
	return len(m.Behavior) > 0 && len(m.FailureModes) > 0 && len(m.References) > 0 && m.Limits != nil
}

// #endregion helpers
