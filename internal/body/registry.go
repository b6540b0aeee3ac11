package body

import (
	"fmt"
	"math"
)

// Registry owns all Info records for a scene. IDs are assigned in spawn
// order and are never reused; records are destroyed only at scenario
// teardown (by dropping the whole registry).
type Registry struct {
	infos  []Info
	byName map[string]ID
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]ID)}
}

// Spawn assigns an ID and stores the record. The ID field of the input
// is ignored.
func (r *Registry) Spawn(info Info) (ID, error) {
	if info.Mass < 0 || math.IsNaN(info.Mass) || math.IsInf(info.Mass, 0) {
		return None, fmt.Errorf("%w: %v", ErrBadMass, info.Mass)
	}
	if info.Name != "" {
		if _, dup := r.byName[info.Name]; dup {
			return None, fmt.Errorf("body: duplicate name %q", info.Name)
		}
	}
	id := ID(len(r.infos))
	info.ID = id
	r.infos = append(r.infos, info)
	if info.Name != "" {
		r.byName[info.Name] = id
	}
	return id, nil
}

func (r *Registry) Get(id ID) (Info, bool) {
	if id < 0 || int(id) >= len(r.infos) {
		return Info{}, false
	}
	return r.infos[id], true
}

func (r *Registry) ByName(name string) (ID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

func (r *Registry) Len() int { return len(r.infos) }

// IDs returns all body IDs in spawn order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, len(r.infos))
	for i := range r.infos {
		ids[i] = ID(i)
	}
	return ids
}

func (r *Registry) Clone() *Registry {
	out := NewRegistry()
	out.infos = make([]Info, len(r.infos))
	copy(out.infos, r.infos)
	for name, id := range r.byName {
		out.byName[name] = id
	}
	return out
}
