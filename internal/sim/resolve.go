package sim

import (
	"fmt"

	"github.com/maren-k/orbitlab/internal/body"
	"github.com/maren-k/orbitlab/internal/motive"
	"github.com/maren-k/orbitlab/internal/vec"
)

// kin is a resolved (position, velocity) pair at one instant.
type kin struct {
	pos vec.Vec3
	vel vec.Vec3
}

// resolver memoizes hierarchical kinematics at a single instant.
// Fixed and Keplerian chains resolve parents before children by
// recursion; Newtonian bodies take this tick's integration result, or
// the live cache when none is pending. Cyclic parent references are a
// configuration error.
type resolver struct {
	u        *Universe
	t        float64
	memo     map[body.ID]kin
	visiting map[body.ID]bool
	pending  map[body.ID]kin
}

func (u *Universe) newResolver(t float64, pending map[body.ID]kin) *resolver {
	return &resolver{
		u:        u,
		t:        t,
		memo:     make(map[body.ID]kin),
		visiting: make(map[body.ID]bool),
		pending:  pending,
	}
}

func (r *resolver) kinOf(id body.ID) (kin, error) {
	if k, ok := r.memo[id]; ok {
		return k, nil
	}
	if r.visiting[id] {
		return kin{}, fmt.Errorf("%w: body %d", ErrDependencyCycle, id)
	}
	r.visiting[id] = true
	defer delete(r.visiting, id)

	m, ok := r.u.motives[id]
	if !ok {
		return kin{}, body.ErrUnknownBody
	}
	seg, elapsed, err := m.ActiveAt(r.t)
	if err != nil {
		return kin{}, err
	}

	k, err := r.modelKin(id, seg.Model, elapsed)
	if err != nil {
		return kin{}, err
	}
	r.memo[id] = k
	return k, nil
}

// modelKin resolves a specific model at this resolver's instant. It is
// also used for outgoing segments during transition firing, where the
// model is no longer the one ActiveAt would return.
func (r *resolver) modelKin(id body.ID, model motive.Model, elapsed float64) (kin, error) {
	switch model.Kind {
	case motive.KindFixed:
		parent := kin{}
		if model.Parent != body.None {
			var err error
			parent, err = r.kinOf(model.Parent)
			if err != nil {
				return kin{}, err
			}
		}
		return kin{pos: parent.pos.Add(model.Offset), vel: parent.vel}, nil

	case motive.KindKeplerian:
		prim, err := r.kinOf(model.Primary)
		if err != nil {
			return kin{}, err
		}
		mu, err := r.u.Mu(model.Primary)
		if err != nil {
			return kin{}, err
		}
		local, lvel, err := model.Elements.StateAt(elapsed, mu)
		if err != nil {
			return kin{}, err
		}
		return kin{pos: prim.pos.Add(local), vel: prim.vel.Add(lvel)}, nil

	case motive.KindNewtonian:
		if k, ok := r.pending[id]; ok {
			return k, nil
		}
		st := r.u.states[id]
		return kin{pos: st.CurrentPosition, vel: st.CurrentVelocity}, nil
	}
	return kin{}, fmt.Errorf("sim: unknown model kind %v", model.Kind)
}
