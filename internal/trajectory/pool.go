package trajectory

import (
	"sync"

	"github.com/maren-k/orbitlab/internal/body"
	"github.com/maren-k/orbitlab/internal/sim"
)

// Job is the outcome of one precompute task. Stored is false when the
// result was superseded by a newer request (or an edit) and discarded.
type Job struct {
	ID     body.ID
	Err    error
	Stored bool
}

// RequestAll captures one consistent snapshot of the universe, then
// precomputes each requested body's trajectory on its own goroutine.
// The snapshot is taken atomically before fan-out, so every Newtonian
// replay sees the same Major-body states. Results are delivered through
// the universe's generation-checked trajectory slots; superseded
// results are dropped, never merged.
//
// RequestAll must be called between ticks, like any other read of live
// state. It blocks until all jobs finish.
func RequestAll(u *sim.Universe, ids []body.ID, from, horizon float64, opts Options) []Job {
	snap := u.Clone()
	gens := make(map[body.ID]uint64, len(ids))
	for _, id := range ids {
		gens[id] = u.TrajectoryGeneration(id)
	}

	jobs := make([]Job, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id body.ID) {
			defer wg.Done()
			tm, err := Precompute(snap, id, from, horizon, opts)
			if err != nil {
				jobs[i] = Job{ID: id, Err: err}
				return
			}
			jobs[i] = Job{ID: id, Stored: u.SetTrajectory(id, tm, gens[id])}
		}(i, id)
	}
	wg.Wait()
	return jobs
}
