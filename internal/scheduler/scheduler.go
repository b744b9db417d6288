// Package scheduler orders analysis tasks into a safe execution sequence.
//
// Ordering is a deterministic depth-first topological sort: roots are
// visited in ascending (priority, id) order, a task is emitted only after
// its dependencies, and cycles are recovered from rather than fatal - the
// cyclic edge is dropped with a warning and the run continues. The output
// is always a permutation of the input, even under cycles.
package scheduler

import (
	"adpulse/domain/core"
	"adpulse/domain/plan"
	"adpulse/ports"
)

// Visitation states for the depth-first traversal.
const (
	white = iota // unvisited
	gray         // in progress on the current DFS path
	black        // fully processed and emitted
)

// Scheduler computes execution order for task sets.
type Scheduler struct {
	rec ports.Recorder
}

// New creates a scheduler reporting diagnostics to rec.
func New(rec ports.Recorder) *Scheduler {
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	return &Scheduler{rec: rec}
}

// Order returns the input tasks in dependency-respecting order. Every input
// task appears exactly once. Dependency ids absent from the input set are
// logged and ignored; a dependency edge that closes a cycle is dropped with
// a warning and the offending task is emitted once its remaining acyclic
// dependencies are satisfied.
func (s *Scheduler) Order(tasks []plan.Task) []plan.Task {
	byID := make(map[core.TaskID]plan.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	roots := make([]plan.Task, len(tasks))
	copy(roots, tasks)
	plan.SortStable(roots)

	state := make(map[core.TaskID]int, len(tasks))
	ordered := make([]plan.Task, 0, len(tasks))

	var visit func(id core.TaskID)
	visit = func(id core.TaskID) {
		switch state[id] {
		case black:
			return
		case gray:
			// Back-edge: dropping it keeps the permutation guarantee.
			s.rec.Warn("scheduler: dependency cycle involving task %s, dropping edge", id)
			return
		}
		state[id] = gray

		for _, dep := range byID[id].DependsOn {
			if _, ok := byID[dep]; !ok {
				s.rec.Warn("scheduler: task %s depends on unknown task %s, ignoring", id, dep)
				continue
			}
			visit(dep)
		}

		state[id] = black
		ordered = append(ordered, byID[id])
	}

	for _, t := range roots {
		visit(t.ID)
	}
	return ordered
}
