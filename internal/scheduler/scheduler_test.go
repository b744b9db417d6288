package scheduler

import (
	"fmt"
	"strings"
	"testing"

	"adpulse/domain/plan"
)

// captureRecorder keeps formatted warnings so tests can assert on them.
type captureRecorder struct {
	warnings []string
}

func (r *captureRecorder) Error(string, ...interface{}) {}
func (r *captureRecorder) Info(string, ...interface{})  {}
func (r *captureRecorder) Debug(string, ...interface{}) {}

func (r *captureRecorder) Warn(format string, args ...interface{}) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func (r *captureRecorder) warned(substr string) bool {
	for _, w := range r.warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func mustTask(t *testing.T, id string, priority int, deps ...string) plan.Task {
	t.Helper()
	task, err := plan.NewTask(id, id+"_name", plan.TypeMetricCheck, "ctr", plan.ScopeAllCampaigns, priority, deps)
	if err != nil {
		t.Fatalf("NewTask(%s): %v", id, err)
	}
	return task
}

func indexOf(tasks []plan.Task, id string) int {
	for i, task := range tasks {
		if task.ID.String() == id {
			return i
		}
	}
	return -1
}

func assertPermutation(t *testing.T, in, out []plan.Task) {
	t.Helper()
	if len(out) != len(in) {
		t.Fatalf("expected %d tasks, got %d", len(in), len(out))
	}
	seen := map[string]int{}
	for _, task := range out {
		seen[task.ID.String()]++
	}
	for _, task := range in {
		if seen[task.ID.String()] != 1 {
			t.Errorf("task %s appears %d times in output", task.ID, seen[task.ID.String()])
		}
	}
}

func TestOrderRespectsDependencies(t *testing.T) {
	tasks := []plan.Task{
		mustTask(t, "t2", 2, "t1"),
		mustTask(t, "t3", 3, "t2"),
		mustTask(t, "t1", 1),
	}

	out := New(nil).Order(tasks)

	assertPermutation(t, tasks, out)
	if i1, i2 := indexOf(out, "t1"), indexOf(out, "t2"); i1 > i2 {
		t.Errorf("t1 (index %d) should precede t2 (index %d)", i1, i2)
	}
	if i2, i3 := indexOf(out, "t2"), indexOf(out, "t3"); i2 > i3 {
		t.Errorf("t2 (index %d) should precede t3 (index %d)", i2, i3)
	}
}

func TestOrderDeterministicTieBreak(t *testing.T) {
	tasks := []plan.Task{
		mustTask(t, "tb", 1),
		mustTask(t, "ta", 1),
		mustTask(t, "tc", 1),
	}

	first := New(nil).Order(tasks)
	for i := 0; i < 10; i++ {
		again := New(nil).Order(tasks)
		for j := range first {
			if first[j].ID != again[j].ID {
				t.Fatalf("run %d: order differs at %d: %s vs %s", i, j, first[j].ID, again[j].ID)
			}
		}
	}

	want := []string{"ta", "tb", "tc"}
	for i, id := range want {
		if first[i].ID.String() != id {
			t.Errorf("position %d: want %s, got %s", i, id, first[i].ID)
		}
	}
}

func TestOrderPriorityBeforeID(t *testing.T) {
	tasks := []plan.Task{
		mustTask(t, "ta", 5),
		mustTask(t, "tz", 1),
	}

	out := New(nil).Order(tasks)
	if out[0].ID.String() != "tz" {
		t.Errorf("lower priority value should run first, got %s", out[0].ID)
	}
}

func TestOrderIgnoresDanglingDependency(t *testing.T) {
	tasks := []plan.Task{
		mustTask(t, "t1", 1, "ghost"),
		mustTask(t, "t2", 2, "t1"),
	}

	rec := &captureRecorder{}
	out := New(rec).Order(tasks)

	assertPermutation(t, tasks, out)
	if out[0].ID.String() != "t1" {
		t.Errorf("t1 should still run first, got %s", out[0].ID)
	}
	if !rec.warned("ghost") {
		t.Errorf("expected a warning naming the unknown dependency, got %v", rec.warnings)
	}
}

func TestOrderRecoversFromCycle(t *testing.T) {
	tasks := []plan.Task{
		mustTask(t, "ta", 1, "tb"),
		mustTask(t, "tb", 2, "ta"),
	}

	rec := &captureRecorder{}
	out := New(rec).Order(tasks)
	assertPermutation(t, tasks, out)
	if !rec.warned("cycle") {
		t.Errorf("expected a cycle warning, got %v", rec.warnings)
	}
}

func TestOrderRecoversFromLongerCycle(t *testing.T) {
	tasks := []plan.Task{
		mustTask(t, "ta", 1, "tc"),
		mustTask(t, "tb", 2, "ta"),
		mustTask(t, "tc", 3, "tb"),
		mustTask(t, "td", 4),
	}

	out := New(nil).Order(tasks)
	assertPermutation(t, tasks, out)
}

func TestOrderEmptyInput(t *testing.T) {
	out := New(nil).Order(nil)
	if len(out) != 0 {
		t.Errorf("expected empty output, got %d tasks", len(out))
	}
}
