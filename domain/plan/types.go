package plan

import (
	"sort"
	"strings"

	"adpulse/domain/core"
)

// TaskType classifies what kind of analysis a task asks for
type TaskType string

const (
	TypeTimeseries  TaskType = "timeseries"
	TypeMetricCheck TaskType = "metric_check"
	TypeSegment     TaskType = "segment_analysis"
)

// ScopeAllCampaigns is the scope value meaning "no campaign filter".
const ScopeAllCampaigns = "all_campaigns"

// Task is a single planned analysis unit. Fields are validated once at
// construction; readers may rely on them without defensive checks.
type Task struct {
	ID        core.TaskID   `json:"id"`
	Name      string        `json:"name"`
	Type      TaskType      `json:"type"`
	Target    string        `json:"target"`   // metric name, e.g. "ctr", "roas"
	Scope     string        `json:"scope"`    // campaign name or ScopeAllCampaigns
	Priority  int           `json:"priority"` // lower runs earlier
	DependsOn []core.TaskID `json:"depends_on,omitempty"`
}

// NewTask builds a validated Task, applying the documented defaults for
// optional fields (name, type, target, scope, priority).
func NewTask(id string, name string, taskType TaskType, target, scope string, priority int, dependsOn []string) (Task, error) {
	tid, err := core.ParseTaskID(id)
	if err != nil {
		return Task{}, core.NewValidationError("task.id", err.Error())
	}
	if name == "" {
		name = "analysis_task"
	}
	if taskType == "" {
		taskType = TypeMetricCheck
	}
	if target == "" {
		target = "roas"
	}
	if scope == "" {
		scope = ScopeAllCampaigns
	}
	if priority <= 0 {
		priority = 5
	}

	deps := make([]core.TaskID, 0, len(dependsOn))
	for _, d := range dependsOn {
		if strings.TrimSpace(d) == "" {
			continue
		}
		deps = append(deps, core.TaskID(d))
	}

	return Task{
		ID:        tid,
		Name:      name,
		Type:      taskType,
		Target:    target,
		Scope:     scope,
		Priority:  priority,
		DependsOn: deps,
	}, nil
}

// Plan is the ordered outcome of the planning stage.
type Plan struct {
	Query       string         `json:"query"`
	Description string         `json:"plan_description,omitempty"`
	GeneratedAt core.Timestamp `json:"generated_at"`
	Tasks       []Task         `json:"tasks"`
}

// Validate checks plan-level invariants: task ids must be unique.
// Dangling dependency references are tolerated here; the scheduler logs
// and ignores them.
func (p *Plan) Validate() error {
	seen := make(map[core.TaskID]struct{}, len(p.Tasks))
	for _, t := range p.Tasks {
		if _, dup := seen[t.ID]; dup {
			return core.NewValidationError("plan.tasks", "duplicate task id "+t.ID.String())
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// SortStable orders tasks by (priority, id) in place. The scheduler uses
// this ordering to make DFS root selection reproducible.
func SortStable(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Priority != tasks[j].Priority {
			return tasks[i].Priority < tasks[j].Priority
		}
		return tasks[i].ID < tasks[j].ID
	})
}
