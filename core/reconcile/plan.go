package reconcile

import (
	"context"
	"fmt"
)

// Mutator applies individual plan actions against a backing store.
type Mutator interface {
	Create(ctx context.Context, key string) error
	Delete(ctx context.Context, key string) error
}

// Undoer is implemented by mutators that can revert a creation when a later
// creation of the same plan fails.
type Undoer interface {
	UndoCreate(ctx context.Context, key string) error
}

// Add appends an action and updates the summary.
func (p *Plan) Add(t ActionType, key, reason string) {
	p.Actions = append(p.Actions, Action{Type: t, Key: key, Reason: reason})
	p.Summary.Total++
	switch t {
	case ActionPreserve:
		p.Summary.Preserve++
	case ActionCreate:
		p.Summary.Create++
	case ActionDelete:
		p.Summary.Delete++
	}
}

// Keys returns the keys of all actions of the given type, in plan order.
func (p *Plan) Keys(t ActionType) []string {
	var keys []string
	for _, a := range p.Actions {
		if a.Type == t {
			keys = append(keys, a.Key)
		}
	}
	return keys
}

// Empty reports whether the plan changes anything.
func (p *Plan) Empty() bool {
	return p.Summary.Create == 0 && p.Summary.Delete == 0
}

// ApplyPlan executes the actions in a plan.
// Creations run before deletions. If a creation fails, the creations already made
// are undone when the mutator implements Undoer, and no deletion runs.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
func ApplyPlan(ctx context.Context, m Mutator, plan *Plan, opts Options) (executed int, err error) {
	if !opts.Confirmed || opts.DryRun {
		return 0, nil
	}

	creates := plan.Keys(ActionCreate)
	deletes := plan.Keys(ActionDelete)

	var created []string
	for _, key := range creates {
		if err := m.Create(ctx, key); err != nil {
			undoCreated(ctx, m, created)
			return 0, fmt.Errorf("failed to create %s: %w", key, err)
		}
		created = append(created, key)
		executed++
	}

	for _, key := range deletes {
		if err := m.Delete(ctx, key); err != nil {
			return executed, fmt.Errorf("failed to delete %s: %w", key, err)
		}
		executed++
	}

	return executed, nil
}

func undoCreated(ctx context.Context, m Mutator, created []string) {
	u, ok := m.(Undoer)
	if !ok {
		return
	}
	for i := len(created) - 1; i >= 0; i-- {
		_ = u.UndoCreate(ctx, created[i])
	}
}
