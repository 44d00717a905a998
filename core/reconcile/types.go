package reconcile

// ActionType represents the type of reconciliation action.
type ActionType string

const (
	// ActionPreserve keeps an entry that is both current and desired.
	ActionPreserve ActionType = "preserve"
	// ActionCreate materialises a desired entry that does not exist yet.
	ActionCreate ActionType = "create"
	// ActionDelete removes a current entry that is no longer desired.
	ActionDelete ActionType = "delete"
)

// Action represents a single planned reconciliation action.
type Action struct {
	// Type is the kind of action.
	Type ActionType `json:"type"`

	// Key identifies the entry. For creations it is the desired value
	// (e.g. a source URL); for preserve and delete it is the current key.
	Key string `json:"key"`

	// Reason is a human-readable explanation.
	Reason string `json:"reason,omitempty"`
}

// PlanSummary provides counts of planned actions.
type PlanSummary struct {
	Total    int `json:"total"`
	Preserve int `json:"preserve"`
	Create   int `json:"create"`
	Delete   int `json:"delete"`
}

// Plan is the ordered set of actions needed to move a current set onto a desired set.
type Plan struct {
	Actions []Action    `json:"actions"`
	Summary PlanSummary `json:"summary"`
}

// Options controls how a plan is applied.
type Options struct {
	// DryRun builds the plan without executing it.
	DryRun bool

	// Confirmed must be true for ApplyPlan to execute anything.
	Confirmed bool
}

// Execute returns options that apply immediately.
func Execute() Options {
	return Options{Confirmed: true}
}
