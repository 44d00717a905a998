// Package reconcile provides a small plan/apply engine for moving a current set of
// keys onto a desired set.
//
// Callers first build a Plan, either with Diff for plain key sets or by adding
// actions one at a time when planning needs domain checks (e.g. photo URIs that must
// resolve to existing resources). The plan can be inspected, printed as a dry run,
// or executed with ApplyPlan through a Mutator.
//
// # Ordering
//
// ApplyPlan runs every creation before any deletion. A failed creation undoes the
// creations made so far (when the mutator implements Undoer) and skips all deletions,
// so a partially applied plan never loses existing entries.
//
// # Usage Example
//
//	plan := reconcile.Diff(currentIDs, desiredIDs)
//	if opts.DryRun {
//	    printPlan(plan)
//	}
//	executed, err := reconcile.ApplyPlan(ctx, mutator, plan, reconcile.Execute())
package reconcile
