package reconcile

// Diff plans the move from current to desired.
// Keys present in both are preserved, keys only in desired are created and keys only
// in current are deleted. Desired order is kept for preserve and create; current order
// for delete. Duplicates are collapsed.
func Diff(current, desired []string) *Plan {
	plan := &Plan{}

	currentSet := toSet(current)
	desiredSet := make(map[string]struct{}, len(desired))

	for _, key := range desired {
		if _, dup := desiredSet[key]; dup {
			continue
		}
		desiredSet[key] = struct{}{}

		if _, ok := currentSet[key]; ok {
			plan.Add(ActionPreserve, key, "present in both")
		} else {
			plan.Add(ActionCreate, key, "missing in current")
		}
	}

	seen := make(map[string]struct{}, len(current))
	for _, key := range current {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if _, ok := desiredSet[key]; !ok {
			plan.Add(ActionDelete, key, "not desired")
		}
	}

	return plan
}

// Added returns desired − current.
func Added(current, desired []string) []string {
	return Diff(current, desired).Keys(ActionCreate)
}

// Removed returns current − desired.
func Removed(current, desired []string) []string {
	return Diff(current, desired).Keys(ActionDelete)
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
