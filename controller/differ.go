package controller

import "github.com/netrack/ofcontroller/policy"

// Priority is the priority a FlowEntry is installed at. Distinct from
// policy.FlowEntry itself: the compiler never assigns priorities, an
// updater does, starting at 65535 and descending.
type Priority uint16

// Installed pairs a compiled FlowEntry with the priority it was (or will
// be) installed at. Differ and session state both traffic in this pair
// rather than bare FlowEntry, since priority is part of the matching key.
type Installed struct {
	Entry    policy.FlowEntry
	Priority Priority
}

// diff computes, given old and new installed-entry lists both sorted in
// strictly decreasing priority, the entries present in old but absent
// from new -- the ones to delete -- in ascending priority order, so a
// switch never loses its lowest-priority catch-all before replacement
// rules are already in place.
//
// Matching key is (priority, pattern); actions are ignored, so an
// actions-only change at the same priority is realized purely by
// installing the new entry, relying on OpenFlow 1.0 FlowAdd overwriting
// on an exact (priority, pattern) match rather than a separate delete.
func diff(old, new []Installed) []Installed {
	var deletions []Installed

	i, j := 0, 0
	for i < len(old) && j < len(new) {
		o, n := old[i], new[j]
		switch {
		case o.Priority > n.Priority:
			deletions = append(deletions, o)
			i++
		case o.Priority == n.Priority && o.Entry.Pattern == n.Entry.Pattern:
			i++
			j++
		default:
			// new has an addition the merge hasn't reached old's row
			// for yet: either new's priority is higher, or priorities
			// are equal but the patterns differ (a distinct rule).
			j++
		}
	}
	for ; i < len(old); i++ {
		deletions = append(deletions, old[i])
	}

	for l, r := 0, len(deletions)-1; l < r; l, r = l+1, r-1 {
		deletions[l], deletions[r] = deletions[r], deletions[l]
	}
	return deletions
}
