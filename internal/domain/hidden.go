package domain

import (
	"slices"
	"strings"
)

// HiddenSet holds the column ids the user chose to hide.
type HiddenSet map[string]struct{}

// NewHiddenSet builds a set from column ids, ignoring blanks.
func NewHiddenSet(ids ...string) HiddenSet {
	set := HiddenSet{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether the column is hidden.
func (h HiddenSet) Contains(columnID string) bool {
	_, ok := h[columnID]
	return ok
}

// Toggle returns a copy with the column's membership flipped.
func (h HiddenSet) Toggle(columnID string) HiddenSet {
	out := h.Clone()
	if out.Contains(columnID) {
		delete(out, columnID)
	} else {
		out[columnID] = struct{}{}
	}
	return out
}

// Clone returns an independent copy.
func (h HiddenSet) Clone() HiddenSet {
	out := make(HiddenSet, len(h))
	for id := range h {
		out[id] = struct{}{}
	}
	return out
}

// Slice returns the hidden ids in sorted order.
func (h HiddenSet) Slice() []string {
	out := make([]string, 0, len(h))
	for id := range h {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
