package engine

import (
	"strings"
)

// ============================================================================
// FILTERS — Dimension sets and record predicates via RecordView
// ============================================================================
// Single-pass filter: checks ALL constraints per record in one loop.
// Returns a SubView (index list into parent) — zero data copy.
// ============================================================================

// Predicate decides whether record i of view is kept.
type Predicate func(view RecordView, i int) bool

// Filter selects records. Dimension values are OR-combined within a
// dimension; dimensions and predicates are AND-combined. Empty = all.
type Filter struct {
	Dimensions map[string][]string
	Predicates []Predicate
}

// IsEmpty returns true if no constraint is set.
func (f Filter) IsEmpty() bool {
	if len(f.Predicates) > 0 {
		return false
	}
	for _, vals := range f.Dimensions {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// Where returns a copy of f with extra predicates appended.
func (f Filter) Where(preds ...Predicate) Filter {
	out := Filter{Dimensions: f.Dimensions}
	out.Predicates = append(append([]Predicate{}, f.Predicates...), preds...)
	return out
}

// ApplyFilters returns a view of records matching the filter.
// Empty filter = no restriction (returns original view).
func ApplyFilters(view RecordView, filter Filter) RecordView {
	if filter.IsEmpty() {
		return view
	}

	sets := make(map[string]map[string]bool)
	for dim, allowed := range filter.Dimensions {
		if len(allowed) > 0 {
			sets[dim] = toSet(allowed)
		}
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if matches(view, i, sets, filter.Predicates) {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices)
}

func matches(view RecordView, i int, sets map[string]map[string]bool, preds []Predicate) bool {
	for dim, set := range sets {
		if !set[strings.TrimSpace(view.Dimension(i, dim))] {
			return false
		}
	}
	for _, p := range preds {
		if !p(view, i) {
			return false
		}
	}
	return true
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.TrimSpace(item)] = true
	}
	return set
}

// ============================================================================
// PREDICATES
// ============================================================================

// Equals keeps records whose dimension equals value.
func Equals(dimension, value string) Predicate {
	value = strings.TrimSpace(value)
	return func(view RecordView, i int) bool {
		return strings.TrimSpace(view.Dimension(i, dimension)) == value
	}
}

// SameValue keeps records whose two dimensions hold the same value.
func SameValue(a, b string) Predicate {
	return func(view RecordView, i int) bool {
		return view.Dimension(i, a) == view.Dimension(i, b)
	}
}

// DifferentValue keeps records whose two dimensions differ.
func DifferentValue(a, b string) Predicate {
	return func(view RecordView, i int) bool {
		return view.Dimension(i, a) != view.Dimension(i, b)
	}
}

// MeasureNot keeps records whose measure is not the sentinel value.
func MeasureNot(measure string, sentinel float64) Predicate {
	return func(view RecordView, i int) bool {
		return view.Measure(i, measure) != sentinel
	}
}

// And keeps records matching every predicate.
func And(preds ...Predicate) Predicate {
	return func(view RecordView, i int) bool {
		for _, p := range preds {
			if !p(view, i) {
				return false
			}
		}
		return true
	}
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(view RecordView, i int) bool {
		return !p(view, i)
	}
}
