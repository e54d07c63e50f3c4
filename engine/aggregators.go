package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// ============================================================================
// AGGREGATORS — Grouping, Rates and Sorting via RecordView
// ============================================================================
// One parameterised pipeline serves every report:
//   filter → group → zero-fill → label → join population → rate → sort → change
// Grouping produces SubViews (index lists into parent view).
// ============================================================================

var (
	// ErrNoGroupBy is returned when a query names no grouping dimension.
	ErrNoGroupBy = errors.New("query has no group-by dimension")
	// ErrMissingPopulation is returned when a group has no denominator.
	ErrMissingPopulation = errors.New("missing population")
	// ErrNonFiniteRate is returned when a rate is NaN or infinite.
	ErrNonFiniteRate = errors.New("non-finite rate")
)

// Sort modes.
const (
	SortChronological = "chronological"
	SortRateDesc      = "rate_desc"
	SortCountDesc     = "count_desc"
)

// PerHundredThousand is the rate multiplier.
const PerHundredThousand = 100000

// Query defines what Aggregate computes.
type Query struct {
	Filter  Filter   // which records to include
	GroupBy []string // primary dimension, optional sub-group dimension
	SortBy  string   // one of the Sort* modes; empty preserves grouping order
}

// Aggregate runs the pipeline and returns one Group per primary key.
// With WithPopulation every group carries Population and Rate; with
// SortChronological every group after the first carries a percent change.
func Aggregate(view RecordView, q Query, opts ...Option) ([]Group, error) {
	if len(q.GroupBy) == 0 {
		return nil, ErrNoGroupBy
	}
	cfg := applyOptions(opts)

	// 1. Filter
	filtered := ApplyFilters(view, q.Filter)

	// 2. Group + zero-fill
	groups := zeroFill(groupBySingle(filtered, q.GroupBy[0]), cfg.BaseKeys, filtered)
	if len(q.GroupBy) > 1 {
		for i := range groups {
			sub := groupBySingle(groups[i].View, q.GroupBy[1])
			groups[i].SubGroups = zeroFill(sub, cfg.SubKeys, groups[i].View)
		}
	}

	// 3. Label
	if err := labelGroups(groups, cfg.Labeler); err != nil {
		return nil, err
	}

	// 4. Population + rate
	if cfg.Population != nil {
		if err := applyRates(groups, cfg.Population); err != nil {
			return nil, err
		}
	}

	// 5. Sort
	SortGroups(groups, q.SortBy)

	// 6. Change between successive periods
	if q.SortBy == SortChronological {
		ApplyChange(groups)
	}

	cfg.Log.Debug("aggregated",
		"group_by", strings.Join(q.GroupBy, ","),
		"records", filtered.Len(),
		"groups", len(groups),
	)
	return groups, nil
}

// ============================================================================
// GROUPING
// ============================================================================

func groupBySingle(view RecordView, dimension string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := strings.TrimSpace(view.Dimension(i, dimension))
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			Count: len(grouped[key]),
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

// zeroFill returns groups ordered by base keys, inserting an empty group for
// every base key without records. Keys outside base follow in grouping order.
func zeroFill(groups []Group, base []string, parent RecordView) []Group {
	if len(base) == 0 {
		return groups
	}
	byKey := make(map[string]Group, len(groups))
	for _, g := range groups {
		byKey[g.Key] = g
	}

	out := make([]Group, 0, len(base)+len(groups))
	inBase := make(map[string]bool, len(base))
	for _, key := range base {
		key = strings.TrimSpace(key)
		if inBase[key] {
			continue
		}
		inBase[key] = true
		if g, ok := byKey[key]; ok {
			out = append(out, g)
			continue
		}
		out = append(out, Group{Key: key, Label: key, View: EmptyView(parent)})
	}
	for _, g := range groups {
		if !inBase[g.Key] {
			out = append(out, g)
		}
	}
	return out
}

func labelGroups(groups []Group, labeler Labeler) error {
	for i := range groups {
		label, err := labeler(groups[i].Key)
		if err != nil {
			return fmt.Errorf("label group %q: %w", groups[i].Key, err)
		}
		groups[i].Label = label
	}
	return nil
}

// ============================================================================
// RATES
// ============================================================================

// Rate returns count per 100,000 population.
func Rate(count, population float64) float64 {
	return count / population * PerHundredThousand
}

func applyRates(groups []Group, population Denominator) error {
	for i := range groups {
		g := &groups[i]
		pop, ok := population(g.Key)
		if !ok {
			return fmt.Errorf("%w for %q", ErrMissingPopulation, g.Label)
		}
		rate := Rate(float64(g.Count), pop)
		if math.IsNaN(rate) || math.IsInf(rate, 0) {
			return fmt.Errorf("%w for %q: %d / %g", ErrNonFiniteRate, g.Label, g.Count, pop)
		}
		g.Population = pop
		g.Rate = rate
	}
	return nil
}

// ApplyChange sets the percent change of each group's count against the
// previous group. The first group, and any group whose predecessor count is
// zero, has no defined change.
func ApplyChange(groups []Group) {
	for i := range groups {
		groups[i].HasChange = false
		groups[i].Change = 0
		if i == 0 {
			continue
		}
		prev := groups[i-1].Count
		if prev == 0 {
			continue
		}
		groups[i].Change = float64(groups[i].Count-prev) / float64(prev) * 100
		groups[i].HasChange = true
	}
}

// ============================================================================
// STATISTICS
// ============================================================================

// MeanByGroup groups the filtered view and sets Value to the mean of the
// pooled measures: every record contributes one sample per measure, so two
// measures over N records give 2N samples. Count is the sample count; a group
// without samples keeps Count 0 and Value 0.
func MeanByGroup(view RecordView, q Query, measures []string, opts ...Option) ([]Group, error) {
	if len(q.GroupBy) == 0 {
		return nil, ErrNoGroupBy
	}
	cfg := applyOptions(opts)

	filtered := ApplyFilters(view, q.Filter)
	groups := zeroFill(groupBySingle(filtered, q.GroupBy[0]), cfg.BaseKeys, filtered)

	for i := range groups {
		g := &groups[i]
		samples := make([]float64, 0, g.View.Len()*len(measures))
		for r := 0; r < g.View.Len(); r++ {
			for _, m := range measures {
				samples = append(samples, g.View.Measure(r, m))
			}
		}
		g.Count = len(samples)
		g.Value = 0
		if len(samples) > 0 {
			g.Value = stat.Mean(samples, nil)
		}
	}

	if err := labelGroups(groups, cfg.Labeler); err != nil {
		return nil, err
	}
	SortGroups(groups, q.SortBy)
	return groups, nil
}

// PooledResult is the outcome of CountPooled.
type PooledResult struct {
	Groups   []Group
	Total    int // pooled values inside the domain
	Excluded int // pooled values rejected by the domain
}

// CountPooled counts the values of several dimensions sharing one domain
// (e.g. the residence of both parties) over the filtered view. Share is the
// percentage of each key among the retained values. Groups are sorted by
// count, largest first.
func CountPooled(view RecordView, filter Filter, dimensions []string, opts ...Option) (*PooledResult, error) {
	cfg := applyOptions(opts)
	filtered := ApplyFilters(view, filter)

	counts := make(map[string]int)
	order := make([]string, 0)
	res := &PooledResult{}
	for i := 0; i < filtered.Len(); i++ {
		for _, dim := range dimensions {
			key := strings.TrimSpace(filtered.Dimension(i, dim))
			if cfg.Domain != nil && !cfg.Domain(key) {
				res.Excluded++
				continue
			}
			if _, ok := counts[key]; !ok {
				order = append(order, key)
			}
			counts[key]++
			res.Total++
		}
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		g := Group{Key: key, Label: key, Count: counts[key]}
		if res.Total > 0 {
			g.Share = float64(g.Count) / float64(res.Total) * 100
		}
		groups = append(groups, g)
	}
	if err := labelGroups(groups, cfg.Labeler); err != nil {
		return nil, err
	}
	SortGroups(groups, SortCountDesc)
	res.Groups = groups

	if res.Excluded > 0 {
		cfg.Log.Warn("pooled values outside domain excluded",
			"dimensions", strings.Join(dimensions, ","),
			"excluded", res.Excluded,
		)
	}
	return res, nil
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups sorts aggregate groups by the specified sort mode. Ties keep
// their incoming order.
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case SortRateDesc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Rate > groups[j].Rate })
	case SortCountDesc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count > groups[j].Count })
	case SortChronological:
		sort.SliceStable(groups, func(i, j int) bool { return keyOrder(groups[i].Key) < keyOrder(groups[j].Key) })
	default:
		// preserve grouping order
	}
}

func keyOrder(key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
	if err != nil {
		return math.Inf(1)
	}
	return v
}

// ============================================================================
// VIEW UTILITIES
// ============================================================================

// UniqueValues returns distinct values for a dimension across a view,
// in first-seen order.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := strings.TrimSpace(view.Dimension(i, dimension))
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// KeyNumber parses a numeric group key such as a year.
func KeyNumber(key string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
	return v, err == nil
}
