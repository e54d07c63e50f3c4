package engine

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ============================================================================
// COLOUR SCALE — Choropleth domain
// ============================================================================

// DomainQuantile is the upper bound percentile of the colour scale.
const DomainQuantile = 0.975

// DomainTicks is the number of colour-bar ticks.
const DomainTicks = 11

// ErrEmptyDomain is returned when there are no values to scale.
var ErrEmptyDomain = errors.New("no values for colour domain")

// ColorDomain computes the colour-scale domain of rates. The lower bound is
// the smallest non-zero rate, or 0 when that equals the largest rate (or no
// rate is non-zero). The upper bound is the 97.5th percentile, linearly
// interpolated at (n-1)·p.
func ColorDomain(rates []float64) (Domain, error) {
	if len(rates) == 0 {
		return Domain{}, ErrEmptyDomain
	}
	for _, r := range rates {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return Domain{}, ErrNonFiniteRate
		}
	}

	sorted := append([]float64(nil), rates...)
	sort.Float64s(sorted)
	maxRate := sorted[len(sorted)-1]

	lo := 0.0
	for _, r := range sorted {
		if r != 0 {
			lo = r
			break
		}
	}
	if lo == maxRate {
		lo = 0
	}

	hi := linearQuantile(sorted, DomainQuantile)
	if hi <= lo {
		hi = maxRate
	}
	if hi <= lo {
		hi = lo + 1
	}

	ticks := floats.Span(make([]float64, DomainTicks), lo, hi)
	labels := make([]string, len(ticks))
	for i, t := range ticks {
		labels[i] = FormatNumber(t, 1)
	}
	labels[len(labels)-1] = "≥" + labels[len(labels)-1]

	return Domain{Min: lo, Max: hi, Ticks: ticks, TickLabels: labels}, nil
}

// linearQuantile interpolates between the two order statistics around
// h = (n-1)·p. sorted must be ascending and non-empty.
func linearQuantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	i := int(math.Floor(h))
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-float64(i))*(sorted[i+1]-sorted[i])
}

// Rates extracts the Rate of each group.
func Rates(groups []Group) []float64 {
	out := make([]float64, len(groups))
	for i, g := range groups {
		out[i] = g.Rate
	}
	return out
}
