package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// ============================================================================
// TEXT BUILDER — Growth summaries and caption placeholders
// ============================================================================

// BuildGrowth computes the accumulated total and the change of the rate
// between the first and last group of a chronological series.
func BuildGrowth(groups []Group) *GrowthData {
	if len(groups) == 0 {
		return &GrowthData{Direction: "insufficient data"}
	}

	earliest := groups[0]
	latest := groups[len(groups)-1]
	g := &GrowthData{
		Total:          TotalCount(groups),
		EarliestRate:   earliest.Rate,
		LatestRate:     latest.Rate,
		EarliestPeriod: earliest.Label,
		LatestPeriod:   latest.Label,
	}

	if len(groups) < 2 || earliest.Rate == 0 {
		g.Direction = "insufficient data"
		return g
	}

	g.ChangePercent = (latest.Rate - earliest.Rate) / earliest.Rate * 100
	switch {
	case g.ChangePercent > 0.5:
		g.Direction = "increased"
	case g.ChangePercent < -0.5:
		g.Direction = "decreased"
	default:
		g.Direction = "unchanged"
	}
	return g
}

// DerivePeriod builds "first-last" from a chronological series.
func DerivePeriod(groups []Group) string {
	if len(groups) == 0 {
		return "No data"
	}
	first, last := groups[0].Label, groups[len(groups)-1].Label
	if first == last {
		return first
	}
	return fmt.Sprintf("%s-%s", first, last)
}

// ============================================================================
// PLACEHOLDER RESOLUTION
// ============================================================================

// ResolvePlaceholders substitutes values into a caption template such as
// "Fuente: INEGI (EMAT, {period})". Unknown placeholders are stripped.
func ResolvePlaceholders(template string, values map[string]string) string {
	result := template
	for key, value := range values {
		result = strings.ReplaceAll(result, "{"+key+"}", value)
	}
	return stripUnresolvedPlaceholders(result)
}

var placeholderRegex = regexp.MustCompile(`\{[a-z_]+\}`)

func stripUnresolvedPlaceholders(text string) string {
	cleaned := placeholderRegex.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	cleaned = strings.ReplaceAll(cleaned, "(, ", "(")
	cleaned = strings.ReplaceAll(cleaned, ", )", ")")
	return strings.TrimSpace(cleaned)
}
