package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ============================================================================
// FORMATTING — Display labels for rates, counts and changes
// ============================================================================
// Rounding happens only here; aggregates keep full precision.
// ============================================================================

// NoChange is the placeholder for a period without a defined change.
const NoChange = "---"

var printer = message.NewPrinter(language.English)

// FormatNumber formats v with thousands separators and fixed decimals.
func FormatNumber(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if decimals < 0 {
		decimals = 0
	}
	s := strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return s
	}
	out := printer.Sprintf("%d", n)
	if frac != "" {
		out += "." + frac
	}
	if v < 0 && strings.Trim(s, "0.") != "" {
		out = "-" + out
	}
	return out
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatCompact abbreviates values over 1,000 with a "k" suffix at
// kDecimals decimals; smaller values render as plain integers.
func FormatCompact(v float64, kDecimals int) string {
	if v > 1000 {
		return FormatNumber(v/1000, kDecimals) + "k"
	}
	return FormatNumber(v, 0)
}

// FormatChange renders a group's percent change, or NoChange when the
// group has no prior period.
func FormatChange(g Group) string {
	if !g.HasChange || math.IsNaN(g.Change) || math.IsInf(g.Change, 0) {
		return NoChange
	}
	if g.Change >= 0 {
		return "+" + FormatNumber(g.Change, 2) + "%"
	}
	return FormatNumber(g.Change, 2) + "%"
}

// LabelStyle controls the text shown next to a rate point.
type LabelStyle struct {
	RateDecimals int
	KDecimals    int
	Compact      bool // abbreviate counts over 1,000
}

// Small-magnitude and large-magnitude series styles.
var (
	SmallSeriesLabel = LabelStyle{RateDecimals: 2, KDecimals: 1, Compact: true}
	LargeSeriesLabel = LabelStyle{RateDecimals: 0, KDecimals: 0, Compact: true}
	PlainCountLabel  = LabelStyle{RateDecimals: 2}
)

// RateText returns "<rate>\n(<count>)" for a group.
func RateText(g Group, style LabelStyle) string {
	count := FormatInt(g.Count)
	if style.Compact {
		count = FormatCompact(float64(g.Count), style.KDecimals)
	}
	return fmt.Sprintf("%s\n(%s)", FormatNumber(g.Rate, style.RateDecimals), count)
}

// ParseDisplayNumber parses a formatted value back into a number. It accepts
// thousands separators, a leading sign or "≥", a trailing "%" and a "k"
// suffix (×1000).
func ParseDisplayNumber(s string) (float64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.Trim(clean, "()")
	clean = strings.TrimPrefix(clean, "≥")
	clean = strings.TrimSuffix(clean, "%")
	scale := 1.0
	if strings.HasSuffix(clean, "k") {
		clean = strings.TrimSuffix(clean, "k")
		scale = 1000
	}
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.TrimPrefix(clean, "+")
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("parse display number %q: %w", s, err)
	}
	return v * scale, nil
}
