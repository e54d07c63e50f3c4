package engine

import "math"

// ============================================================================
// CHART BUILDER — Produces ChartConfig from aggregated groups
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#009688", "#ffa726", "#c6ff00", "#69caff", "#ec407a",
	"#7e57c2", "#26c6da", "#d4e157", "#ff7043", "#5c6bc0",
}

// ChartSpec holds the presentation attributes of a chart.
type ChartSpec struct {
	Type   string
	Title  string
	XAxis  string
	YAxis  string
	YRange *Range
	XPad   float64 // padding added on both sides of the x extent
	Notes  []string
	Footer Footer
}

// SeriesSpec describes how one series is derived from groups.
type SeriesSpec struct {
	Name   string
	Color  string
	Groups []Group
	Value  func(Group) float64 // default: Rate
	Text   func(Group) string  // default: no text
	Skip   func(Group) bool    // default: keep every group
}

// BuildChart produces a ChartConfig from a spec and one or more series.
// Group keys are parsed as x coordinates; non-numeric keys use their index.
func BuildChart(spec ChartSpec, series ...SeriesSpec) *ChartConfig {
	if len(series) == 0 {
		return nil
	}

	chartType := spec.Type
	if chartType == "" {
		chartType = ChartBar
	}

	config := &ChartConfig{
		ChartType:  chartType,
		Title:      spec.Title,
		XAxis:      spec.XAxis,
		YAxis:      spec.YAxis,
		YRange:     spec.YRange,
		Notes:      spec.Notes,
		Footer:     spec.Footer,
		ShowLegend: true,
		ShowGrid:   true,
	}

	for i, s := range series {
		cs := buildSeries(s)
		if cs.Color == "" {
			cs.Color = defaultColors[i%len(defaultColors)]
		}
		config.Series = append(config.Series, cs)
	}

	if spec.XPad > 0 {
		if lo, hi, ok := xExtent(config.Series); ok {
			config.XRange = &Range{Min: lo - spec.XPad, Max: hi + spec.XPad}
		}
	}
	return config
}

func buildSeries(s SeriesSpec) ChartSeries {
	value := s.Value
	if value == nil {
		value = func(g Group) float64 { return g.Rate }
	}

	points := make([]ChartPoint, 0, len(s.Groups))
	for i, g := range s.Groups {
		if s.Skip != nil && s.Skip(g) {
			continue
		}
		x, ok := KeyNumber(g.Key)
		if !ok {
			x = float64(i)
		}
		p := ChartPoint{X: x, Label: g.Label, Value: value(g)}
		if s.Text != nil {
			p.Text = s.Text(g)
		}
		points = append(points, p)
	}

	return ChartSeries{
		Name:  s.Name,
		Data:  points,
		Color: s.Color,
	}
}

func xExtent(series []ChartSeries) (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, p := range s.Data {
			lo = math.Min(lo, p.X)
			hi = math.Max(hi, p.X)
		}
	}
	return lo, hi, !math.IsInf(lo, 1)
}

// MaxValue returns the largest point value over all series (0 if empty).
func (c *ChartConfig) MaxValue() float64 {
	m := 0.0
	first := true
	for _, s := range c.Series {
		for _, p := range s.Data {
			if first || p.Value > m {
				m = p.Value
				first = false
			}
		}
	}
	return m
}

// ============================================================================
// MAP BUILDER
// ============================================================================

// MapSpec holds the presentation attributes of a choropleth.
type MapSpec struct {
	Title         string
	Subtitle      string
	ColorbarTitle string
	Footer        Footer
}

// BuildMap produces a MapConfig whose values are the group rates keyed by label.
func BuildMap(spec MapSpec, groups []Group, domain Domain) *MapConfig {
	values := make(map[string]float64, len(groups))
	for _, g := range groups {
		values[g.Label] = g.Rate
	}
	return &MapConfig{
		Title:         spec.Title,
		Subtitle:      spec.Subtitle,
		ColorbarTitle: spec.ColorbarTitle,
		Values:        values,
		Domain:        domain,
		Footer:        spec.Footer,
	}
}
