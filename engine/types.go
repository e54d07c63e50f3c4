package engine

// ============================================================================
// ENGINE TYPES — Aggregates and declarative figure descriptions
// ============================================================================
// The engine turns a RecordView into Groups (aggregate rows) and Groups into
// render-ready descriptions (ChartConfig, MapConfig, TableData). It never
// draws pixels; the render package consumes these descriptions.
// ============================================================================

// ============================================================================
// GROUP — Aggregate row
// ============================================================================

// Group is one aggregate row keyed by year or region.
type Group struct {
	Key        string     `json:"key"`
	Label      string     `json:"label"`
	Count      int        `json:"count"`
	SubGroups  []Group    `json:"subGroups,omitempty"`
	Population float64    `json:"population,omitempty"`
	Rate       float64    `json:"rate"`
	Change     float64    `json:"change"`
	HasChange  bool       `json:"hasChange"` // false for the first period of a series
	Share      float64    `json:"share,omitempty"`
	Value      float64    `json:"value,omitempty"` // statistic other than a count, e.g. mean age
	View       RecordView `json:"-"`               // records in this group (zero-copy)
}

// SubCount returns the count of the sub-group with the given key, 0 if absent.
func (g Group) SubCount(key string) int {
	for _, sg := range g.SubGroups {
		if sg.Key == key {
			return sg.Count
		}
	}
	return 0
}

// TotalCount sums Count over groups.
func TotalCount(groups []Group) int {
	var total int
	for _, g := range groups {
		total += g.Count
	}
	return total
}

// ============================================================================
// CHART TYPES
// ============================================================================

// Chart types understood by the renderer.
const (
	ChartBar     = "bar"
	ChartLine    = "line"
	ChartScatter = "scatter"
)

// ChartConfig is a declarative description of an x/y chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	XRange     *Range        `json:"xRange,omitempty"`
	YRange     *Range        `json:"yRange,omitempty"`
	Notes      []string      `json:"notes,omitempty"` // boxed annotation, one line per entry
	Footer     Footer        `json:"footer"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries is one data series.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint is a single data point with its display text.
type ChartPoint struct {
	X     float64 `json:"x"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Text  string  `json:"text,omitempty"`
}

// Range is a closed axis interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Footer holds the three captions under a figure.
type Footer struct {
	Left   string `json:"left,omitempty"`
	Center string `json:"center,omitempty"`
	Right  string `json:"right,omitempty"`
}

// ============================================================================
// MAP TYPES
// ============================================================================

// MapConfig describes a choropleth keyed by region display name.
type MapConfig struct {
	Title         string             `json:"title"`
	Subtitle      string             `json:"subtitle,omitempty"`
	ColorbarTitle string             `json:"colorbarTitle,omitempty"`
	Values        map[string]float64 `json:"values"`
	Domain        Domain             `json:"domain"`
	Footer        Footer             `json:"footer"`
}

// Domain is the colour-scale domain with its colour-bar ticks.
type Domain struct {
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
	Ticks      []float64 `json:"ticks"`
	TickLabels []string  `json:"tickLabels"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// Slice returns a copy of the table restricted to rows [from, to).
func (t *TableData) Slice(from, to int) *TableData {
	if from < 0 {
		from = 0
	}
	if to > len(t.Rows) {
		to = len(t.Rows)
	}
	if from > to {
		from = to
	}
	rows := make([][]string, to-from)
	copy(rows, t.Rows[from:to])
	return &TableData{Title: t.Title, Columns: t.Columns, Rows: rows}
}

// ============================================================================
// GROWTH
// ============================================================================

// GrowthData contains change-over-time metrics of a rate series.
type GrowthData struct {
	Total          int     `json:"total"`
	EarliestRate   float64 `json:"earliestRate"`
	LatestRate     float64 `json:"latestRate"`
	EarliestPeriod string  `json:"earliestPeriod"`
	LatestPeriod   string  `json:"latestPeriod"`
	ChangePercent  float64 `json:"changePercent"`
	Direction      string  `json:"direction"` // "increased", "decreased", "unchanged", "insufficient data"
}
