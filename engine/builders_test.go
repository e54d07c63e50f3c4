package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearSeries() []Group {
	return []Group{
		{Key: "2010", Label: "2010", Count: 100, Rate: 2},
		{Key: "2011", Label: "2011", Count: 0, Rate: 0},
		{Key: "2012", Label: "2012", Count: 1500, Rate: 3},
	}
}

func TestBuildChart(t *testing.T) {
	cfg := BuildChart(ChartSpec{Type: ChartLine, Title: "Trend", XPad: 0.5},
		SeriesSpec{
			Name:   "same",
			Groups: yearSeries(),
			Text:   func(g Group) string { return RateText(g, SmallSeriesLabel) },
			Skip:   func(g Group) bool { return g.Count == 0 },
		},
		SeriesSpec{Name: "counts", Color: "#ffffff", Groups: yearSeries(), Value: func(g Group) float64 { return float64(g.Count) }},
	)
	require.NotNil(t, cfg)
	require.Len(t, cfg.Series, 2)

	same := cfg.Series[0]
	assert.Equal(t, defaultColors[0], same.Color)
	require.Len(t, same.Data, 2)
	assert.Equal(t, 2010.0, same.Data[0].X)
	assert.Equal(t, 3.0, same.Data[1].Value)
	assert.Equal(t, "3.00\n(1.5k)", same.Data[1].Text)

	assert.Equal(t, "#ffffff", cfg.Series[1].Color)
	assert.Len(t, cfg.Series[1].Data, 3)
	assert.Equal(t, 1500.0, cfg.MaxValue())

	require.NotNil(t, cfg.XRange)
	assert.Equal(t, 2009.5, cfg.XRange.Min)
	assert.Equal(t, 2012.5, cfg.XRange.Max)

	assert.Nil(t, BuildChart(ChartSpec{}))
	assert.Equal(t, ChartBar, BuildChart(ChartSpec{}, SeriesSpec{}).ChartType)
}

func TestBuildMap(t *testing.T) {
	groups := []Group{{Label: "Colima", Rate: 1.5}, {Label: "Durango", Rate: 0}}
	d := Domain{Min: 0, Max: 1.5}
	m := BuildMap(MapSpec{Title: "Mapa"}, groups, d)
	assert.Equal(t, map[string]float64{"Colima": 1.5, "Durango": 0}, m.Values)
	assert.Equal(t, d, m.Domain)
}

func TestBuildRankedTable(t *testing.T) {
	groups := []Group{
		{Label: "Colima", Count: 1200, Rate: 12.346, SubGroups: []Group{{Key: "1-1", Count: 700}, {Key: "2-2", Count: 500}}},
		{Label: "Durango", Count: 3, Rate: 0.5, SubGroups: []Group{{Key: "1-1", Count: 3}}},
	}
	table := BuildRankedTable("Ranking", "Entidad", groups, []SubColumn{{Key: "1-1", Label: "♂-♂"}, {Key: "2-2", Label: "♀-♀"}})

	require.Len(t, table.Columns, 5)
	assert.Equal(t, "Entidad", table.Columns[0].Label)
	assert.Equal(t, "Tasa ↓", table.Columns[4].Label)
	assert.Equal(t, []string{"Colima", "700", "500", "1,200", "12.35"}, table.Rows[0])
	assert.Equal(t, []string{"Durango", "3", "0", "3", "0.50"}, table.Rows[1])
	assert.Equal(t, "1,203", table.Summary.Values["count"])

	half := table.Slice(1, 16)
	assert.Len(t, half.Rows, 1)
	assert.Equal(t, "Durango", half.Rows[0][0])
	assert.Empty(t, table.Slice(5, 10).Rows)
}

func TestBuildShareTable(t *testing.T) {
	groups := []Group{{Label: "Ciudad de México", Count: 30, Share: 75}, {Label: "Estado de México", Count: 10, Share: 25}}
	table := BuildShareTable("Residencia", "Entidad", groups)
	assert.Equal(t, []string{"Ciudad de México", "30", "75.00"}, table.Rows[0])
	assert.Equal(t, "40", table.Summary.Values["count"])
	assert.Equal(t, "100.00", table.Summary.Values["share"])
}

func TestBuildGrowth(t *testing.T) {
	g := BuildGrowth(yearSeries())
	assert.Equal(t, 1600, g.Total)
	assert.InDelta(t, 50.0, g.ChangePercent, 1e-9)
	assert.Equal(t, "increased", g.Direction)
	assert.Equal(t, "2010", g.EarliestPeriod)
	assert.Equal(t, "2012", g.LatestPeriod)

	assert.Equal(t, "insufficient data", BuildGrowth(nil).Direction)
	assert.Equal(t, "insufficient data", BuildGrowth([]Group{{Rate: 0}, {Rate: 1}}).Direction)
}

func TestDerivePeriod(t *testing.T) {
	assert.Equal(t, "2010-2012", DerivePeriod(yearSeries()))
	assert.Equal(t, "2010", DerivePeriod(yearSeries()[:1]))
	assert.Equal(t, "No data", DerivePeriod(nil))
}

func TestResolvePlaceholders(t *testing.T) {
	got := ResolvePlaceholders("Fuente: INEGI (EMAT, {period})", map[string]string{"period": "2010-2023"})
	assert.Equal(t, "Fuente: INEGI (EMAT, 2010-2023)", got)

	got = ResolvePlaceholders("Tasa nacional {year}: {rate} {missing}", map[string]string{"year": "2017", "rate": "1.2"})
	assert.Equal(t, "Tasa nacional 2017: 1.2", got)

	assert.Equal(t, "Fuente: INEGI (EMAT)", ResolvePlaceholders("Fuente: INEGI (EMAT, {period})", nil))
}
