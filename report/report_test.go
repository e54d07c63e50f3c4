package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/spektr-org/marriagestats/config"
	"github.com/spektr-org/marriagestats/dataset"
	"github.com/spektr-org/marriagestats/engine"
	"github.com/spektr-org/marriagestats/logger"
	"github.com/spektr-org/marriagestats/region"
	"github.com/spektr-org/marriagestats/render"
)

// ============================================================================
// FIXTURES
// ============================================================================

const marriagesCSV = `ANIO_REGIS,ENT_REGIS,SEXO_CON1,SEXO_CON2,ENTRH_CON1,ENTRH_CON2,EDAD_CON1,EDAD_CON2
2016,9,1,1,9,9,30,32
2016,9,2,2,9,15,28,99
2016,9,1,2,9,9,29,27
2017,9,1,1,9,15,31,33
2017,9,2,2,9,99,40,38
2017,15,2,2,15,15,25,26
2017,14,1,2,14,14,35,30
2017,9,1,2,9,9,30,28
`

const boundariesJSON = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"NOMGEO":"Ciudad de México"},"geometry":{"type":"Polygon","coordinates":[[[-99.3,19.1],[-98.9,19.1],[-98.9,19.6],[-99.3,19.6],[-99.3,19.1]]]}},
{"type":"Feature","properties":{"NOMGEO":"Jalisco"},"geometry":{"type":"Polygon","coordinates":[[[-105.7,19.0],[-101.5,19.0],[-101.5,22.8],[-105.7,22.8],[-105.7,19.0]]]}}
]}`

// populationCSV gives every region 100,000 adults in 2016 and 2017.
func populationCSV() string {
	var b strings.Builder
	b.WriteString("Entidad,2016,2017\n")
	b.WriteString("Nacional,\"3,200,000\",\"3,200,000\"\n")
	for _, name := range region.Names() {
		fmt.Fprintf(&b, "%s,100000,100000\n", name)
	}
	return b.String()
}

// ── Fake renderers ──────────────────────────────────────────────────────

type recorder struct {
	charts     map[string]*engine.ChartConfig
	maps       []*engine.MapConfig
	boundaries []*dataset.Boundaries
	tables     [][]*engine.TableData
	stacked    []string
	tableErr   error
}

func newRecorder() *recorder {
	return &recorder{charts: make(map[string]*engine.ChartConfig)}
}

func touch(path string) error {
	return os.WriteFile(path, []byte("png"), 0o644)
}

type fakeCharts struct{ r *recorder }

func (f fakeCharts) Render(cfg *engine.ChartConfig, path string) error {
	f.r.charts[filepath.Base(path)] = cfg
	return touch(path)
}

type fakeMaps struct{ r *recorder }

func (f fakeMaps) Render(cfg *engine.MapConfig, b *dataset.Boundaries, path string) error {
	f.r.maps = append(f.r.maps, cfg)
	f.r.boundaries = append(f.r.boundaries, b)
	return touch(path)
}

type fakeTables struct{ r *recorder }

func (f fakeTables) Render(path string, tables ...*engine.TableData) error {
	if f.r.tableErr != nil {
		return f.r.tableErr
	}
	f.r.tables = append(f.r.tables, tables)
	return touch(path)
}

func (r *recorder) stack(dst string, width int, parts ...string) error {
	for _, p := range parts {
		if _, err := os.Stat(p); err != nil {
			return err
		}
	}
	if width != render.MapWidth {
		return fmt.Errorf("unexpected width %d", width)
	}
	r.stacked = append(r.stacked, filepath.Base(dst))
	return touch(dst)
}

// ============================================================================
// SUITE
// ============================================================================

type ReportSuite struct {
	suite.Suite
	dir string
	cfg *config.Config
	rec *recorder
	out *bytes.Buffer
	env *Env
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportSuite))
}

func (s *ReportSuite) write(name, content string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (s *ReportSuite) SetupTest() {
	s.dir = s.T().TempDir()

	cfg, err := config.Default()
	s.Require().NoError(err)
	pop := populationCSV()
	cfg.Inputs = config.Inputs{
		Marriages:       s.write("data.csv", marriagesCSV),
		PopulationMen:   s.write("hombres.csv", pop),
		PopulationWomen: s.write("mujeres.csv", pop),
		PopulationTotal: s.write("total.csv", pop),
		Boundaries:      s.write("mexico.json", boundariesJSON),
	}
	cfg.OutputDir = filepath.Join(s.dir, "out")
	s.cfg = cfg

	s.rec = newRecorder()
	s.out = &bytes.Buffer{}
	s.env = &Env{
		Config: cfg,
		Log:    logger.Nop(),
		RunID:  "test",
		Charts: fakeCharts{s.rec},
		Maps:   fakeMaps{s.rec},
		Tables: fakeTables{s.rec},
		Stack:  s.rec.stack,
		Out:    s.out,
	}
}

func (s *ReportSuite) run(reports ...config.Report) error {
	return Run(s.env, reports)
}

// ── Trends ──────────────────────────────────────────────────────────────

func (s *ReportSuite) TestTrendByPairing() {
	s.Require().NoError(s.run(config.Report{Kind: config.KindTrendByPairing, YMax: 9}))

	chart := s.rec.charts["tendencia.png"]
	s.Require().NotNil(chart)
	s.Equal(engine.ChartBar, chart.ChartType)
	s.Require().Len(chart.Series, 2)
	s.Equal(&engine.Range{Min: 0, Max: 9}, chart.YRange)

	male := chart.Series[0]
	s.Require().Len(male.Data, 2)
	s.InDelta(0.03125, male.Data[0].Value, 1e-9)
	s.Equal("0.03\n(1)", male.Data[0].Text)

	female := chart.Series[1]
	s.Require().Len(female.Data, 2)
	s.InDelta(0.0625, female.Data[1].Value, 1e-9)

	s.Contains(chart.Notes, "Total de matrimonios entre hombres: 2")
	s.Contains(chart.Notes, "Total de matrimonios entre mujeres: 3")
	s.Contains(chart.Notes, "Total de matrimonios igualitarios: 5")
	s.Equal("Fuente: INEGI (EMAT, 2016-2017)", chart.Footer.Left)
	s.FileExists(filepath.Join(s.cfg.OutputDir, "tendencia.png"))
}

func (s *ReportSuite) TestTrendSameSex() {
	s.Require().NoError(s.run(config.Report{Kind: config.KindTrendSameSex}))

	chart := s.rec.charts["tendencia_mismo_sexo.png"]
	s.Require().NotNil(chart)
	s.Equal(engine.ChartLine, chart.ChartType)
	s.Contains(chart.Title, "(2016-2017)")
	s.Require().Len(chart.Series, 1)
	s.Equal("Total acumulado: 5 | Crecimiento de la tasa: 50%", chart.Series[0].Name)

	s.Require().NotNil(chart.YRange)
	s.InDelta(0.09375*1.17, chart.YRange.Max, 1e-9)
	s.Require().NotNil(chart.XRange)
	s.InDelta(2015.6, chart.XRange.Min, 1e-9)
	s.InDelta(2017.4, chart.XRange.Max, 1e-9)
}

func (s *ReportSuite) TestTrendOppositeSex() {
	s.Require().NoError(s.run(config.Report{Kind: config.KindTrendOppositeSex}))

	chart := s.rec.charts["tendencia_sexo_opuesto.png"]
	s.Require().NotNil(chart)
	s.Require().Len(chart.Series[0].Data, 2)
	s.InDelta(0.0625*1.12, chart.YRange.Max, 1e-9)
	s.Equal("Total acumulado: 3 | Crecimiento de la tasa: 100%", chart.Series[0].Name)
}

// ── Age ─────────────────────────────────────────────────────────────────

func (s *ReportSuite) TestAgeMen() {
	s.Require().NoError(s.run(config.Report{Kind: config.KindAge, Sex: config.SexMen}))

	chart := s.rec.charts["edades_hombres.png"]
	s.Require().NotNil(chart)
	s.Equal(engine.ChartScatter, chart.ChartType)
	s.Contains(chart.Title, "hombres")

	opposite, same := chart.Series[0], chart.Series[1]
	s.Require().Len(opposite.Data, 2)
	s.InDelta(29, opposite.Data[0].Value, 1e-9)
	s.InDelta(32.5, opposite.Data[1].Value, 1e-9)
	s.Equal("32.5", opposite.Data[1].Text)

	s.Require().Len(same.Data, 2)
	s.InDelta(31, same.Data[0].Value, 1e-9)
	s.InDelta(32, same.Data[1].Value, 1e-9)

	s.Equal(&engine.Range{Min: 24, Max: 37}, chart.YRange)
}

func (s *ReportSuite) TestAgeWomenSkipsEmptyYears() {
	s.Require().NoError(s.run(config.Report{Kind: config.KindAge, Sex: config.SexWomen}))

	chart := s.rec.charts["edades_mujeres.png"]
	s.Require().NotNil(chart)

	opposite, same := chart.Series[0], chart.Series[1]
	s.Require().Len(opposite.Data, 2)
	s.InDelta(27, opposite.Data[0].Value, 1e-9)
	s.InDelta(29, opposite.Data[1].Value, 1e-9)

	// 2016 has only an unknown-age female pair.
	s.Require().Len(same.Data, 1)
	s.Equal(2017.0, same.Data[0].X)
	s.InDelta(32.25, same.Data[0].Value, 1e-9)

	s.Require().NotNil(chart.YRange)
	s.InDelta(22, chart.YRange.Min, 1e-9)
	s.InDelta(37.25, chart.YRange.Max, 1e-9)
}

func (s *ReportSuite) TestAgeInvalidSex() {
	err := s.run(config.Report{Kind: config.KindAge, Sex: "other"})
	s.ErrorIs(err, config.ErrInvalidConfig)
}

// ── Region map ──────────────────────────────────────────────────────────

func (s *ReportSuite) TestRegionMap() {
	s.Require().NoError(s.run(config.Report{Kind: config.KindRegionMap, Year: 2017}))

	s.Require().Len(s.rec.maps, 1)
	m := s.rec.maps[0]
	s.Len(m.Values, region.Count)
	s.Equal(2.0, m.Values["Ciudad de México"])
	s.Equal(1.0, m.Values["Estado de México"])
	s.Equal(0.0, m.Values["Jalisco"])
	s.Equal("Tasa nacional: 0.1 (con 3 registros)", m.Subtitle)
	s.Contains(m.Title, "2017")
	s.Equal("Fuente: INEGI (EMAT, 2017)", m.Footer.Left)
	s.Len(s.rec.boundaries[0].Features, 2)

	s.Require().Len(s.rec.tables, 1)
	halves := s.rec.tables[0]
	s.Require().Len(halves, 2)
	s.Len(halves[0].Rows, 16)
	s.Len(halves[1].Rows, 16)
	s.Equal([]string{"Ciudad de México", "1", "1", "2", "2.00"}, halves[0].Rows[0])
	s.Equal([]string{"Estado de México", "0", "1", "1", "1.00"}, halves[0].Rows[1])

	s.Equal([]string{"mapa_2017.png"}, s.rec.stacked)
	s.FileExists(filepath.Join(s.cfg.OutputDir, "mapa_2017.png"))
	s.noScratch()
}

func (s *ReportSuite) TestRegionMapRemovesIntermediatesOnError() {
	s.rec.tableErr = errors.New("disk full")

	err := s.run(config.Report{Kind: config.KindRegionMap, Year: 2017})
	s.Require().Error(err)
	s.Contains(err.Error(), "region_map(2017)")
	s.Empty(s.rec.stacked)
	s.noScratch()
}

func (s *ReportSuite) TestRegionMapUnknownRegion() {
	s.cfg.Inputs.Marriages = s.write("bad.csv", marriagesCSV+"2017,40,1,1,9,9,30,30\n")

	err := s.run(config.Report{Kind: config.KindRegionMap, Year: 2017})
	s.ErrorIs(err, region.ErrUnknownRegion)
}

func (s *ReportSuite) TestRegionMapMissingYear() {
	err := s.run(config.Report{Kind: config.KindRegionMap, Year: 2020})
	s.ErrorIs(err, engine.ErrMissingPopulation)
}

func (s *ReportSuite) noScratch() {
	entries, err := os.ReadDir(s.cfg.OutputDir)
	s.Require().NoError(err)
	for _, e := range entries {
		s.False(strings.HasPrefix(e.Name(), "mapa-"), "leftover %s", e.Name())
	}
}

// ── Residence ───────────────────────────────────────────────────────────

func (s *ReportSuite) TestResidence() {
	s.Require().NoError(s.run(config.Report{Kind: config.KindResidence, Year: 2017, Region: 9}))

	out := s.out.String()
	s.Contains(out, "Ciudad de México")
	s.Contains(out, "66.67")
	s.Contains(out, "Estado de México")
	s.Contains(out, "33.33")
	s.Contains(out, "Porcentajes sobre 3 residencias en las entidades (excluye 1 fuera de las entidades)")
	s.Regexp(`\nTotal +3 +100\.00`, out)
	s.Contains(out, "Fuera de las entidades: 1")
	s.Less(strings.Index(out, "\nCiudad de México"), strings.Index(out, "\nEstado de México"))
	s.Greater(strings.Index(out, "\nCiudad de México"), 0)
}

// ── Run ─────────────────────────────────────────────────────────────────

func (s *ReportSuite) TestRunStopsAtFirstFailure() {
	s.cfg.Inputs.Marriages = filepath.Join(s.dir, "missing.csv")

	err := s.run(
		config.Report{Kind: config.KindTrendSameSex},
		config.Report{Kind: config.KindTrendOppositeSex},
	)
	s.ErrorIs(err, dataset.ErrMalformedInput)
	s.Contains(err.Error(), "trend_same_sex")
	s.Empty(s.rec.charts)
}

func (s *ReportSuite) TestRunMissingPopulationYear() {
	s.cfg.Inputs.Marriages = s.write("late.csv", marriagesCSV+"2018,9,1,1,9,9,30,30\n")

	err := s.run(config.Report{Kind: config.KindTrendSameSex})
	s.ErrorIs(err, engine.ErrMissingPopulation)
}

func (s *ReportSuite) TestRunUnknownKind() {
	err := s.run(config.Report{Kind: "pie"})
	s.ErrorIs(err, config.ErrInvalidConfig)
}

// ============================================================================
// END TO END
// ============================================================================

func TestRunWithRenderers(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	cfg, err := config.Default()
	require.NoError(t, err)
	pop := populationCSV()
	cfg.Inputs = config.Inputs{
		Marriages:       write("data.csv", marriagesCSV),
		PopulationMen:   write("hombres.csv", pop),
		PopulationWomen: write("mujeres.csv", pop),
		PopulationTotal: write("total.csv", pop),
		Boundaries:      write("mexico.json", boundariesJSON),
	}
	cfg.OutputDir = filepath.Join(dir, "out")

	var out bytes.Buffer
	env, err := NewEnv(cfg, logger.Nop(), "e2e", &out)
	require.NoError(t, err)

	require.NoError(t, Run(env, []config.Report{
		{Kind: config.KindTrendByPairing, YMax: 9},
		{Kind: config.KindAge, Sex: config.SexMen},
		{Kind: config.KindRegionMap, Year: 2017},
	}))

	chart, err := gg.LoadPNG(filepath.Join(cfg.OutputDir, "tendencia.png"))
	require.NoError(t, err)
	assert.Equal(t, render.ChartWidth, chart.Bounds().Dx())

	composite, err := gg.LoadPNG(filepath.Join(cfg.OutputDir, "mapa_2017.png"))
	require.NoError(t, err)
	assert.Equal(t, render.MapWidth, composite.Bounds().Dx())
	assert.Equal(t, render.MapHeight+render.TableHeight, composite.Bounds().Dy())

	assert.FileExists(t, filepath.Join(cfg.OutputDir, "edades_hombres.png"))
}

func TestNewEnvRejectsBadTheme(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Theme.Plot = "not-a-colour"

	_, err = NewEnv(cfg, logger.Nop(), "x", &bytes.Buffer{})
	assert.Error(t, err)
}
