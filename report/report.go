package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spektr-org/marriagestats/config"
	"github.com/spektr-org/marriagestats/dataset"
	"github.com/spektr-org/marriagestats/engine"
	"github.com/spektr-org/marriagestats/logger"
	"github.com/spektr-org/marriagestats/render"
	"github.com/spektr-org/marriagestats/schema"
)

// ============================================================================
// REPORT DRIVERS — One pipeline per report kind
// ============================================================================
// Every driver loads its own inputs, aggregates through the engine, builds a
// declarative figure and hands it to a renderer. Drivers share nothing but
// the Env; a failure aborts the run.
// ============================================================================

// ChartRenderer draws a chart description to a PNG file.
type ChartRenderer interface {
	Render(cfg *engine.ChartConfig, path string) error
}

// MapRenderer draws a choropleth to a PNG file.
type MapRenderer interface {
	Render(cfg *engine.MapConfig, boundaries *dataset.Boundaries, path string) error
}

// TableRenderer draws tables side by side to a PNG file.
type TableRenderer interface {
	Render(path string, tables ...*engine.TableData) error
}

// Compositor stacks PNG files vertically into dst at the given width.
type Compositor func(dst string, width int, parts ...string) error

// Env is what every driver runs against.
type Env struct {
	Config *config.Config
	Log    *logger.Logger
	RunID  string
	Charts ChartRenderer
	Maps   MapRenderer
	Tables TableRenderer
	Stack  Compositor
	Out    io.Writer // console reports
}

// NewEnv wires the gonum/gg renderers configured by cfg.
func NewEnv(cfg *config.Config, log *logger.Logger, runID string, out io.Writer) (*Env, error) {
	theme, err := render.NewTheme(cfg.Theme.Plot, cfg.Theme.Paper, cfg.Theme.Header)
	if err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	fonts, err := render.LoadFonts(cfg.Font)
	if err != nil {
		return nil, fmt.Errorf("fonts: %w", err)
	}
	return &Env{
		Config: cfg,
		Log:    log,
		RunID:  runID,
		Charts: render.NewChartRenderer(theme, fonts),
		Maps:   render.NewMapRenderer(theme, fonts),
		Tables: render.NewTableRenderer(theme, fonts),
		Stack:  render.Stack,
		Out:    out,
	}, nil
}

// Driver runs one report and returns where its output went.
type Driver func(env *Env, spec config.Report) (string, error)

var drivers = map[string]Driver{
	config.KindTrendByPairing:   TrendByPairing,
	config.KindTrendSameSex:     TrendSameSex,
	config.KindTrendOppositeSex: TrendOppositeSex,
	config.KindAge:              Age,
	config.KindRegionMap:        RegionMap,
	config.KindResidence:        Residence,
}

// Run executes reports in order and stops at the first failure.
func Run(env *Env, reports []config.Report) error {
	if err := os.MkdirAll(env.Config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}

	for _, spec := range reports {
		drive, ok := drivers[spec.Kind]
		if !ok {
			return fmt.Errorf("%w: unknown kind %q", config.ErrInvalidConfig, spec.Kind)
		}

		log := env.Log.With("report", spec.String(), "run_id", env.RunID)
		if spec.Year > 0 {
			log = log.With("year", spec.Year)
		}
		log.Info("report started")
		start := time.Now()

		output, err := drive(env, spec)
		if err != nil {
			log.Error("report failed", "error", err)
			return fmt.Errorf("%s: %w", spec, err)
		}
		log.Info("report finished", "output", output, "duration", time.Since(start))
	}
	return nil
}

// ── Helpers ─────────────────────────────────────────────────────────────

func (e *Env) output(name string) string {
	return filepath.Join(e.Config.OutputDir, name)
}

// footer resolves the caption templates. values fills {period} and {year}.
func (e *Env) footer(values map[string]string, center bool) engine.Footer {
	f := engine.Footer{
		Left:  engine.ResolvePlaceholders(e.Config.Footer.Source, values),
		Right: e.Config.Footer.Credit,
	}
	if center {
		f.Center = e.Config.Footer.Caption
	}
	return f
}

func (e *Env) marriages() (engine.RecordView, error) {
	records, err := dataset.ReadMarriages(e.Config.Inputs.Marriages)
	if err != nil {
		return nil, err
	}
	e.Log.Debug("marriages loaded", "path", e.Config.Inputs.Marriages, "records", len(records))
	return dataset.View(records), nil
}

// yearKeys returns the registration years present after filter, ascending.
func yearKeys(view engine.RecordView, filter engine.Filter) []string {
	keys := engine.UniqueValues(engine.ApplyFilters(view, filter), schema.KeyYear)
	sort.SliceStable(keys, func(i, j int) bool {
		a, _ := engine.KeyNumber(keys[i])
		b, _ := engine.KeyNumber(keys[j])
		return a < b
	})
	return keys
}

func filterOf(preds ...engine.Predicate) engine.Filter {
	return engine.Filter{Predicates: preds}
}

func errInvalidSex(sex string) error {
	return fmt.Errorf("%w: sex %q", config.ErrInvalidConfig, sex)
}
