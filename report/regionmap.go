package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spektr-org/marriagestats/config"
	"github.com/spektr-org/marriagestats/dataset"
	"github.com/spektr-org/marriagestats/engine"
	"github.com/spektr-org/marriagestats/region"
	"github.com/spektr-org/marriagestats/render"
	"github.com/spektr-org/marriagestats/schema"
)

var pairingColumns = []engine.SubColumn{
	{Key: dataset.MaleMale, Label: "♂-♂"},
	{Key: dataset.FemaleFemale, Label: "♀-♀"},
}

// RegionMap draws the same-sex marriage rate per region of registration for
// one year as a choropleth, ranks the regions in a two-panel table below it
// and stacks both into mapa_<year>.png.
func RegionMap(env *Env, spec config.Report) (string, error) {
	in := env.Config.Inputs
	pop, err := dataset.ReadPopulation(in.PopulationTotal)
	if err != nil {
		return "", err
	}
	boundaries, err := dataset.ReadBoundaries(in.Boundaries)
	if err != nil {
		return "", err
	}
	view, err := env.marriages()
	if err != nil {
		return "", err
	}

	groups, err := engine.Aggregate(view, engine.Query{
		Filter: engine.Filter{
			Dimensions: map[string][]string{dataset.KeyPairing: {dataset.MaleMale, dataset.FemaleFemale}},
		}.Where(dataset.Year(spec.Year)),
		GroupBy: []string{schema.KeyRegion, dataset.KeyPairing},
		SortBy:  engine.SortRateDesc,
	},
		engine.WithBaseKeys(region.Keys()),
		engine.WithSubKeys([]string{dataset.MaleMale, dataset.FemaleFemale}),
		engine.WithLabeler(region.NameOf),
		engine.WithPopulation(pop.RegionsInYear(spec.Year)),
		engine.WithLogger(env.Log),
	)
	if err != nil {
		return "", err
	}

	total := engine.TotalCount(groups)
	national, ok := pop.National(spec.Year)
	if !ok {
		return "", fmt.Errorf("%w for national total in %d", engine.ErrMissingPopulation, spec.Year)
	}
	nationalRate := engine.Rate(float64(total), national)
	if math.IsNaN(nationalRate) || math.IsInf(nationalRate, 0) {
		return "", fmt.Errorf("%w for national total in %d", engine.ErrNonFiniteRate, spec.Year)
	}

	domain, err := engine.ColorDomain(engine.Rates(groups))
	if err != nil {
		return "", err
	}

	year := strconv.Itoa(spec.Year)
	figure := engine.BuildMap(engine.MapSpec{
		Title:         fmt.Sprintf("Tasas de matrimonio igualitario en México durante el %d por entidad de registro", spec.Year),
		Subtitle:      fmt.Sprintf("Tasa nacional: %s (con %s registros)", engine.FormatNumber(nationalRate, 1), engine.FormatInt(total)),
		ColorbarTitle: rateAxis,
		Footer:        env.footer(map[string]string{"period": year, "year": year}, false),
	}, groups, domain)

	ranked := engine.BuildRankedTable("", "Entidad", groups, pairingColumns)
	half := (len(ranked.Rows) + 1) / 2

	// Intermediate images live in a scratch dir removed on every path.
	scratch, err := os.MkdirTemp(env.Config.OutputDir, "mapa-"+year+"-")
	if err != nil {
		return "", fmt.Errorf("scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			env.Log.Warn("scratch dir not removed", "path", scratch, "error", err)
		}
	}()

	mapPNG := filepath.Join(scratch, "1.png")
	tablePNG := filepath.Join(scratch, "2.png")
	if err := env.Maps.Render(figure, boundaries, mapPNG); err != nil {
		return "", err
	}
	if err := env.Tables.Render(tablePNG, ranked.Slice(0, half), ranked.Slice(half, len(ranked.Rows))); err != nil {
		return "", err
	}

	out := env.output(fmt.Sprintf("mapa_%d.png", spec.Year))
	if err := env.Stack(out, render.MapWidth, mapPNG, tablePNG); err != nil {
		return "", err
	}
	return out, nil
}
