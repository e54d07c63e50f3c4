package report

import (
	"fmt"

	"github.com/spektr-org/marriagestats/config"
	"github.com/spektr-org/marriagestats/dataset"
	"github.com/spektr-org/marriagestats/engine"
	"github.com/spektr-org/marriagestats/schema"
)

// ============================================================================
// TREND REPORTS — Rates per registration year
// ============================================================================

const rateAxis = "Tasa por cada 100,000 habitantes mayores de edad"

// TrendByPairing compares male-male and female-female rates per year, each
// over the adult population of its own sex.
func TrendByPairing(env *Env, spec config.Report) (string, error) {
	in := env.Config.Inputs
	men, err := dataset.ReadPopulation(in.PopulationMen)
	if err != nil {
		return "", err
	}
	women, err := dataset.ReadPopulation(in.PopulationWomen)
	if err != nil {
		return "", err
	}
	view, err := env.marriages()
	if err != nil {
		return "", err
	}

	sameSex := filterOf(dataset.SameSex())
	years := yearKeys(view, sameSex)

	series := func(pairing string, pop *dataset.PopulationTable) ([]engine.Group, error) {
		return engine.Aggregate(view, engine.Query{
			Filter:  sameSex.Where(dataset.Pairing(pairing)),
			GroupBy: []string{schema.KeyYear},
			SortBy:  engine.SortChronological,
		},
			engine.WithBaseKeys(years),
			engine.WithPopulation(pop.NationalByYear()),
			engine.WithLogger(env.Log),
		)
	}
	male, err := series(dataset.MaleMale, men)
	if err != nil {
		return "", fmt.Errorf("male-male: %w", err)
	}
	female, err := series(dataset.FemaleFemale, women)
	if err != nil {
		return "", fmt.Errorf("female-female: %w", err)
	}

	text := func(g engine.Group) string { return engine.RateText(g, engine.PlainCountLabel) }
	period := engine.DerivePeriod(male)

	var yRange *engine.Range
	if spec.YMax > 0 {
		yRange = &engine.Range{Min: 0, Max: spec.YMax}
	}

	chart := engine.BuildChart(engine.ChartSpec{
		Type:   engine.ChartBar,
		Title:  "Evolución de las tasas de matrimonio igualitario en México según tipo de contrayentes",
		YAxis:  rateAxis,
		YRange: yRange,
		Notes: []string{
			"Notas:",
			"Las tasas se calcularon con la población estimada de",
			"hombres y mujeres mayores de edad para cada año.",
			"",
			"Total de matrimonios entre hombres: " + engine.FormatInt(engine.TotalCount(male)),
			"Total de matrimonios entre mujeres: " + engine.FormatInt(engine.TotalCount(female)),
			"Total de matrimonios igualitarios: " + engine.FormatInt(engine.ApplyFilters(view, sameSex).Len()),
		},
		Footer: env.footer(map[string]string{"period": period}, true),
	},
		engine.SeriesSpec{Name: "Matrimonios entre hombres", Color: "#009688", Groups: male, Text: text},
		engine.SeriesSpec{Name: "Matrimonios entre mujeres", Color: "#ffa726", Groups: female, Text: text},
	)

	out := env.output("tendencia.png")
	if err := env.Charts.Render(chart, out); err != nil {
		return "", err
	}
	return out, nil
}

// trendSeries configures a single-series trend chart.
type trendSeries struct {
	filter   engine.Predicate
	subject  string // "del mismo sexo", "del sexo opuesto"
	style    engine.LabelStyle
	headroom float64 // y max = max rate × headroom
	xPad     float64
	color    string
	file     string
}

// TrendSameSex charts the same-sex marriage rate over the total adult
// population.
func TrendSameSex(env *Env, spec config.Report) (string, error) {
	return trend(env, spec, trendSeries{
		filter:   dataset.SameSex(),
		subject:  "del mismo sexo",
		style:    engine.SmallSeriesLabel,
		headroom: 1.17,
		xPad:     0.4,
		color:    "#c6ff00",
		file:     "tendencia_mismo_sexo.png",
	})
}

// TrendOppositeSex charts the opposite-sex marriage rate over the total
// adult population.
func TrendOppositeSex(env *Env, spec config.Report) (string, error) {
	return trend(env, spec, trendSeries{
		filter:   dataset.OppositeSex(),
		subject:  "del sexo opuesto",
		style:    engine.LargeSeriesLabel,
		headroom: 1.12,
		xPad:     0.5,
		color:    "#69caff",
		file:     "tendencia_sexo_opuesto.png",
	})
}

func trend(env *Env, spec config.Report, ts trendSeries) (string, error) {
	pop, err := dataset.ReadPopulation(env.Config.Inputs.PopulationTotal)
	if err != nil {
		return "", err
	}
	view, err := env.marriages()
	if err != nil {
		return "", err
	}

	filter := filterOf(ts.filter)
	groups, err := engine.Aggregate(view, engine.Query{
		Filter:  filter,
		GroupBy: []string{schema.KeyYear},
		SortBy:  engine.SortChronological,
	},
		engine.WithBaseKeys(yearKeys(view, filter)),
		engine.WithPopulation(pop.NationalByYear()),
		engine.WithLogger(env.Log),
	)
	if err != nil {
		return "", err
	}

	growth := engine.BuildGrowth(groups)
	change := engine.NoChange
	if growth.Direction != "insufficient data" {
		change = engine.FormatNumber(growth.ChangePercent, 0) + "%"
	}
	period := engine.DerivePeriod(groups)

	chart := engine.BuildChart(engine.ChartSpec{
		Type:   engine.ChartLine,
		Title:  fmt.Sprintf("Evolución de la tasa de matrimonio entre parejas %s en México (%s)", ts.subject, period),
		YAxis:  rateAxis,
		XPad:   ts.xPad,
		Footer: env.footer(map[string]string{"period": period}, true),
	}, engine.SeriesSpec{
		Name:   fmt.Sprintf("Total acumulado: %s | Crecimiento de la tasa: %s", engine.FormatInt(growth.Total), change),
		Color:  ts.color,
		Groups: groups,
		Text:   func(g engine.Group) string { return engine.RateText(g, ts.style) },
	})

	switch {
	case spec.YMax > 0:
		chart.YRange = &engine.Range{Min: 0, Max: spec.YMax}
	case chart.MaxValue() > 0:
		chart.YRange = &engine.Range{Min: 0, Max: chart.MaxValue() * ts.headroom}
	}

	out := env.output(ts.file)
	if err := env.Charts.Render(chart, out); err != nil {
		return "", err
	}
	return out, nil
}
