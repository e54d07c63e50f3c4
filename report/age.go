package report

import (
	"math"

	"github.com/spektr-org/marriagestats/config"
	"github.com/spektr-org/marriagestats/dataset"
	"github.com/spektr-org/marriagestats/engine"
	"github.com/spektr-org/marriagestats/schema"
)

// ageParties selects whose age is averaged for one sex.
type ageParties struct {
	noun     string   // "hombres", "mujeres"
	opposite []string // measure of the party of this sex in (1,2) pairs
	same     string   // same-sex pairing key; both parties are pooled
	file     string
}

var ageBySex = map[string]ageParties{
	config.SexMen: {
		noun:     "hombres",
		opposite: []string{schema.KeyAge1},
		same:     dataset.MaleMale,
		file:     "edades_hombres.png",
	},
	config.SexWomen: {
		noun:     "mujeres",
		opposite: []string{schema.KeyAge2},
		same:     dataset.FemaleFemale,
		file:     "edades_mujeres.png",
	},
}

// Age charts the mean age at marriage per year of one sex, married to the
// opposite sex versus the same sex. Records with an unknown age on either
// party are excluded.
func Age(env *Env, spec config.Report) (string, error) {
	parties, ok := ageBySex[spec.Sex]
	if !ok {
		return "", errInvalidSex(spec.Sex)
	}
	view, err := env.marriages()
	if err != nil {
		return "", err
	}

	valid := filterOf(dataset.ValidAges())
	years := yearKeys(view, valid)

	mean := func(pairing string, measures []string) ([]engine.Group, error) {
		return engine.MeanByGroup(view, engine.Query{
			Filter:  valid.Where(dataset.Pairing(pairing)),
			GroupBy: []string{schema.KeyYear},
			SortBy:  engine.SortChronological,
		}, measures, engine.WithBaseKeys(years), engine.WithLogger(env.Log))
	}
	opposite, err := mean(dataset.MaleFemale, parties.opposite)
	if err != nil {
		return "", err
	}
	same, err := mean(parties.same, []string{schema.KeyAge1, schema.KeyAge2})
	if err != nil {
		return "", err
	}

	for _, series := range [][]engine.Group{opposite, same} {
		for _, g := range series {
			if g.Count == 0 {
				env.Log.Warn("no ages for year", "year", g.Key, "sex", spec.Sex)
			}
		}
	}

	empty := func(g engine.Group) bool { return g.Count == 0 }
	value := func(g engine.Group) float64 { return g.Value }
	text := func(g engine.Group) string { return engine.FormatNumber(g.Value, 1) }

	chart := engine.BuildChart(engine.ChartSpec{
		Type:   engine.ChartScatter,
		Title:  "Evolución de la edad promedio de " + parties.noun + " al momento de contraer matrimonio en México",
		YAxis:  "Edad promedio al momento de contraer matrimonio",
		YRange: ageRange(opposite, same),
		XPad:   0.6,
		Footer: env.footer(map[string]string{"period": engine.DerivePeriod(opposite)}, true),
	},
		engine.SeriesSpec{Name: "Matrimonio con pareja del sexo opuesto", Color: "#33691e", Groups: opposite, Value: value, Text: text, Skip: empty},
		engine.SeriesSpec{Name: "Matrimonio con pareja del mismo sexo", Color: "#1565c0", Groups: same, Value: value, Text: text, Skip: empty},
	)

	out := env.output(parties.file)
	if err := env.Charts.Render(chart, out); err != nil {
		return "", err
	}
	return out, nil
}

// ageRange spans the lowest opposite-sex mean and the highest same-sex mean
// with five years of margin. Empty series fall back to the other one.
func ageRange(opposite, same []engine.Group) *engine.Range {
	lo, _ := meanExtent(opposite)
	_, hi := meanExtent(same)
	if math.IsInf(lo, 1) {
		lo, _ = meanExtent(same)
	}
	if math.IsInf(hi, -1) {
		_, hi = meanExtent(opposite)
	}
	if math.IsInf(lo, 1) || math.IsInf(hi, -1) {
		return nil
	}
	return &engine.Range{Min: lo - 5, Max: hi + 5}
}

func meanExtent(groups []engine.Group) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, g := range groups {
		if g.Count == 0 {
			continue
		}
		lo = math.Min(lo, g.Value)
		hi = math.Max(hi, g.Value)
	}
	return lo, hi
}
