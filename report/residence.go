package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spektr-org/marriagestats/config"
	"github.com/spektr-org/marriagestats/dataset"
	"github.com/spektr-org/marriagestats/engine"
	"github.com/spektr-org/marriagestats/region"
	"github.com/spektr-org/marriagestats/schema"
)

// Residence prints where both parties of the same-sex marriages registered
// in one region and year live. Residence codes outside the region
// enumeration (abroad, unspecified) are left out of the shares, and the
// printed header says so.
func Residence(env *Env, spec config.Report) (string, error) {
	name, err := region.Name(spec.Region)
	if err != nil {
		return "", err
	}
	view, err := env.marriages()
	if err != nil {
		return "", err
	}

	res, err := engine.CountPooled(view,
		filterOf(dataset.Year(spec.Year), dataset.SameSex(), dataset.Region(spec.Region)),
		[]string{schema.KeyResidence1, schema.KeyResidence2},
		engine.WithDomain(dataset.RegionDomain),
		engine.WithLabeler(region.NameOf),
		engine.WithLogger(env.Log),
	)
	if err != nil {
		return "", err
	}

	table := engine.BuildShareTable(
		fmt.Sprintf("Residencia de los contrayentes del mismo sexo registrados en %s (%d)", name, spec.Year),
		"Entidad", res.Groups)

	if err := printTable(env, table, res); err != nil {
		return "", err
	}
	return "stdout", nil
}

func printTable(env *Env, t *engine.TableData, res *engine.PooledResult) error {
	fmt.Fprintln(env.Out, t.Title)
	fmt.Fprintf(env.Out, "Porcentajes sobre %s residencias en las entidades (excluye %s fuera de las entidades)\n",
		engine.FormatInt(res.Total), engine.FormatInt(res.Excluded))

	tw := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		labels[i] = c.Label
	}
	printRow(tw, labels)
	for _, row := range t.Rows {
		printRow(tw, row)
	}
	if t.Summary != nil {
		summary := make([]string, len(t.Columns))
		summary[0] = t.Summary.Label
		for i, c := range t.Columns[1:] {
			summary[i+1] = t.Summary.Values[c.Key]
		}
		printRow(tw, summary)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("print table: %w", err)
	}

	if res.Excluded > 0 {
		fmt.Fprintf(env.Out, "Fuera de las entidades: %s\n", engine.FormatInt(res.Excluded))
	}
	return nil
}

func printRow(w io.Writer, cells []string) {
	fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
}
