package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spektr-org/marriagestats/engine"
	"github.com/spektr-org/marriagestats/region"
	"github.com/spektr-org/marriagestats/schema"
)

// PopulationTable is an adult population estimate by region and year.
// The first row is the national total. Region names are normalised with
// region.Normalize so they join with the enumeration and the boundaries.
type PopulationTable struct {
	Source  string
	Years   []int
	Names   []string
	values  [][]float64
	byName  map[string]int
	yearCol map[int]int
}

// ReadPopulation loads a population table from a CSV file.
func ReadPopulation(path string) (*PopulationTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	defer f.Close()
	return ParsePopulation(f, path)
}

// ParsePopulation parses a population table from r.
func ParsePopulation(r io.Reader, source string) (*PopulationTable, error) {
	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read headers: %v", ErrMalformedInput, source, err)
	}
	years, err := schema.YearColumns(headers)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, source, err)
	}

	t := &PopulationTable{
		Source:  source,
		Years:   years,
		byName:  make(map[string]int),
		yearCol: make(map[int]int, len(years)),
	}
	for i, y := range years {
		t.yearCol[y] = i
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, source, err)
		}
		line, _ := reader.FieldPos(0)

		name := region.Normalize(row[0])
		vals := make([]float64, len(years))
		for i := range years {
			if i+1 >= len(row) {
				return nil, fmt.Errorf("%w: %s:%d: missing value for %d", ErrMalformedInput, source, line, years[i])
			}
			v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[i+1]), ",", ""), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s:%d: %s %d: %v", ErrMalformedInput, source, line, name, years[i], err)
			}
			vals[i] = v
		}

		if _, dup := t.byName[name]; !dup {
			t.byName[name] = len(t.Names)
		}
		t.Names = append(t.Names, name)
		t.values = append(t.values, vals)
	}

	if len(t.values) == 0 {
		return nil, fmt.Errorf("%w: %s: no rows", ErrMalformedInput, source)
	}
	return t, nil
}

// National returns the national population of a year.
func (t *PopulationTable) National(year int) (float64, bool) {
	col, ok := t.yearCol[year]
	if !ok {
		return 0, false
	}
	return t.values[0][col], true
}

// Region returns the population of a named region in a year.
func (t *PopulationTable) Region(name string, year int) (float64, bool) {
	row, ok := t.byName[region.Normalize(name)]
	if !ok || row == 0 {
		return 0, false
	}
	col, ok := t.yearCol[year]
	if !ok {
		return 0, false
	}
	return t.values[row][col], true
}

// NationalByYear is a denominator keyed by year ("2017").
func (t *PopulationTable) NationalByYear() engine.Denominator {
	return func(key string) (float64, bool) {
		year, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return 0, false
		}
		return t.National(year)
	}
}

// RegionsInYear is a denominator keyed by region code ("9") for one year.
func (t *PopulationTable) RegionsInYear(year int) engine.Denominator {
	return func(key string) (float64, bool) {
		name, err := region.NameOf(key)
		if err != nil {
			return 0, false
		}
		return t.Region(name, year)
	}
}
