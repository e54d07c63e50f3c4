package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ============================================================================
// SCHEMA — Column contract of the input tables
// ============================================================================
// The loader uses a Config to locate columns by header name and to map them
// onto record dimensions (grouping/filter keys) and measures (numeric values).
// Extra columns in a file are ignored; missing required columns are fatal.
// ============================================================================

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing required column")

// Config describes the shape of one input table.
type Config struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Dimensions  []DimensionMeta `json:"dimensions"`
	Measures    []MeasureMeta   `json:"measures"`
}

// DimensionMeta describes a coded column used for grouping/filtering.
type DimensionMeta struct {
	Key         string `json:"key"`
	Column      string `json:"column"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
}

// MeasureMeta describes a numeric column.
type MeasureMeta struct {
	Key         string `json:"key"`
	Column      string `json:"column"`
	DisplayName string `json:"displayName"`
	Unit        string `json:"unit,omitempty"`
	// Sentinel marks an "unknown" value that must be excluded from statistics.
	Sentinel    float64 `json:"sentinel,omitempty"`
	HasSentinel bool    `json:"hasSentinel,omitempty"`
}

// Marriage record dimension and measure keys.
const (
	KeyYear       = "year"
	KeyRegion     = "region"
	KeySex1       = "sex1"
	KeySex2       = "sex2"
	KeyResidence1 = "residence1"
	KeyResidence2 = "residence2"
	KeyAge1       = "age1"
	KeyAge2       = "age2"
)

// UnknownAge is the age sentinel used by the registry.
const UnknownAge = 99

// Marriages is the contract of the marriage-record table.
var Marriages = Config{
	Name:        "Marriage records",
	Description: "One row per registered marriage",
	Dimensions: []DimensionMeta{
		{Key: KeyYear, Column: "ANIO_REGIS", DisplayName: "Registration year"},
		{Key: KeyRegion, Column: "ENT_REGIS", DisplayName: "Registration region"},
		{Key: KeySex1, Column: "SEXO_CON1", DisplayName: "Sex of party 1", Description: "1 = male, 2 = female"},
		{Key: KeySex2, Column: "SEXO_CON2", DisplayName: "Sex of party 2", Description: "1 = male, 2 = female"},
		{Key: KeyResidence1, Column: "ENTRH_CON1", DisplayName: "Residence region of party 1"},
		{Key: KeyResidence2, Column: "ENTRH_CON2", DisplayName: "Residence region of party 2"},
	},
	Measures: []MeasureMeta{
		{Key: KeyAge1, Column: "EDAD_CON1", DisplayName: "Age of party 1", Unit: "years", Sentinel: UnknownAge, HasSentinel: true},
		{Key: KeyAge2, Column: "EDAD_CON2", DisplayName: "Age of party 2", Unit: "years", Sentinel: UnknownAge, HasSentinel: true},
	},
}

// Columns returns every required header name, dimensions first.
func (c Config) Columns() []string {
	cols := make([]string, 0, len(c.Dimensions)+len(c.Measures))
	for _, d := range c.Dimensions {
		cols = append(cols, d.Column)
	}
	for _, m := range c.Measures {
		cols = append(cols, m.Column)
	}
	return cols
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// MeasureKeys returns all measure keys.
func (c Config) MeasureKeys() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}

// Index maps every required column to its position in headers.
// Header matching ignores case, surrounding spaces and a UTF-8 BOM.
func (c Config) Index(headers []string) (map[string]int, error) {
	pos := make(map[string]int, len(headers))
	for i, h := range headers {
		pos[NormalizeHeader(h)] = i
	}

	idx := make(map[string]int)
	var missing []string
	for _, col := range c.Columns() {
		i, ok := pos[NormalizeHeader(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

// NormalizeHeader canonicalises a header cell for matching.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToUpper(strings.TrimSpace(h))
}

// YearColumns parses the year headers of a population table. The first
// column holds region names and is skipped.
func YearColumns(headers []string) ([]int, error) {
	if len(headers) < 2 {
		return nil, fmt.Errorf("%w: population table needs a name column and at least one year", ErrMissingColumn)
	}
	years := make([]int, 0, len(headers)-1)
	for _, h := range headers[1:] {
		h = strings.TrimSpace(h)
		// "2017" or "2017.0" as written by spreadsheet exports
		f, err := strconv.ParseFloat(h, 64)
		if err != nil || f != float64(int(f)) {
			return nil, fmt.Errorf("invalid year column %q", h)
		}
		years = append(years, int(f))
	}
	return years, nil
}
