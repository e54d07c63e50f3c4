package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spektr-org/marriagestats/schema"
)

// ============================================================================
// DATASET LOADER — Marriage records, population tables, boundaries
// ============================================================================
// Files are read whole into immutable in-memory tables. Every failure is
// wrapped in ErrMalformedInput and names the file (and line, when known).
// ============================================================================

// ErrMalformedInput is returned for missing files, missing columns and
// values that cannot be coerced.
var ErrMalformedInput = errors.New("malformed input")

// Sex codes used by SEXO_CON1/SEXO_CON2.
const (
	Male   = 1
	Female = 2
)

// Marriage is one registered marriage.
type Marriage struct {
	Year       int
	Region     int
	Sex1       int
	Sex2       int
	Residence1 int
	Residence2 int
	Age1       int
	Age2       int
}

// SameSex reports whether both parties share a sex code.
func (m Marriage) SameSex() bool { return m.Sex1 == m.Sex2 }

// Pairing returns the sex pairing key, e.g. "1-1".
func (m Marriage) Pairing() string {
	return PairingKey(m.Sex1, m.Sex2)
}

// ReadMarriages loads the marriage table from a CSV file.
func ReadMarriages(path string) ([]Marriage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	defer f.Close()
	return ParseMarriages(f, path)
}

// ParseMarriages parses marriage rows from r. source names the input in
// error messages. Columns are located by header; extra columns are ignored.
func ParseMarriages(r io.Reader, source string) ([]Marriage, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read headers: %v", ErrMalformedInput, source, err)
	}
	idx, err := schema.Marriages.Index(headers)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, source, err)
	}

	// Column order matches the Marriage fields.
	cols := schema.Marriages.Columns()

	var records []Marriage
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, source, err)
		}
		line, _ := reader.FieldPos(0)

		var vals [8]int
		for i, col := range cols {
			j := idx[col]
			if j >= len(row) {
				return nil, fmt.Errorf("%w: %s:%d: missing %s", ErrMalformedInput, source, line, col)
			}
			v, err := parseCode(row[j])
			if err != nil {
				return nil, fmt.Errorf("%w: %s:%d: %s: %v", ErrMalformedInput, source, line, col, err)
			}
			vals[i] = v
		}

		records = append(records, Marriage{
			Year:       vals[0],
			Region:     vals[1],
			Sex1:       vals[2],
			Sex2:       vals[3],
			Residence1: vals[4],
			Residence2: vals[5],
			Age1:       vals[6],
			Age2:       vals[7],
		})
	}
	return records, nil
}

// parseCode coerces an integer cell. Spreadsheet exports write "9.0".
func parseCode(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}
