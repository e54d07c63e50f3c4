package dataset

import (
	"strconv"

	"github.com/spektr-org/marriagestats/engine"
	"github.com/spektr-org/marriagestats/region"
	"github.com/spektr-org/marriagestats/schema"
)

// KeyPairing is the virtual dimension "<sex1>-<sex2>".
const KeyPairing = "pairing"

// Sex pairings.
var (
	MaleMale     = PairingKey(Male, Male)
	FemaleFemale = PairingKey(Female, Female)
	MaleFemale   = PairingKey(Male, Female)
)

// PairingKey returns the pairing dimension value of two sex codes.
func PairingKey(sex1, sex2 int) string {
	return strconv.Itoa(sex1) + "-" + strconv.Itoa(sex2)
}

var marriageAdapter = engine.NewDomainAdapter[Marriage]().
	Dimension(schema.KeyYear, func(m Marriage) string { return strconv.Itoa(m.Year) }).
	Dimension(schema.KeyRegion, func(m Marriage) string { return strconv.Itoa(m.Region) }).
	Dimension(schema.KeySex1, func(m Marriage) string { return strconv.Itoa(m.Sex1) }).
	Dimension(schema.KeySex2, func(m Marriage) string { return strconv.Itoa(m.Sex2) }).
	Dimension(KeyPairing, Marriage.Pairing).
	Dimension(schema.KeyResidence1, func(m Marriage) string { return strconv.Itoa(m.Residence1) }).
	Dimension(schema.KeyResidence2, func(m Marriage) string { return strconv.Itoa(m.Residence2) }).
	Measure(schema.KeyAge1, func(m Marriage) float64 { return float64(m.Age1) }).
	Measure(schema.KeyAge2, func(m Marriage) float64 { return float64(m.Age2) })

// View binds records to a zero-copy RecordView.
func View(records []Marriage) engine.RecordView {
	return marriageAdapter.Bind(records)
}

// ── Predicates ──────────────────────────────────────────────────────────

// SameSex keeps same-sex marriages (sex codes equal).
func SameSex() engine.Predicate {
	return engine.SameValue(schema.KeySex1, schema.KeySex2)
}

// OppositeSex keeps opposite-sex marriages (sex codes differ).
func OppositeSex() engine.Predicate {
	return engine.DifferentValue(schema.KeySex1, schema.KeySex2)
}

// Pairing keeps one sex pairing, e.g. MaleMale.
func Pairing(key string) engine.Predicate {
	return engine.Equals(KeyPairing, key)
}

// ValidAges drops records carrying the "unknown" sentinel of any measure
// in the marriage contract, i.e. an unknown age on either party.
func ValidAges() engine.Predicate {
	var preds []engine.Predicate
	for _, m := range schema.Marriages.Measures {
		if m.HasSentinel {
			preds = append(preds, engine.MeasureNot(m.Key, m.Sentinel))
		}
	}
	return engine.And(preds...)
}

// Year keeps records registered in year.
func Year(year int) engine.Predicate {
	return engine.Equals(schema.KeyYear, strconv.Itoa(year))
}

// Region keeps records registered in region code.
func Region(code int) engine.Predicate {
	return engine.Equals(schema.KeyRegion, strconv.Itoa(code))
}

// RegionDomain accepts dimension keys inside the region enumeration.
func RegionDomain(key string) bool {
	code, err := strconv.Atoi(key)
	return err == nil && region.Valid(code)
}
