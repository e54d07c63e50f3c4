package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarriagesContract(t *testing.T) {
	cols := Marriages.Columns()
	assert.Equal(t, []string{
		"ANIO_REGIS", "ENT_REGIS", "SEXO_CON1", "SEXO_CON2",
		"ENTRH_CON1", "ENTRH_CON2", "EDAD_CON1", "EDAD_CON2",
	}, cols)
	assert.Equal(t, []string{KeyAge1, KeyAge2}, Marriages.MeasureKeys())
	assert.Contains(t, Marriages.DimensionKeys(), KeyRegion)

	for _, m := range Marriages.Measures {
		assert.True(t, m.HasSentinel, m.Key)
		assert.Equal(t, float64(UnknownAge), m.Sentinel, m.Key)
	}
}

func TestIndex(t *testing.T) {
	headers := []string{"\ufeffANIO_REGIS", "extra", "ent_regis ", "SEXO_CON1", "SEXO_CON2",
		"ENTRH_CON1", "ENTRH_CON2", "EDAD_CON1", "EDAD_CON2"}

	idx, err := Marriages.Index(headers)
	require.NoError(t, err)
	assert.Equal(t, 0, idx["ANIO_REGIS"])
	assert.Equal(t, 2, idx["ENT_REGIS"])
	assert.Equal(t, 8, idx["EDAD_CON2"])
}

func TestIndexMissingColumns(t *testing.T) {
	_, err := Marriages.Index([]string{"ANIO_REGIS", "ENT_REGIS"})
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "SEXO_CON1")
	assert.Contains(t, err.Error(), "EDAD_CON2")
}

func TestYearColumns(t *testing.T) {
	years, err := YearColumns([]string{"", "2010", " 2011 ", "2012.0"})
	require.NoError(t, err)
	assert.Equal(t, []int{2010, 2011, 2012}, years)

	_, err = YearColumns([]string{"Entidad"})
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = YearColumns([]string{"Entidad", "2010", "total"})
	assert.Error(t, err)

	_, err = YearColumns([]string{"Entidad", "2010.5"})
	assert.Error(t, err)
}
