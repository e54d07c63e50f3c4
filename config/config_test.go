package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Setenv(EnvPath, "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.LogMode)
	assert.Equal(t, "./data.csv", cfg.Inputs.Marriages)
	assert.Equal(t, "#232D3F", cfg.Theme.Paper)
	require.Len(t, cfg.Reports, 9)

	kinds := make([]string, len(cfg.Reports))
	for i, r := range cfg.Reports {
		kinds[i] = r.String()
	}
	assert.Equal(t, []string{
		"trend_by_pairing",
		"trend_same_sex",
		"trend_opposite_sex",
		"age(men)",
		"age(women)",
		"region_map(2010)",
		"region_map(2017)",
		"region_map(2023)",
		"residence(2017, 9)",
	}, kinds)
	assert.Equal(t, 9.0, cfg.Reports[0].YMax)
	assert.Len(t, cfg.Only(KindRegionMap), 3)
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output_dir: out
inputs:
  marriages: /data/emat.csv
reports:
  - kind: residence
    year: 2020
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "/data/emat.csv", cfg.Inputs.Marriages)
	assert.Equal(t, "./assets/mexico.json", cfg.Inputs.Boundaries)
	require.Len(t, cfg.Reports, 1)
	assert.Equal(t, DefaultResidenceRegion, cfg.Reports[0].Region)
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_mode: production\n"), 0o644))
	t.Setenv(EnvPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.LogMode)
	assert.Len(t, cfg.Reports, 9)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	dir := t.TempDir()
	write := func(body string) string {
		p := filepath.Join(dir, "c.yaml")
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	_, err = Load(write("reports: [{kind: pie}]"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(write("reports: [{kind: age, sex: other}]"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(write("reports: [{kind: region_map}]"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(write("reports: [{kind: residence, year: 2017, region: 40}]"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(write("reports: {"))
	assert.Error(t, err)
}
