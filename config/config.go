package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/marriagestats/region"
)

// ============================================================================
// CONFIG — Run configuration
// ============================================================================
// The embedded default reproduces the published report sequence. A user
// file is decoded on top of it: fields it sets win, the rest keep defaults.
// ============================================================================

// EnvPath names an alternative config file when no path is given.
const EnvPath = "MARRIAGESTATS_CONFIG"

//go:embed default.yaml
var defaultYAML []byte

// ErrInvalidConfig is returned when validation fails.
var ErrInvalidConfig = errors.New("invalid config")

// Report kinds.
const (
	KindTrendByPairing   = "trend_by_pairing"
	KindTrendSameSex     = "trend_same_sex"
	KindTrendOppositeSex = "trend_opposite_sex"
	KindAge              = "age"
	KindRegionMap        = "region_map"
	KindResidence        = "residence"
)

// Sexes accepted by the age report.
const (
	SexMen   = "men"
	SexWomen = "women"
)

// DefaultResidenceRegion is the registration region of the residence report.
const DefaultResidenceRegion = 9

// Config is the full run configuration.
type Config struct {
	LogMode   string   `yaml:"log_mode"`
	OutputDir string   `yaml:"output_dir"`
	Font      string   `yaml:"font"`
	Inputs    Inputs   `yaml:"inputs"`
	Theme     Theme    `yaml:"theme"`
	Footer    Footer   `yaml:"footer"`
	Reports   []Report `yaml:"reports"`
}

// Inputs are the paths of the input files.
type Inputs struct {
	Marriages       string `yaml:"marriages"`
	PopulationMen   string `yaml:"population_men"`
	PopulationWomen string `yaml:"population_women"`
	PopulationTotal string `yaml:"population_total"`
	Boundaries      string `yaml:"boundaries"`
}

// Theme holds hex colours.
type Theme struct {
	Plot   string `yaml:"plot"`
	Paper  string `yaml:"paper"`
	Header string `yaml:"header"`
}

// Footer holds the caption templates under every figure. Source may use
// {period} and {year}.
type Footer struct {
	Source  string `yaml:"source"`
	Caption string `yaml:"caption"`
	Credit  string `yaml:"credit"`
}

// Report is one entry of the run list.
type Report struct {
	Kind   string  `yaml:"kind"`
	Year   int     `yaml:"year,omitempty"`
	Sex    string  `yaml:"sex,omitempty"`
	Region int     `yaml:"region,omitempty"`
	YMax   float64 `yaml:"y_max,omitempty"`
}

// String names the report in logs, e.g. "region_map(2017)".
func (r Report) String() string {
	switch r.Kind {
	case KindAge:
		return fmt.Sprintf("%s(%s)", r.Kind, r.Sex)
	case KindRegionMap:
		return fmt.Sprintf("%s(%d)", r.Kind, r.Year)
	case KindResidence:
		return fmt.Sprintf("%s(%d, %d)", r.Kind, r.Year, r.Region)
	default:
		return r.Kind
	}
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultYAML, cfg); err != nil {
		return nil, fmt.Errorf("decode default config: %w", err)
	}
	return cfg, nil
}

// Load decodes path (or $MARRIAGESTATS_CONFIG when path is empty) over the
// defaults and validates the result. With neither set it returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvPath))
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := Decode(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode overlays YAML data on cfg. A reports list in data replaces the
// default list.
func Decode(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// Validate checks report kinds and their parameters, filling defaults.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	for i := range c.Reports {
		r := &c.Reports[i]
		r.Kind = strings.TrimSpace(r.Kind)
		switch r.Kind {
		case KindTrendByPairing, KindTrendSameSex, KindTrendOppositeSex:
		case KindAge:
			if r.Sex != SexMen && r.Sex != SexWomen {
				return fmt.Errorf("%w: report %d: sex must be %q or %q, got %q", ErrInvalidConfig, i, SexMen, SexWomen, r.Sex)
			}
		case KindRegionMap:
			if r.Year <= 0 {
				return fmt.Errorf("%w: report %d: %s needs a year", ErrInvalidConfig, i, r.Kind)
			}
		case KindResidence:
			if r.Year <= 0 {
				return fmt.Errorf("%w: report %d: %s needs a year", ErrInvalidConfig, i, r.Kind)
			}
			if r.Region == 0 {
				r.Region = DefaultResidenceRegion
			}
			if !region.Valid(r.Region) {
				return fmt.Errorf("%w: report %d: %v", ErrInvalidConfig, i, region.ErrUnknownRegion)
			}
		default:
			return fmt.Errorf("%w: report %d: unknown kind %q", ErrInvalidConfig, i, r.Kind)
		}
	}
	return nil
}

// Only returns the reports of one kind, in run order.
func (c *Config) Only(kind string) []Report {
	var out []Report
	for _, r := range c.Reports {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
