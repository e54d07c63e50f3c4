package engine

import "github.com/spektr-org/marriagestats/logger"

// ============================================================================
// ENGINE OPTIONS — Functional options for Aggregate()
// ============================================================================

// Option configures aggregation via functional options pattern.
type Option func(*config)

// Denominator returns the population for a group key.
type Denominator func(key string) (float64, bool)

// Labeler returns the display label for a group key.
type Labeler func(key string) (string, error)

type config struct {
	Population Denominator
	Labeler    Labeler
	BaseKeys   []string          // zero-filled primary keys
	SubKeys    []string          // zero-filled sub-group keys
	Domain     func(string) bool // pooled-count key domain
	Log        *logger.Logger
}

// WithPopulation joins a population per group and computes rates.
func WithPopulation(d Denominator) Option {
	return func(c *config) {
		c.Population = d
	}
}

// WithLabeler sets group display labels. A labeler error aborts aggregation.
func WithLabeler(l Labeler) Option {
	return func(c *config) {
		c.Labeler = l
	}
}

// WithBaseKeys guarantees a group (count 0 if empty) for every key.
func WithBaseKeys(keys []string) Option {
	return func(c *config) {
		c.BaseKeys = keys
	}
}

// WithSubKeys guarantees a sub-group for every key within each group.
func WithSubKeys(keys []string) Option {
	return func(c *config) {
		c.SubKeys = keys
	}
}

// WithDomain restricts pooled counts to keys accepted by valid.
func WithDomain(valid func(key string) bool) Option {
	return func(c *config) {
		c.Domain = valid
	}
}

// WithLogger routes engine diagnostics to l.
func WithLogger(l *logger.Logger) Option {
	return func(c *config) {
		c.Log = l
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		Labeler: func(key string) (string, error) { return key, nil },
		Log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
