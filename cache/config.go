package cache

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Default admission and eviction fractions. Batches at or above
// DefaultBatchBypassFraction of capacity are rejected wholesale; a vacuum
// removes the oldest DefaultEvictionFraction of entries.
const (
	DefaultBatchBypassFraction = 0.2
	DefaultEvictionFraction    = 1.0 / 3.0
)

// Config holds the constructor-time settings of a local cache tier.
// Instances treat it as immutable after construction.
type Config struct {
	// TTL is the maximum age an entry may have before reads treat it as
	// absent. Fractional-second precision is supported.
	TTL time.Duration

	// Capacity bounds the number of primary entries. Admitting at or past it
	// triggers a vacuum first.
	Capacity int

	// Enabled toggles the whole tier. When false reads report absent and
	// writes are no-ops; Clear still works.
	Enabled bool

	// BatchBypassFraction rejects any batch whose size is at least this
	// fraction of Capacity; bulk loads would churn the store for no reuse.
	BatchBypassFraction float64

	// EvictionFraction is the share of oldest entries a vacuum removes.
	EvictionFraction float64
}

// DefaultConfig returns the settings used for the raw local tier.
func DefaultConfig() Config {
	return Config{
		TTL:                 3 * time.Second,
		Capacity:            500,
		Enabled:             true,
		BatchBypassFraction: DefaultBatchBypassFraction,
		EvictionFraction:    DefaultEvictionFraction,
	}
}

// Validate checks whether the configuration values are usable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.BatchBypassFraction, validation.Required, validation.Min(0.0).Exclusive(), validation.Max(1.0)),
		validation.Field(&c.EvictionFraction, validation.Required, validation.Min(0.0).Exclusive(), validation.Max(1.0)),
	)
}

// AdapterConfig configures a backend-fronting cache tier. Item objects are
// larger than raw payloads and the call pattern differs, so TTL and capacity
// are parameterized independently from Config defaults.
type AdapterConfig struct {
	Config

	// ExcludePattern is a regular expression; keys matching it are never
	// admitted into the local tier on any path. Empty disables the filter.
	ExcludePattern string
}

// DefaultAdapterConfig returns the settings used for the backend-fronting tier.
func DefaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		Config: Config{
			TTL:                 10 * time.Second,
			Capacity:            200,
			Enabled:             true,
			BatchBypassFraction: DefaultBatchBypassFraction,
			EvictionFraction:    DefaultEvictionFraction,
		},
	}
}

// Validate checks the embedded Config and that ExcludePattern compiles.
// Pattern problems are configuration errors and must surface here, not on the
// read path.
func (c AdapterConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.ExcludePattern, validation.By(validPattern)),
	)
}

func validPattern(value any) error {
	pattern, _ := value.(string)
	if pattern == "" {
		return nil
	}
	_, err := regexp.Compile(pattern)
	return err
}

// BackendConfig configures the in-memory reference backend. It mirrors the
// sturdyc constructor parameters.
type BackendConfig struct {
	// Capacity is the maximum number of items the backend stores.
	Capacity int

	// NumShards controls sturdyc sharding for concurrent access.
	NumShards int

	// TTL is how long the backend keeps an item.
	TTL time.Duration

	// EvictionPercentage is what share of items sturdyc evicts at capacity,
	// between 1 and 100.
	EvictionPercentage int
}

// DefaultBackendConfig returns sensible defaults for the reference backend.
func DefaultBackendConfig() BackendConfig {
	return BackendConfig{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks whether the configuration values are usable.
func (c BackendConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
	)
}
