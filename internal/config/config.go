// Package config provides configuration loading for beringia.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/beringia/internal/fauna"
	"github.com/talgya/beringia/internal/flora"
	"github.com/talgya/beringia/internal/locale"
	"github.com/talgya/beringia/internal/logging"
	"github.com/talgya/beringia/internal/region"
	"github.com/talgya/beringia/internal/weather"
	"github.com/talgya/beringia/internal/world"
)

// Config contains all beringia configuration settings.
type Config struct {
	Region RegionConfig `json:"region" yaml:"region"`

	// Succession overrides rows of the default succession table.
	Succession []StateConfig `json:"succession,omitempty" yaml:"succession,omitempty"`

	Erosion ErosionConfig `json:"erosion" yaml:"erosion"`
	Terrain TerrainConfig `json:"terrain" yaml:"terrain"`

	// Flora and Fauna are placed on every interior locale.
	Flora []FloraConfig `json:"flora,omitempty" yaml:"flora,omitempty"`
	Fauna []FaunaConfig `json:"fauna,omitempty" yaml:"fauna,omitempty"`

	Weather WeatherConfig `json:"weather" yaml:"weather"`
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	API     APIConfig     `json:"api" yaml:"api"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// RegionConfig selects the lattice and the random seed.
type RegionConfig struct {
	// Topology is "grid", "hex" or "tri".
	Topology string `json:"topology" yaml:"topology"`
	Width    int    `json:"width" yaml:"width"`
	Height   int    `json:"height" yaml:"height"`

	// Border attaches inert border locales around the lattice.
	Border bool `json:"border" yaml:"border"`

	// Seed drives every random draw. 0 uses crypto randomness and makes the
	// run unrepeatable.
	Seed int64 `json:"seed" yaml:"seed"`
}

// StateConfig replaces one row of the succession table.
type StateConfig struct {
	State             int `json:"state" yaml:"state"`
	locale.Transition `yaml:",inline"`
}

// ErosionConfig tunes the per-tick erosion pass.
type ErosionConfig struct {
	Magnitude float64 `json:"magnitude" yaml:"magnitude"`
	Rate      float64 `json:"rate" yaml:"rate"`
}

// TerrainConfig controls the initial noise elevation field.
type TerrainConfig struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	Mean        float64 `json:"mean" yaml:"mean"`
	Amplitude   float64 `json:"amplitude" yaml:"amplitude"`
	Frequency   float64 `json:"frequency" yaml:"frequency"`
	Octaves     int     `json:"octaves" yaml:"octaves"`
	Persistence float64 `json:"persistence" yaml:"persistence"`
}

// FloraConfig describes a plant population placed on every locale.
// Nil niche fields keep the flora defaults.
type FloraConfig struct {
	Kind               string   `json:"kind" yaml:"kind"`
	Population         float64  `json:"population" yaml:"population"`
	GrowthRate         float64  `json:"growth_rate" yaml:"growth_rate"`
	MoisturePreference *float64 `json:"moisture_preference,omitempty" yaml:"moisture_preference,omitempty"`
	MoistureTolerance  *float64 `json:"moisture_tolerance,omitempty" yaml:"moisture_tolerance,omitempty"`
}

// FaunaConfig describes an animal population placed on every locale.
type FaunaConfig struct {
	Name       string        `json:"name" yaml:"name"`
	Variant    string        `json:"variant" yaml:"variant"`
	Population float64       `json:"population" yaml:"population"`
	Prey       string        `json:"prey,omitempty" yaml:"prey,omitempty"`
	Rates      RatesOverride `json:"rates,omitempty" yaml:"rates,omitempty"`
}

// RatesOverride replaces individual default rates of a fauna variant.
type RatesOverride struct {
	Reproduction *float64 `json:"reproduction,omitempty" yaml:"reproduction,omitempty"`
	Starvation   *float64 `json:"starvation,omitempty" yaml:"starvation,omitempty"`
	Feeding      *float64 `json:"feeding,omitempty" yaml:"feeding,omitempty"`
	AmbientDeath *float64 `json:"ambient_death,omitempty" yaml:"ambient_death,omitempty"`
	Fallout      *float64 `json:"fallout,omitempty" yaml:"fallout,omitempty"`
}

// WeatherConfig enables and tunes the precipitation model.
type WeatherConfig struct {
	Enabled        bool `json:"enabled" yaml:"enabled"`
	weather.Config `yaml:",inline"`
}

// EngineConfig controls how the engine drives the region.
type EngineConfig struct {
	Ticks       uint64        `json:"ticks" yaml:"ticks"`               // 0 runs until interrupted
	ReportEvery uint64        `json:"report_every" yaml:"report_every"` // ticks between reports
	Interval    time.Duration `json:"interval" yaml:"interval"`         // pacing; 0 runs flat out
	Biota       bool          `json:"biota" yaml:"biota"`               // run the flora/fauna pass
}

// StorageConfig locates the run history database. Empty disables storage.
type StorageConfig struct {
	Path string `json:"path" yaml:"path"`
}

// APIConfig configures the observer HTTP API. Port 0 disables it.
type APIConfig struct {
	Port int `json:"port" yaml:"port"`
}

// LoggingConfig configures operational logging.
type LoggingConfig struct {
	// Level is "debug", "info" (default), "warn" or "error".
	Level string `json:"level" yaml:"level"`
	// Format is "text" (default) or "json".
	Format string `json:"format" yaml:"format"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	gen := world.DefaultGenConfig()
	return &Config{
		Region: RegionConfig{
			Topology: string(world.KindGrid),
			Width:    20,
			Height:   20,
			Border:   true,
			Seed:     42,
		},
		Erosion: ErosionConfig{
			Magnitude: region.DefaultMagnitude,
			Rate:      region.DefaultRate,
		},
		Terrain: TerrainConfig{
			Enabled:     true,
			Mean:        gen.Mean,
			Amplitude:   gen.Amplitude,
			Frequency:   gen.Frequency,
			Octaves:     gen.Octaves,
			Persistence: gen.Persistence,
		},
		Flora: []FloraConfig{
			{Kind: "grasses", Population: 0.01, GrowthRate: 0.05},
			{Kind: "shrubs", Population: 0.01, GrowthRate: 0.02},
		},
		Fauna: []FaunaConfig{
			{Name: "beetles", Variant: "invert_herbivore", Population: 0.5, Prey: "grasses"},
			{Name: "hares", Variant: "small_herbivore", Population: 0.2, Prey: "grasses"},
			{Name: "foxes", Variant: "small_predator", Population: 0.02, Prey: "hares"},
		},
		Weather: WeatherConfig{
			Enabled: true,
			Config:  weather.DefaultConfig(),
		},
		Engine: EngineConfig{
			Ticks:       360,
			ReportEvery: 30,
			Biota:       true,
		},
		Storage: StorageConfig{
			Path: "data/beringia.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (skipped when path is empty), then environment variables.
func Load(path string) (*Config, error) {
	config := Default()
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Fields the
// file does not mention keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if _, err := world.ParseKind(c.Region.Topology); err != nil {
		return err
	}
	if c.Region.Width <= 0 || c.Region.Height <= 0 {
		return fmt.Errorf("region dimensions must be positive, got %dx%d", c.Region.Width, c.Region.Height)
	}

	if c.Erosion.Magnitude < 0 {
		return fmt.Errorf("erosion magnitude must be non-negative, got %v", c.Erosion.Magnitude)
	}
	if c.Erosion.Rate <= 0 {
		return fmt.Errorf("erosion rate must be positive, got %v", c.Erosion.Rate)
	}

	if _, err := c.StateTable(); err != nil {
		return err
	}

	if c.Terrain.Enabled && (c.Terrain.Octaves <= 0 || c.Terrain.Frequency <= 0) {
		return fmt.Errorf("terrain octaves and frequency must be positive")
	}

	kinds := map[string]bool{}
	for _, f := range c.Flora {
		if _, ok := flora.ParseKind(f.Kind); !ok {
			return fmt.Errorf("unknown flora kind %q", f.Kind)
		}
		if f.Population < 0 {
			return fmt.Errorf("flora %s: population must be non-negative", f.Kind)
		}
		if f.MoistureTolerance != nil && *f.MoistureTolerance <= 0 {
			return fmt.Errorf("flora %s: moisture_tolerance must be positive", f.Kind)
		}
		kinds[f.Kind] = true
	}

	names := map[string]bool{}
	for _, f := range c.Fauna {
		if f.Name == "" {
			return fmt.Errorf("fauna entry with variant %q has no name", f.Variant)
		}
		if names[f.Name] {
			return fmt.Errorf("duplicate fauna name %q", f.Name)
		}
		names[f.Name] = true
		if _, err := fauna.ParseVariant(f.Variant); err != nil {
			return fmt.Errorf("fauna %s: %w", f.Name, err)
		}
		if f.Population < 0 {
			return fmt.Errorf("fauna %s: population must be non-negative", f.Name)
		}
	}
	for _, f := range c.Fauna {
		if f.Prey == "" || kinds[f.Prey] {
			continue
		}
		if !names[f.Prey] || f.Prey == f.Name {
			return fmt.Errorf("fauna %s: prey %q is neither another fauna nor a configured flora kind", f.Name, f.Prey)
		}
	}

	if c.Weather.Enabled {
		if err := c.Weather.Config.Validate(); err != nil {
			return err
		}
	}

	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api port %d", c.API.Port)
	}
	if c.Engine.Interval < 0 {
		return fmt.Errorf("engine interval must be non-negative, got %v", c.Engine.Interval)
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error, or empty for default)", c.Logging.Level)
	}

	return nil
}

// StateTable returns the default succession table with the configured rows
// applied, validated.
func (c *Config) StateTable() (locale.StateTable, error) {
	table := locale.DefaultStateTable()
	for _, row := range c.Succession {
		table[row.State] = row.Transition
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Kind returns the parsed lattice kind.
func (c *Config) Kind() (world.Kind, error) {
	return world.ParseKind(c.Region.Topology)
}

// GenConfig returns the terrain noise settings.
func (c *Config) GenConfig() world.GenConfig {
	return world.GenConfig{
		Seed:        c.Region.Seed,
		Mean:        c.Terrain.Mean,
		Amplitude:   c.Terrain.Amplitude,
		Frequency:   c.Terrain.Frequency,
		Octaves:     c.Terrain.Octaves,
		Persistence: c.Terrain.Persistence,
	}
}

// RegionOptions converts the configuration into region options.
func (c *Config) RegionOptions(logger *slog.Logger) (region.Options, error) {
	table, err := c.StateTable()
	if err != nil {
		return region.Options{}, err
	}
	return region.Options{
		Table:     table,
		Magnitude: c.Erosion.Magnitude,
		Rate:      c.Erosion.Rate,
		Seed:      c.Region.Seed,
		Logger:    logger,
	}, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("BERINGIA_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Region.Seed = n
		}
	}

	if v := os.Getenv("BERINGIA_TOPOLOGY"); v != "" {
		config.Region.Topology = v
	}

	if v := os.Getenv("BERINGIA_DB"); v != "" {
		config.Storage.Path = v
	}

	if v := os.Getenv("BERINGIA_API_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.API.Port = n
		}
	}

	if v := os.Getenv("BERINGIA_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
