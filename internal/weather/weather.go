// Package weather generates seasonal precipitation for the simulation and
// maps it onto erosion and soil-water modifiers.
package weather

import (
	"fmt"

	"github.com/talgya/beringia/internal/entropy"
)

// Season names, indexed by season number (0 = spring).
var seasonNames = [4]string{"spring", "summer", "autumn", "winter"}

// Relative precipitation per season. Winter precipitation is mostly snow
// and barely reaches the soil.
var seasonRain = [4]float64{1.2, 0.8, 1.1, 0.4}

// Config tunes the precipitation model.
type Config struct {
	MeanRain        float64 `yaml:"mean_rain"`        // mean rainfall per tick
	StormChance     float64 `yaml:"storm_chance"`     // per-tick probability of a storm
	StormMultiplier float64 `yaml:"storm_multiplier"` // rainfall multiplier during a storm
	SeasonLength    int     `yaml:"season_length"`    // ticks per season
}

// DefaultConfig returns a mild boreal climate.
func DefaultConfig() Config {
	return Config{
		MeanRain:        0.1,
		StormChance:     0.05,
		StormMultiplier: 5,
		SeasonLength:    90,
	}
}

// Validate rejects configurations the model cannot run.
func (c Config) Validate() error {
	if c.MeanRain < 0 {
		return fmt.Errorf("weather: mean_rain must be non-negative, got %v", c.MeanRain)
	}
	if c.StormChance < 0 || c.StormChance > 1 {
		return fmt.Errorf("weather: storm_chance must be in [0,1], got %v", c.StormChance)
	}
	if c.StormMultiplier < 1 {
		return fmt.Errorf("weather: storm_multiplier must be at least 1, got %v", c.StormMultiplier)
	}
	if c.SeasonLength <= 0 {
		return fmt.Errorf("weather: season_length must be positive, got %d", c.SeasonLength)
	}
	return nil
}

// Conditions is the weather for one tick.
type Conditions struct {
	Tick        uint64  `json:"tick"`
	Season      uint8   `json:"season"`
	Rainfall    float64 `json:"rainfall"`
	IsStorm     bool    `json:"is_storm"`
	Description string  `json:"description"`
}

// Model draws per-tick weather from its own random source so that enabling
// weather does not disturb the region's draw sequence.
type Model struct {
	cfg  Config
	src  entropy.Source
	last *Conditions
}

// NewModel creates a precipitation model.
func NewModel(cfg Config, src entropy.Source) *Model {
	if cfg.SeasonLength <= 0 {
		cfg.SeasonLength = DefaultConfig().SeasonLength
	}
	return &Model{cfg: cfg, src: src}
}

// Season returns the season number for a tick.
func (m *Model) Season(tick uint64) uint8 {
	return uint8((tick / uint64(m.cfg.SeasonLength)) % 4)
}

// Next draws the weather for tick. Each call consumes two draws.
func (m *Model) Next(tick uint64) Conditions {
	season := m.Season(tick)
	c := Conditions{
		Tick:     tick,
		Season:   season,
		Rainfall: m.cfg.MeanRain * seasonRain[season] * (0.5 + m.src.Float64()),
	}
	if m.src.Float64() < m.cfg.StormChance {
		c.IsStorm = true
		c.Rainfall *= m.cfg.StormMultiplier
	}
	c.Description = describe(c)
	m.last = &c
	return c
}

// Last returns the most recent conditions, or nil before the first draw.
func (m *Model) Last() *Conditions {
	return m.last
}

// SimWeather holds simulation-mapped weather modifiers.
type SimWeather struct {
	Magnitude   float64 // erosion magnitude for the tick
	WaterInput  float64 // water added to every locale's soil
	Description string
}

// MapToSim converts conditions to simulation modifiers. Nil conditions give
// the dry default: base magnitude and no water.
func MapToSim(c *Conditions, baseMagnitude float64) SimWeather {
	if c == nil {
		return SimWeather{Magnitude: baseMagnitude, Description: "fair weather"}
	}
	sw := SimWeather{
		Magnitude:   baseMagnitude + c.Rainfall,
		WaterInput:  c.Rainfall,
		Description: c.Description,
	}
	// Snowpack holds most winter water back from the soil.
	if c.Season == 3 {
		sw.WaterInput *= 0.25
	}
	return sw
}

func describe(c Conditions) string {
	name := seasonNames[c.Season]
	switch {
	case c.IsStorm:
		return name + " storm"
	case c.Season == 3:
		return "light winter snow"
	case c.Rainfall < 0.05:
		return "dry " + name + " weather"
	default:
		return name + " showers"
	}
}
