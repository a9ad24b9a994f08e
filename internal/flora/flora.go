// Package flora models bulk plant biomass with logistic growth whose
// carrying capacity follows the locale's soil moisture.
package flora

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrUninitialized is returned when growth or carrying capacity is requested
// before InitTolerance has built the moisture suitability function.
var ErrUninitialized = errors.New("flora: moisture suitability function not initialized")

// DefaultMoisture is used when no environment moisture is supplied.
const DefaultMoisture = 1.0

// Kind tags a plant functional group. Kinds only differ by configuration.
type Kind uint8

const (
	KindMosses Kind = iota
	KindGrasses
	KindPerennials
	KindShrubs
	KindSoftWoods
	KindHardWoods
)

var kindNames = map[Kind]string{
	KindMosses:     "mosses",
	KindGrasses:    "grasses",
	KindPerennials: "perennials",
	KindShrubs:     "shrubs",
	KindSoftWoods:  "softwoods",
	KindHardWoods:  "hardwoods",
}

// String returns the config name of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseKind maps a config name to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k, n := range kindNames {
		if n == s {
			return k, true
		}
	}
	return 0, false
}

// MarshalText encodes the kind by its config name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a config name.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, ok := ParseKind(string(b))
	if !ok {
		return fmt.Errorf("unknown flora kind %q", b)
	}
	*k = parsed
	return nil
}

// Population is a non-individuated plant biomass pool.
type Population struct {
	Kind               Kind    `json:"kind"`
	Population         float64 `json:"population"`
	GrowthRate         float64 `json:"growth_rate"`
	MaxPop             float64 `json:"max_pop"` // carrying capacity K
	MoisturePreference float64 `json:"moisture_preference"`
	MoistureTolerance  float64 `json:"moisture_tolerance"`

	moisture *distuv.Normal
}

// New creates a plant population with the default niche
// (preference 0.7, tolerance 0.2) and carrying capacity 1.0.
func New(kind Kind, population, growthRate float64) *Population {
	return &Population{
		Kind:               kind,
		Population:         population,
		GrowthRate:         growthRate,
		MaxPop:             1.0,
		MoisturePreference: 0.7,
		MoistureTolerance:  0.2,
	}
}

// NewDefault creates a population with starting biomass 0.01 and growth 0.01.
func NewDefault(kind Kind) *Population {
	return New(kind, 0.01, 0.01)
}

// InitTolerance builds the moisture suitability function from the current
// preference and tolerance. Call again after changing either.
func (p *Population) InitTolerance() {
	p.moisture = &distuv.Normal{Mu: p.MoisturePreference, Sigma: p.MoistureTolerance}
}

// Initialized reports whether InitTolerance has run.
func (p *Population) Initialized() bool {
	return p.moisture != nil
}

// CalcMaxPop sets the carrying capacity to the suitability density at the
// given moisture. NaN counts as missing and falls back to DefaultMoisture.
func (p *Population) CalcMaxPop(moisture float64) error {
	if p.moisture == nil {
		return ErrUninitialized
	}
	if math.IsNaN(moisture) {
		moisture = DefaultMoisture
	}
	p.MaxPop = p.moisture.Prob(moisture)
	return nil
}

// CalcMaxPopDefault sets the carrying capacity for DefaultMoisture.
func (p *Population) CalcMaxPopDefault() error {
	return p.CalcMaxPop(DefaultMoisture)
}

// Grow advances the population one logistic step:
//
//	P += r * P * (1 - P/K)
func (p *Population) Grow() error {
	if p.moisture == nil {
		return ErrUninitialized
	}
	if p.MaxPop <= 0 {
		// Unsuitable habitat: no capacity, no growth.
		return nil
	}
	p.Population += p.GrowthRate * p.Population * (1 - p.Population/p.MaxPop)
	if p.Population < 0 {
		p.Population = 0
	}
	return nil
}

// PassTime recomputes capacity for the environment moisture and grows once.
func (p *Population) PassTime(moisture float64) error {
	if err := p.CalcMaxPop(moisture); err != nil {
		return err
	}
	return p.Grow()
}
