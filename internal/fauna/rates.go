package fauna

import "fmt"

// Cycle is the population update state machine a variant runs.
type Cycle uint8

const (
	CycleBulk         Cycle = iota // feed, ambient death
	CycleInvertebrate              // fallout, feed, zero-correct, ambient death
	CycleVertebrate                // same as bulk with vertebrate rates
)

// Variant tags a species group. Variants are pure parameterizations:
// they select a Cycle and a default Rates record.
type Variant uint8

const (
	VariantBulk Variant = iota
	VariantInvertebrate
	VariantInvertDetritivore
	VariantInvertHerbivore
	VariantInvertPredator
	VariantVertebrate
	VariantInsectivore
	VariantSmallHerbivore
	VariantLargeHerbivore
	VariantSmallPredator
	VariantLargePredator
	VariantMediumOmnivore
)

// Rates are the per-tick constants of a population.
type Rates struct {
	Reproduction float64 `json:"reproduction_rate"` // energy conversion: biomass gained per unit on a full meal
	Starvation   float64 `json:"starvation_rate"`
	Feeding      float64 `json:"feeding_rate"`
	AmbientDeath float64 `json:"ambient_death_rate"`
	Fallout      float64 `json:"fallout_rate"` // invertebrates only
}

type variantSpec struct {
	name  string
	cycle Cycle
	rates Rates
}

var (
	bulkRates = Rates{Reproduction: 0.01, Starvation: 0.02, Feeding: 0.5, AmbientDeath: 0.05}
	invRates  = Rates{Reproduction: 0.01, Starvation: 0.25, Feeding: 0.25, AmbientDeath: 0.05, Fallout: 0.001}
	vertRates = Rates{Reproduction: 0.01, Starvation: 0.1, Feeding: 0.1, AmbientDeath: 0.05}
)

func withFeeding(r Rates, feeding float64) Rates {
	r.Feeding = feeding
	return r
}

var variants = map[Variant]variantSpec{
	VariantBulk:              {"bulk", CycleBulk, bulkRates},
	VariantInvertebrate:      {"invertebrate", CycleInvertebrate, invRates},
	VariantInvertDetritivore: {"invert_detritivore", CycleInvertebrate, withFeeding(invRates, 0.01)},
	VariantInvertHerbivore:   {"invert_herbivore", CycleInvertebrate, withFeeding(invRates, 0.01)},
	VariantInvertPredator: {"invert_predator", CycleInvertebrate, Rates{
		Reproduction: invRates.Reproduction,
		Starvation:   invRates.Starvation,
		Feeding:      0.15,
		AmbientDeath: invRates.AmbientDeath,
		Fallout:      0.0001,
	}},
	VariantVertebrate:     {"vertebrate", CycleVertebrate, vertRates},
	VariantInsectivore:    {"insectivore", CycleVertebrate, withFeeding(vertRates, 0.1)},
	VariantSmallHerbivore: {"small_herbivore", CycleVertebrate, withFeeding(vertRates, 0.1)},
	VariantLargeHerbivore: {"large_herbivore", CycleVertebrate, withFeeding(vertRates, 0.2)},
	VariantSmallPredator:  {"small_predator", CycleVertebrate, withFeeding(vertRates, 0.2)},
	VariantLargePredator:  {"large_predator", CycleVertebrate, withFeeding(vertRates, 0.3)},
	VariantMediumOmnivore: {"medium_omnivore", CycleVertebrate, withFeeding(vertRates, 0.25)},
}

// DefaultRates returns the rate table of a variant.
func DefaultRates(v Variant) Rates {
	return variants[v].rates
}

// Cycle returns the update cycle a variant runs.
func (v Variant) Cycle() Cycle {
	return variants[v].cycle
}

// String returns the config name of the variant.
func (v Variant) String() string {
	if s, ok := variants[v]; ok {
		return s.name
	}
	return fmt.Sprintf("variant(%d)", uint8(v))
}

// ParseVariant maps a config name to a Variant.
func ParseVariant(name string) (Variant, error) {
	for v, s := range variants {
		if s.name == name {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown fauna variant %q", name)
}

// MarshalText encodes the variant by its config name.
func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a config name.
func (v *Variant) UnmarshalText(b []byte) error {
	parsed, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
