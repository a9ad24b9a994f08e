// Package fauna models bulk animal biomass: a feed/breed/starve cycle with
// ambient mortality. Every named species group is the same Population type
// configured by a Variant and a Rates record.
package fauna

import "github.com/talgya/beringia/internal/flora"

// DefaultFood is the food available when a population forages with no
// specific target.
const DefaultFood = 1.0

// Population is a non-individuated animal biomass pool.
//
// Prey names what the population forages on within its locale: another
// fauna population's Name, a flora kind, or empty for the default pool.
type Population struct {
	Name       string  `json:"name"`
	Variant    Variant `json:"variant"`
	Population float64 `json:"population"`
	Prey       string  `json:"prey,omitempty"`
	Rates      Rates   `json:"rates"`
}

// New creates a population with the variant's default rates.
func New(name string, variant Variant, population float64) *Population {
	return &Population{
		Name:       name,
		Variant:    variant,
		Population: population,
		Rates:      DefaultRates(variant),
	}
}

// ZeroCorrect clamps a negative population to zero.
func (p *Population) ZeroCorrect() {
	if p.Population <= 0 {
		p.Population = 0
	}
}

// Feed consumes from target and breeds or starves depending on whether the
// food sufficed. Returns the amount eaten.
//
// target may be another *Population (which loses what is consumed), a
// *flora.Population (forage is not depleted), or anything else including
// nil (a DefaultFood pool).
func (p *Population) Feed(target any) float64 {
	consumption := p.Population * p.Rates.Feeding

	food := DefaultFood
	switch t := target.(type) {
	case *Population:
		if t != nil {
			food = t.Population
			t.Population -= consumption
			t.ZeroCorrect()
		}
	case *flora.Population:
		// Plants are not a limiting resource: forage is never depleted.
		if t != nil {
			food = t.Population
		}
	}

	if consumption < food {
		p.breed()
		return consumption
	}
	p.starve()
	return food
}

func (p *Population) breed() {
	p.Population += p.Population * p.Rates.Reproduction
}

func (p *Population) starve() {
	p.Population -= p.Population*p.Rates.Starvation + p.Rates.Starvation
	p.ZeroCorrect()
}

// AmbientDeath applies background mortality.
func (p *Population) AmbientDeath() {
	p.Population = p.Population * (1 - p.Rates.AmbientDeath)
	p.ZeroCorrect()
}

// Fallout adds background recruitment (invertebrates drifting in).
func (p *Population) Fallout() {
	p.Population += p.Rates.Fallout
}

// PassTime runs one tick of the variant's cycle against target and returns
// the amount eaten.
func (p *Population) PassTime(target any) float64 {
	var eaten float64
	switch p.Variant.Cycle() {
	case CycleInvertebrate:
		p.Fallout()
		eaten = p.Feed(target)
		p.ZeroCorrect()
	default:
		eaten = p.Feed(target)
	}
	p.AmbientDeath()
	return eaten
}
