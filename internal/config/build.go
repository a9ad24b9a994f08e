package config

import (
	"fmt"
	"log/slog"

	"github.com/talgya/beringia/internal/entropy"
	"github.com/talgya/beringia/internal/fauna"
	"github.com/talgya/beringia/internal/flora"
	"github.com/talgya/beringia/internal/locale"
	"github.com/talgya/beringia/internal/region"
	"github.com/talgya/beringia/internal/weather"
	"github.com/talgya/beringia/internal/world"
)

// BuildRegion constructs the lattice and region the configuration
// describes, applies the terrain field and places flora and fauna.
func (c *Config) BuildRegion(logger *slog.Logger) (*region.Region, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	kind, err := c.Kind()
	if err != nil {
		return nil, err
	}
	g, err := world.NewLattice(kind, c.Region.Width, c.Region.Height)
	if err != nil {
		return nil, err
	}
	if c.Region.Border {
		g.AttachBorder()
	}

	opts, err := c.RegionOptions(logger)
	if err != nil {
		return nil, err
	}
	r, err := region.New(g, opts)
	if err != nil {
		return nil, err
	}

	if c.Terrain.Enabled {
		r.ApplyElevation(world.ElevationField(g, c.GenConfig()))
		r.UpdateBasins()
	}
	if err := c.Populate(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Populate places a fresh copy of every configured flora and fauna
// population on each interior locale of r.
func (c *Config) Populate(r *region.Region) error {
	var err error
	r.Each(func(l *locale.Locale) {
		if err != nil {
			return
		}
		for _, fc := range c.Flora {
			p, ferr := fc.build()
			if ferr != nil {
				err = ferr
				return
			}
			r.AddFlora(l.Location, p)
		}
		for _, fc := range c.Fauna {
			p, ferr := fc.build()
			if ferr != nil {
				err = ferr
				return
			}
			r.AddFauna(l.Location, p)
		}
	})
	return err
}

// WeatherModel returns the precipitation model, or nil when weather is
// disabled. It draws from its own stream so the region's draws stay the
// same with weather on or off.
func (c *Config) WeatherModel() *weather.Model {
	if !c.Weather.Enabled {
		return nil
	}
	var src entropy.Source = entropy.Crypto{}
	if c.Region.Seed != 0 {
		src = entropy.NewSeeded(c.Region.Seed + 1)
	}
	return weather.NewModel(c.Weather.Config, src)
}

func (fc FloraConfig) build() (*flora.Population, error) {
	kind, ok := flora.ParseKind(fc.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown flora kind %q", fc.Kind)
	}
	p := flora.New(kind, fc.Population, fc.GrowthRate)
	if fc.MoisturePreference != nil {
		p.MoisturePreference = *fc.MoisturePreference
	}
	if fc.MoistureTolerance != nil {
		p.MoistureTolerance = *fc.MoistureTolerance
	}
	p.InitTolerance()
	return p, nil
}

func (fc FaunaConfig) build() (*fauna.Population, error) {
	variant, err := fauna.ParseVariant(fc.Variant)
	if err != nil {
		return nil, fmt.Errorf("fauna %s: %w", fc.Name, err)
	}
	p := fauna.New(fc.Name, variant, fc.Population)
	p.Prey = fc.Prey
	o := fc.Rates
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.Rates.Reproduction, o.Reproduction)
	set(&p.Rates.Starvation, o.Starvation)
	set(&p.Rates.Feeding, o.Feeding)
	set(&p.Rates.AmbientDeath, o.AmbientDeath)
	set(&p.Rates.Fallout, o.Fallout)
	return p, nil
}
