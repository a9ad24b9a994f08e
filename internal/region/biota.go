package region

import (
	"errors"
	"fmt"

	"github.com/talgya/beringia/internal/fauna"
	"github.com/talgya/beringia/internal/flora"
	"github.com/talgya/beringia/internal/locale"
	"github.com/talgya/beringia/internal/world"
)

// AddFlora places a plant population on the interior locale at k and builds
// its moisture suitability function if that has not happened yet.
func (r *Region) AddFlora(k world.Key, p *flora.Population) bool {
	l, ok := r.Locale(k)
	if !ok || l.Border {
		return false
	}
	if !p.Initialized() {
		p.InitTolerance()
	}
	l.Flora = append(l.Flora, p)
	return true
}

// AddFauna places an animal population on the interior locale at k.
func (r *Region) AddFauna(k world.Key, p *fauna.Population) bool {
	l, ok := r.Locale(k)
	if !ok || l.Border {
		return false
	}
	l.Fauna = append(l.Fauna, p)
	return true
}

// PassBiota advances every population one step. Flora grow toward the
// capacity set by their locale's soil moisture, then fauna run their cycle
// against their prey in the same locale. Growth failures are collected and
// returned together; the remaining populations still advance.
func (r *Region) PassBiota() error {
	var errs []error
	r.Each(func(l *locale.Locale) {
		moisture := l.Geology.SoilMoisture()
		for _, p := range l.Flora {
			if err := p.PassTime(moisture); err != nil {
				errs = append(errs, fmt.Errorf("flora %s at %v: %w", p.Kind, l.Location, err))
			}
		}
		for _, p := range l.Fauna {
			p.PassTime(forage(l, p))
		}
	})
	return errors.Join(errs...)
}

// forage resolves a fauna population's prey within its locale: a fauna
// population by name first, then a flora kind. Nil means the default pool.
func forage(l *locale.Locale, p *fauna.Population) any {
	if p.Prey == "" {
		return nil
	}
	if prey, ok := l.FaunaNamed(p.Prey); ok && prey != p {
		return prey
	}
	if kind, ok := flora.ParseKind(p.Prey); ok {
		for _, f := range l.Flora {
			if f.Kind == kind {
				return f
			}
		}
	}
	return nil
}
