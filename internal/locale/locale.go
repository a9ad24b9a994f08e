// Package locale implements the per-cell succession and fire state machine.
//
// A locale is a patch of land holding a succession stage, a fire flag, its
// geology and any flora and fauna living on it. Every tick it burns if it
// was on fire, tries to advance (or regress) its stage and risks a
// spontaneous ignition, each step drawing from the injected random source.
package locale

import (
	"github.com/talgya/beringia/internal/entropy"
	"github.com/talgya/beringia/internal/fauna"
	"github.com/talgya/beringia/internal/flora"
	"github.com/talgya/beringia/internal/geology"
	"github.com/talgya/beringia/internal/world"
)

// Locale is one cell of a region.
type Locale struct {
	Location world.Key          `json:"location"`
	State    int                `json:"state"`
	OnFire   bool               `json:"on_fire"`
	Border   bool               `json:"border,omitempty"`
	Geology  *geology.Geology   `json:"geology"`
	Flora    []*flora.Population `json:"flora,omitempty"`
	Fauna    []*fauna.Population `json:"fauna,omitempty"`

	table StateTable
}

// New creates a bare locale (stage 0, not burning) with default geology.
// A nil table means DefaultStateTable.
func New(loc world.Key, table StateTable) *Locale {
	if table == nil {
		table = DefaultStateTable()
	}
	return &Locale{
		Location: loc,
		State:    StateBare,
		Geology:  geology.NewDefault(),
		table:    table,
	}
}

// NewBorder creates an inert border locale mirroring owner's geology.
// Border locales never change stage and never burn.
func NewBorder(loc world.Key, owner *Locale) *Locale {
	var mirror *geology.Geology
	table := DefaultStateTable()
	if owner != nil {
		mirror = owner.Geology
		table = owner.table
	}
	return &Locale{
		Location: loc,
		State:    StateBare,
		Border:   true,
		Geology:  geology.NewBorder(mirror),
		table:    table,
	}
}

// Transition returns the probabilities for the current stage.
func (l *Locale) Transition() Transition {
	return l.table.Get(l.State)
}

// PassTime runs one succession tick: burn if on fire, then try a stage
// change, then risk ignition.
func (l *Locale) PassTime(src entropy.Source) {
	if l.Border {
		return
	}
	if l.OnFire {
		l.Burn()
	}
	l.IncrementState(src)
	l.RiskFire(src)
}

// Burn consumes the fire: the stage drops to burned and the flag clears.
func (l *Locale) Burn() {
	l.State = StateBurned
	l.OnFire = false
}

// IncrementState draws once and moves the stage up, down or not at all.
// Increase is checked first, so one draw never triggers both.
func (l *Locale) IncrementState(src entropy.Source) bool {
	if l.Border {
		return false
	}
	tr := l.Transition()
	r := src.Float64()
	switch {
	case r < tr.Increase:
		l.State = clampState(l.State + 1)
	case r > 1-tr.Decrease:
		l.State = clampState(l.State - 1)
	default:
		return false
	}
	return true
}

// RiskFire draws against the stage's spontaneous ignition probability.
func (l *Locale) RiskFire(src entropy.Source) bool {
	if l.Border {
		return false
	}
	if src.Float64() < l.Transition().FireStart {
		l.OnFire = true
		return true
	}
	return false
}

// CatchFire draws against the stage's spread probability, as when a
// burning neighbor reaches this locale.
func (l *Locale) CatchFire(src entropy.Source) bool {
	if l.Border {
		return false
	}
	if src.Float64() < l.Transition().FireSpread {
		l.OnFire = true
		return true
	}
	return false
}

// FaunaNamed returns the fauna population with the given name.
func (l *Locale) FaunaNamed(name string) (*fauna.Population, bool) {
	for _, f := range l.Fauna {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

func clampState(s int) int {
	if s < StateBurned {
		return StateBurned
	}
	if s > StateClimax {
		return StateClimax
	}
	return s
}
