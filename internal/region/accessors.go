package region

import (
	"github.com/talgya/beringia/internal/locale"
	"github.com/talgya/beringia/internal/world"
)

// Locale returns the locale at k. Unknown keys log a warning.
func (r *Region) Locale(k world.Key) (*locale.Locale, bool) {
	l, ok := r.locales[k]
	if !ok {
		r.warnMissing("locale", k)
	}
	return l, ok
}

// StateAt returns the succession stage at k.
func (r *Region) StateAt(k world.Key) (int, bool) {
	l, ok := r.Locale(k)
	if !ok {
		return 0, false
	}
	return l.State, true
}

// OnFireAt reports whether the locale at k is burning.
func (r *Region) OnFireAt(k world.Key) (bool, bool) {
	l, ok := r.Locale(k)
	if !ok {
		return false, false
	}
	return l.OnFire, true
}

// ElevationAt returns the elevation at k.
func (r *Region) ElevationAt(k world.Key) (float64, bool) {
	l, ok := r.Locale(k)
	if !ok {
		return 0, false
	}
	return l.Geology.Elevation(), true
}

// FaunaAt returns the biomass of the named fauna population at k.
func (r *Region) FaunaAt(k world.Key, name string) (float64, bool) {
	l, ok := r.Locale(k)
	if !ok {
		return 0, false
	}
	f, ok := l.FaunaNamed(name)
	if !ok {
		r.log.Warn("no such fauna", "name", name, "x", k.X, "y", k.Y)
		return 0, false
	}
	return f.Population, true
}

// Snapshot returns a detached copy of the locale at k.
func (r *Region) Snapshot(k world.Key) (locale.Snapshot, bool) {
	l, ok := r.Locale(k)
	if !ok {
		return locale.Snapshot{}, false
	}
	return l.Snapshot(), true
}
