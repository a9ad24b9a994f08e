package region

import (
	"github.com/talgya/beringia/internal/geology"
	"github.com/talgya/beringia/internal/locale"
	"github.com/talgya/beringia/internal/world"
)

// ApplyElevation sets the elevation base of every interior locale found in
// field, resets its basin to itself and re-mirrors the border.
func (r *Region) ApplyElevation(field map[world.Key]float64) {
	applied := 0
	for _, k := range r.graph.Nodes() {
		l := r.locales[k]
		base, ok := field[k]
		if !ok || l.Border {
			continue
		}
		l.Geology.ElevationBase = base
		l.Geology.Recalculate()
		l.Geology.SetBasinElevation(nil)
		applied++
	}
	r.mirrorBorders()
	r.log.Debug("elevation applied", "locales", applied)
}

// UpdateBasins follows the steepest descent from every interior locale and
// records the elevation of the sink it drains into.
func (r *Region) UpdateBasins() {
	elevation := func(k world.Key) float64 {
		if l, ok := r.locales[k]; ok {
			return l.Geology.Elevation()
		}
		return 0
	}
	for _, k := range r.graph.Nodes() {
		l := r.locales[k]
		if l.Border {
			continue
		}
		path := world.Descend(r.graph, elevation, k, 0)
		if len(path) == 0 {
			continue
		}
		sink := elevation(path[len(path)-1])
		l.Geology.SetBasinElevation(&sink)
	}
}

// WaterInput adds amount of water to every interior locale and returns the
// total runoff.
func (r *Region) WaterInput(amount float64) float64 {
	var runoff float64
	r.Each(func(l *locale.Locale) {
		runoff += l.Geology.WaterInput(amount)
	})
	return runoff
}

// mirrorBorders rebuilds border geology from the current owner geology.
func (r *Region) mirrorBorders() {
	for _, k := range r.graph.Nodes() {
		owner, border := r.graph.Owner(k)
		if !border {
			continue
		}
		if o, ok := r.locales[owner]; ok {
			r.locales[k].Geology = geology.NewBorder(o.Geology)
		}
	}
}
