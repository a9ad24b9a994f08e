// Package region owns a graph of locales and drives the simulation tick:
// succession, fire spread to a fixed point, then steepest-descent erosion.
package region

import (
	"fmt"
	"log/slog"

	"github.com/talgya/beringia/internal/entropy"
	"github.com/talgya/beringia/internal/geology"
	"github.com/talgya/beringia/internal/locale"
	"github.com/talgya/beringia/internal/world"
)

// Erosion defaults for the per-tick pass.
const (
	DefaultMagnitude = 0.1
	DefaultRate      = geology.DefaultErosionRate

	// FlatSlope is the slope used when no neighbor is strictly lower.
	FlatSlope = 0.01
)

// Graph is the topology a region is built on. Node order drives every
// pass, so it must be stable. Owner reports the interior node a border
// node mirrors.
type Graph interface {
	world.Topology
	Owner(world.Key) (world.Key, bool)
}

// Options configures a new region.
type Options struct {
	Table     locale.StateTable // nil → locale.DefaultStateTable
	Magnitude float64           // erosion magnitude; 0 → DefaultMagnitude
	Rate      float64           // erosion rate; 0 → DefaultRate
	Seed      int64             // used when Source is nil; 0 → crypto source
	Source    entropy.Source
	Logger    *slog.Logger // nil → slog.Default()
}

// Region is a set of locales keyed by graph node.
type Region struct {
	Time      int     // ticks passed, monotonic
	Magnitude float64 // erosion magnitude for the next tick
	Rate      float64 // erosion rate

	graph   Graph
	locales map[world.Key]*locale.Locale
	table   locale.StateTable
	src     entropy.Source
	log     *slog.Logger
}

// TickResult summarizes what happened during one tick.
type TickResult struct {
	Time      int         `json:"time"`
	Burned    int         `json:"burned"`    // locales that burned out at the start of the tick
	Ignited   []world.Key `json:"ignited"`   // spontaneous ignitions
	Spread    int         `json:"spread"`    // ignitions caused by spreading fire
	Transport float64     `json:"transport"` // total soil moved by erosion
}

// New builds a region with one locale per graph node. Nodes with an owner
// become inert border locales mirroring the owner's geology.
func New(g Graph, opts Options) (*Region, error) {
	if g == nil {
		return nil, fmt.Errorf("region: nil graph")
	}
	table := opts.Table
	if table == nil {
		table = locale.DefaultStateTable()
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("region: %w", err)
	}

	r := &Region{
		Magnitude: opts.Magnitude,
		Rate:      opts.Rate,
		graph:     g,
		locales:   make(map[world.Key]*locale.Locale, len(g.Nodes())),
		table:     table,
		src:       opts.Source,
		log:       opts.Logger,
	}
	if r.Magnitude == 0 {
		r.Magnitude = DefaultMagnitude
	}
	if r.Rate == 0 {
		r.Rate = DefaultRate
	}
	if r.src == nil {
		r.src = entropy.FromSeed(opts.Seed)
	}
	if r.log == nil {
		r.log = slog.Default()
	}

	// Interior first so every border node finds its owner.
	for _, k := range g.Nodes() {
		if _, border := g.Owner(k); !border {
			r.locales[k] = locale.New(k, table)
		}
	}
	for _, k := range g.Nodes() {
		owner, border := g.Owner(k)
		if !border {
			continue
		}
		o, ok := r.locales[owner]
		if !ok {
			return nil, fmt.Errorf("region: border node %v has unknown owner %v", k, owner)
		}
		r.locales[k] = locale.NewBorder(k, o)
	}
	return r, nil
}

// Graph returns the region's topology.
func (r *Region) Graph() Graph {
	return r.graph
}

// Len returns the number of locales, border locales included.
func (r *Region) Len() int {
	return len(r.locales)
}

// Locales returns every locale in graph order.
func (r *Region) Locales() []*locale.Locale {
	out := make([]*locale.Locale, 0, len(r.locales))
	for _, k := range r.graph.Nodes() {
		out = append(out, r.locales[k])
	}
	return out
}

// Each calls fn for every interior locale in graph order.
func (r *Region) Each(fn func(*locale.Locale)) {
	for _, k := range r.graph.Nodes() {
		if l := r.locales[k]; !l.Border {
			fn(l)
		}
	}
}

// PassTime advances the region n ticks. n <= 0 does nothing.
func (r *Region) PassTime(n int) {
	for i := 0; i < n; i++ {
		r.Tick()
	}
}

// Tick advances one tick: succession on every locale, the fire-spread pass,
// then the erosion pass.
func (r *Region) Tick() TickResult {
	r.Time++
	res := TickResult{Time: r.Time}

	for _, k := range r.graph.Nodes() {
		l := r.locales[k]
		if l.OnFire {
			res.Burned++
		}
		l.PassTime(r.src)
		if l.OnFire {
			res.Ignited = append(res.Ignited, k)
		}
	}
	res.Spread = r.SpreadFire()
	res.Transport = r.ErodeAll()
	return res
}

// SpreadFire propagates fire from every burning locale until no further
// neighbor ignites. Newly ignited locales join the same FIFO worklist, so
// fire can cross many cells in one call. Returns the number of ignitions.
func (r *Region) SpreadFire() int {
	var queue []world.Key
	for _, k := range r.graph.Nodes() {
		if r.locales[k].OnFire {
			queue = append(queue, k)
		}
	}

	ignited := 0
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		for _, n := range r.graph.Neighbors(k) {
			nl, ok := r.locales[n]
			if !ok || nl.OnFire {
				continue
			}
			if nl.CatchFire(r.src) {
				queue = append(queue, n)
				ignited++
			}
		}
	}
	if ignited > 0 {
		r.log.Debug("fire spread", "time", r.Time, "ignited", ignited)
	}
	return ignited
}

// ErodeAll runs ErodeOne over every locale in graph order and returns the
// total transport. Neighbors eroded earlier in the pass are seen with their
// updated elevation.
func (r *Region) ErodeAll() float64 {
	var total float64
	for _, k := range r.graph.Nodes() {
		total += r.ErodeOne(k)
	}
	return total
}

// ErodeOne erodes a single locale toward its lowest neighbor and deposits
// the transported soil there. With no strictly lower neighbor the soil is
// redeposited in place at FlatSlope.
func (r *Region) ErodeOne(k world.Key) float64 {
	l, ok := r.locales[k]
	if !ok {
		r.warnMissing("erode", k)
		return 0
	}

	lowest := l
	for _, n := range r.graph.Neighbors(k) {
		nl, ok := r.locales[n]
		if !ok {
			continue
		}
		if lowest.Geology.Elevation() > nl.Geology.Elevation() {
			lowest = nl
		}
	}

	slope := FlatSlope
	if lowest != l {
		slope = l.Geology.Elevation() - lowest.Geology.Elevation()
	}
	transport := l.Geology.Erode(r.Magnitude, r.Rate, slope, l.Geology.SoilStability)
	lowest.Geology.Accrete(transport)
	return transport
}

func (r *Region) warnMissing(op string, k world.Key) {
	r.log.Warn("locale out of range", "op", op, "x", k.X, "y", k.Y)
}
