// Package geology tracks per-locale elevation, soil and water, and provides
// the erosion and accretion primitives the region's erosion pass is built on.
package geology

import "math"

// Defaults for a fresh locale. DefaultElevationBase is the mean of the
// gamma(5, 0.5) draw the terrain was first tuned with; DefaultSoilDepth is
// e^0.25.
const (
	DefaultElevationBase = 2.5
	DefaultSoilMoisture  = 0.5
	DefaultErosionRate   = 0.01
)

// DefaultSoilDepth is the starting soil depth of a locale.
var DefaultSoilDepth = math.Exp(0.25)

// Geology holds the abiotic state of one locale.
// Elevation is derived from ElevationBase and SoilDepth and is refreshed by
// every method that touches either of them; callers that assign those
// fields directly must call Recalculate.
type Geology struct {
	ElevationBase  float64    `json:"elevation_base"`
	SoilDepth      float64    `json:"soil_depth"`
	SoilStability  float64    `json:"soil_stability"` // 0 (loose) to 1 (fully anchored)
	BasinElevation float64    `json:"basin_elevation"`
	Hydrology      *Hydrology `json:"hydrology"`

	elevation    float64
	soilMoisture float64
	inert        bool
}

// New creates a functional geology. Water capacity equals the soil depth and
// the soil starts with moisture*depth water in it.
func New(elevationBase, soilDepth, moisture float64) *Geology {
	g := &Geology{
		ElevationBase: elevationBase,
		SoilDepth:     soilDepth,
		Hydrology:     NewHydrology(moisture*soilDepth, soilDepth),
	}
	g.Recalculate()
	g.BasinElevation = g.elevation
	return g
}

// NewDefault creates a geology with the default starting values.
func NewDefault() *Geology {
	return New(DefaultElevationBase, DefaultSoilDepth, DefaultSoilMoisture)
}

// NewBorder creates an inert geology mirroring the elevation, soil and
// moisture of the interior geology it borders. Inert geology never erodes,
// never accretes and ignores water input.
func NewBorder(mirror *Geology) *Geology {
	if mirror == nil {
		mirror = NewDefault()
	}
	g := New(mirror.ElevationBase, mirror.SoilDepth, mirror.SoilMoisture())
	g.SoilStability = mirror.SoilStability
	g.inert = true
	return g
}

// Inert reports whether this is non-functional border geology.
func (g *Geology) Inert() bool {
	return g.inert
}

// Elevation returns ElevationBase + SoilDepth as of the last recalculation.
func (g *Geology) Elevation() float64 {
	return g.elevation
}

// SoilMoisture returns water content over water capacity.
func (g *Geology) SoilMoisture() float64 {
	return g.soilMoisture
}

// Recalculate refreshes the derived elevation and soil moisture.
// A soil with no water capacity holds no moisture.
func (g *Geology) Recalculate() {
	g.elevation = g.ElevationBase + g.SoilDepth
	if g.Hydrology != nil && g.Hydrology.WaterCapacity > 0 {
		g.soilMoisture = g.Hydrology.WaterContent / g.Hydrology.WaterCapacity
	} else {
		g.soilMoisture = 0
	}
}

// SetBasinElevation records the elevation of the basin this locale drains
// into. Nil means the locale is its own basin.
func (g *Geology) SetBasinElevation(elevation *float64) {
	if elevation == nil {
		g.BasinElevation = g.elevation
		return
	}
	g.BasinElevation = *elevation
}

// Erode removes soil and returns the amount transported.
//
// magnitude is the strength of the erosion event (e.g. rainfall), rate a
// tuning constant for step size, slope the elevation difference to the
// receiving locale and stability the locale's resistance to erosion.
//
// When the load exceeds the soil available, all soil is carried away and
// load*rate is both added back as fresh soil and cut out of the bedrock.
func (g *Geology) Erode(magnitude, rate, slope, stability float64) float64 {
	if g.inert {
		return 0
	}
	load := magnitude * rate * slope * (1 - stability)
	var transport float64
	if load > g.SoilDepth {
		transport = g.SoilDepth
		g.SoilDepth = 0
		g.SoilDepth += load * rate
		g.ElevationBase -= load * rate
	} else {
		transport = load
		g.SoilDepth -= load
	}
	g.Recalculate()
	return transport
}

// Accrete deposits transported soil.
func (g *Geology) Accrete(load float64) {
	if g.inert {
		return
	}
	g.SoilDepth += load
	g.Recalculate()
}

// WaterInput adds water to the soil and returns any runoff.
func (g *Geology) WaterInput(amount float64) float64 {
	if g.inert || g.Hydrology == nil {
		return 0
	}
	runoff := g.Hydrology.Accumulate(amount)
	g.Recalculate()
	return runoff
}
