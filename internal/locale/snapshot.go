package locale

import (
	"github.com/talgya/beringia/internal/fauna"
	"github.com/talgya/beringia/internal/flora"
	"github.com/talgya/beringia/internal/world"
)

// GeologySnapshot is a copy of a locale's abiotic state.
type GeologySnapshot struct {
	Elevation      float64 `json:"elevation"`
	ElevationBase  float64 `json:"elevation_base"`
	SoilDepth      float64 `json:"soil_depth"`
	SoilMoisture   float64 `json:"soil_moisture"`
	SoilStability  float64 `json:"soil_stability"`
	BasinElevation float64 `json:"basin_elevation"`
	WaterContent   float64 `json:"water_content"`
	WaterCapacity  float64 `json:"water_capacity"`
	WaterDepth     float64 `json:"water_depth"`
}

// Snapshot is a detached copy of a locale, safe to hand to renderers.
type Snapshot struct {
	Location world.Key          `json:"location"`
	State    int                `json:"state"`
	OnFire   bool               `json:"on_fire"`
	Border   bool               `json:"border,omitempty"`
	Geology  GeologySnapshot    `json:"geology"`
	Flora    []flora.Population `json:"flora"`
	Fauna    []fauna.Population `json:"fauna"`
}

// Snapshot copies the locale's current state.
func (l *Locale) Snapshot() Snapshot {
	s := Snapshot{
		Location: l.Location,
		State:    l.State,
		OnFire:   l.OnFire,
		Border:   l.Border,
		Flora:    make([]flora.Population, 0, len(l.Flora)),
		Fauna:    make([]fauna.Population, 0, len(l.Fauna)),
	}
	if g := l.Geology; g != nil {
		s.Geology = GeologySnapshot{
			Elevation:      g.Elevation(),
			ElevationBase:  g.ElevationBase,
			SoilDepth:      g.SoilDepth,
			SoilMoisture:   g.SoilMoisture(),
			SoilStability:  g.SoilStability,
			BasinElevation: g.BasinElevation,
		}
		if h := g.Hydrology; h != nil {
			s.Geology.WaterContent = h.WaterContent
			s.Geology.WaterCapacity = h.WaterCapacity
			s.Geology.WaterDepth = h.WaterDepth
		}
	}
	for _, f := range l.Flora {
		s.Flora = append(s.Flora, *f)
	}
	for _, f := range l.Fauna {
		s.Fauna = append(s.Fauna, *f)
	}
	return s
}
