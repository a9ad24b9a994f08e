package region

import (
	"github.com/talgya/beringia/internal/locale"
)

// Census aggregates the interior locales of a region.
type Census struct {
	Time          int                `json:"time"`
	Locales       int                `json:"locales"`
	Burning       int                `json:"burning"`
	Stages        map[int]int        `json:"stages"` // succession stage → locale count
	MeanStage     float64            `json:"mean_stage"`
	MeanElevation float64            `json:"mean_elevation"`
	MeanSoilDepth float64            `json:"mean_soil_depth"`
	MeanMoisture  float64            `json:"mean_moisture"`
	Flora         float64            `json:"flora"` // total plant biomass
	Fauna         map[string]float64 `json:"fauna"` // name → total biomass
}

// Census counts stages and sums geology and biomass over interior locales.
func (r *Region) Census() Census {
	c := Census{
		Time:   r.Time,
		Stages: make(map[int]int, locale.StateClimax-locale.StateBurned+1),
		Fauna:  make(map[string]float64),
	}
	var stages, elevation, soil, moisture float64
	r.Each(func(l *locale.Locale) {
		c.Locales++
		c.Stages[l.State]++
		if l.OnFire {
			c.Burning++
		}
		stages += float64(l.State)
		elevation += l.Geology.Elevation()
		soil += l.Geology.SoilDepth
		moisture += l.Geology.SoilMoisture()
		for _, f := range l.Flora {
			c.Flora += f.Population
		}
		for _, f := range l.Fauna {
			c.Fauna[f.Name] += f.Population
		}
	})
	if c.Locales > 0 {
		n := float64(c.Locales)
		c.MeanStage = stages / n
		c.MeanElevation = elevation / n
		c.MeanSoilDepth = soil / n
		c.MeanMoisture = moisture / n
	}
	return c
}
