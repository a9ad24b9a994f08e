package geology

// Hydrology tracks soil water. The unit of water is the acre-foot.
// WaterContent never stays above WaterCapacity: excess either runs off or
// pools as standing water.
type Hydrology struct {
	WaterContent  float64 `json:"water_content"`
	WaterCapacity float64 `json:"water_capacity"`
	WaterDepth    float64 `json:"water_depth"` // standing water above the soil

	// Outflow selects how excess is handled: runoff (true) or standing water.
	Outflow bool `json:"outflow"`
}

// NewHydrology creates a hydrology with runoff enabled.
func NewHydrology(content, capacity float64) *Hydrology {
	h := &Hydrology{
		WaterContent:  content,
		WaterCapacity: capacity,
		Outflow:       true,
	}
	h.handleExcess()
	return h
}

// UpdateCapacity changes the capacity, shedding any water that no longer fits.
func (h *Hydrology) UpdateCapacity(capacity float64) float64 {
	h.WaterCapacity = capacity
	return h.handleExcess()
}

// Accumulate adds water and returns the runoff produced, if any.
// Standing water is not runoff and is reported as 0.
func (h *Hydrology) Accumulate(amount float64) float64 {
	h.WaterContent += amount
	if h.WaterContent < 0 {
		h.WaterContent = 0
	}
	return h.handleExcess()
}

func (h *Hydrology) handleExcess() float64 {
	if h.WaterCapacity < 0 {
		h.WaterCapacity = 0
	}
	if h.WaterContent <= h.WaterCapacity {
		return 0
	}
	excess := h.WaterContent - h.WaterCapacity
	h.WaterContent = h.WaterCapacity
	if h.Outflow {
		return excess
	}
	h.WaterDepth += excess
	return 0
}
