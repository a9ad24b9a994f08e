package locale

import (
	"errors"
	"fmt"
)

// Succession stages. Burned ground is -1; climax vegetation is 5.
const (
	StateBurned = -1
	StateBare   = 0
	StateClimax = 5
)

// ErrInvalidTable is wrapped by every StateTable validation failure.
var ErrInvalidTable = errors.New("invalid succession table")

// Transition holds the per-tick probabilities for one succession stage.
type Transition struct {
	Increase   float64 `json:"increase" yaml:"increase"`
	Decrease   float64 `json:"decrease" yaml:"decrease"`
	FireStart  float64 `json:"fire_start" yaml:"fire_start"`
	FireSpread float64 `json:"fire_spread" yaml:"fire_spread"`
}

// StateTable maps a succession stage to its transition probabilities.
type StateTable map[int]Transition

// DefaultStateTable returns the calibrated boreal succession table.
func DefaultStateTable() StateTable {
	return StateTable{
		-1: {Increase: 1.00},
		0:  {Increase: 0.20},
		1:  {Increase: 0.10, FireStart: 0.0005, FireSpread: 0.10},
		2:  {Increase: 0.15, FireStart: 0.0005, FireSpread: 0.20},
		3:  {Increase: 0.10, FireStart: 0.0005, FireSpread: 0.30},
		4:  {Increase: 0.10, FireStart: 0.0005, FireSpread: 0.45},
		5:  {Increase: 0.00, FireStart: 0.0005, FireSpread: 0.70},
	}
}

// Get returns the transition for a stage. Unknown stages never change.
func (t StateTable) Get(state int) Transition {
	return t[state]
}

// Validate checks that every stage from StateBurned to StateClimax is
// present, that each probability lies in [0, 1] and that no transition
// would push the stage out of range.
func (t StateTable) Validate() error {
	for s := StateBurned; s <= StateClimax; s++ {
		tr, ok := t[s]
		if !ok {
			return fmt.Errorf("%w: missing state %d", ErrInvalidTable, s)
		}
		for name, p := range map[string]float64{
			"increase":    tr.Increase,
			"decrease":    tr.Decrease,
			"fire_start":  tr.FireStart,
			"fire_spread": tr.FireSpread,
		} {
			if p < 0 || p > 1 {
				return fmt.Errorf("%w: state %d %s probability %v outside [0,1]", ErrInvalidTable, s, name, p)
			}
		}
		if tr.Increase+tr.Decrease > 1 {
			return fmt.Errorf("%w: state %d increase+decrease exceeds 1", ErrInvalidTable, s)
		}
	}
	if t[StateClimax].Increase > 0 {
		return fmt.Errorf("%w: climax state cannot increase", ErrInvalidTable)
	}
	if t[StateBurned].Decrease > 0 {
		return fmt.Errorf("%w: burned state cannot decrease", ErrInvalidTable)
	}
	for s := range t {
		if s < StateBurned || s > StateClimax {
			return fmt.Errorf("%w: state %d out of range", ErrInvalidTable, s)
		}
	}
	return nil
}
