package locale

import (
	"errors"
	"testing"

	"github.com/talgya/beringia/internal/entropy"
	"github.com/talgya/beringia/internal/fauna"
	"github.com/talgya/beringia/internal/world"
)

func TestBurnClearsFire(t *testing.T) {
	for s := StateBurned; s <= StateClimax; s++ {
		l := New(world.Key{}, nil)
		l.State = s
		l.OnFire = true
		l.Burn()
		if l.State != StateBurned || l.OnFire {
			t.Errorf("stage %d: after burn got state=%d onFire=%v", s, l.State, l.OnFire)
		}
	}
}

func TestBurnedAlwaysRegrows(t *testing.T) {
	for _, draw := range []float64{0, 0.25, 0.5, 0.999999} {
		l := New(world.Key{}, nil)
		l.State = StateBurned
		l.PassTime(entropy.Constant(draw))
		if l.State != StateBare {
			t.Errorf("draw %v: expected regrowth to 0, got %d", draw, l.State)
		}
	}
}

func TestPassTimeOrder(t *testing.T) {
	l := New(world.Key{}, nil)
	l.State = 4
	l.OnFire = true
	// Burn, then increment from -1 (any draw < 1), then risk fire at 0 (never).
	src := entropy.NewSequence(0.9, 0.0)
	l.PassTime(src)
	if l.State != StateBare || l.OnFire {
		t.Fatalf("expected state 0 not burning, got %d %v", l.State, l.OnFire)
	}
	if src.Draws() != 2 {
		t.Errorf("expected exactly 2 draws, got %d", src.Draws())
	}
}

func TestIncrementState(t *testing.T) {
	table := DefaultStateTable()
	table[2] = Transition{Increase: 0.3, Decrease: 0.2}

	tests := []struct {
		name    string
		draw    float64
		want    int
		changed bool
	}{
		{"increase", 0.1, 3, true},
		{"unchanged", 0.5, 2, false},
		{"decrease", 0.9, 1, true},
		{"boundary not increase", 0.3, 2, false},
	}
	for _, tt := range tests {
		l := New(world.Key{}, table)
		l.State = 2
		if got := l.IncrementState(entropy.Constant(tt.draw)); got != tt.changed {
			t.Errorf("%s: expected changed=%v, got %v", tt.name, tt.changed, got)
		}
		if l.State != tt.want {
			t.Errorf("%s: expected state %d, got %d", tt.name, tt.want, l.State)
		}
	}
}

func TestClimaxStaysInRange(t *testing.T) {
	table := DefaultStateTable()
	table[StateClimax] = Transition{Increase: 1}
	l := New(world.Key{}, table)
	l.State = StateClimax
	l.IncrementState(entropy.Constant(0))
	if l.State != StateClimax {
		t.Errorf("expected clamp at climax, got %d", l.State)
	}
}

func TestRiskFire(t *testing.T) {
	l := New(world.Key{}, nil)
	l.State = 3
	if l.RiskFire(entropy.Constant(0.001)) {
		t.Error("draw above fire start should not ignite")
	}
	if !l.RiskFire(entropy.Constant(0.0001)) || !l.OnFire {
		t.Error("draw below fire start should ignite")
	}

	bare := New(world.Key{}, nil)
	if bare.RiskFire(entropy.Constant(0)) {
		t.Error("bare ground has no fire start probability")
	}
}

func TestCatchFireUsesOwnStage(t *testing.T) {
	l := New(world.Key{}, nil)
	l.State = 5
	if !l.CatchFire(entropy.Constant(0.69)) {
		t.Error("climax should catch at 0.69")
	}
	l = New(world.Key{}, nil)
	l.State = 1
	if l.CatchFire(entropy.Constant(0.1)) {
		t.Error("stage 1 should not catch at 0.1")
	}
}

func TestBorderIsInert(t *testing.T) {
	owner := New(world.Key{X: 0, Y: 0}, nil)
	owner.Geology.ElevationBase = 7
	owner.Geology.Recalculate()

	b := NewBorder(world.Key{X: -1, Y: 0}, owner)
	b.PassTime(entropy.Constant(0))
	if b.State != StateBare || b.OnFire {
		t.Errorf("border changed: state=%d onFire=%v", b.State, b.OnFire)
	}
	b.State = 5
	if b.CatchFire(entropy.Constant(0)) {
		t.Error("border should never catch fire")
	}
	if !b.Geology.Inert() || b.Geology.Elevation() != owner.Geology.Elevation() {
		t.Errorf("expected inert mirrored geology, got %+v", b.Geology)
	}
}

func TestFaunaNamed(t *testing.T) {
	l := New(world.Key{}, nil)
	l.Fauna = append(l.Fauna, fauna.New("voles", fauna.VariantSmallHerbivore, 2))
	if f, ok := l.FaunaNamed("voles"); !ok || f.Population != 2 {
		t.Errorf("expected voles, got %v %v", f, ok)
	}
	if _, ok := l.FaunaNamed("mammoths"); ok {
		t.Error("unexpected population")
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	l := New(world.Key{X: 2, Y: 3}, nil)
	l.Fauna = append(l.Fauna, fauna.New("hares", fauna.VariantSmallHerbivore, 4))
	s := l.Snapshot()
	l.Fauna[0].Population = 0
	l.Geology.Accrete(1)

	if s.Fauna[0].Population != 4 {
		t.Errorf("snapshot fauna changed: %v", s.Fauna[0].Population)
	}
	if s.Geology.Elevation == l.Geology.Elevation() {
		t.Error("snapshot geology should not track later changes")
	}
	if s.Location != (world.Key{X: 2, Y: 3}) {
		t.Errorf("unexpected location %v", s.Location)
	}
}

func TestStateTableValidate(t *testing.T) {
	if err := DefaultStateTable().Validate(); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}

	missing := DefaultStateTable()
	delete(missing, 3)
	if err := missing.Validate(); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("expected ErrInvalidTable for missing state, got %v", err)
	}

	bad := DefaultStateTable()
	bad[1] = Transition{Increase: 1.5}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("expected ErrInvalidTable for probability > 1, got %v", err)
	}

	climax := DefaultStateTable()
	climax[StateClimax] = Transition{Increase: 0.1}
	if err := climax.Validate(); err == nil {
		t.Error("expected error for climax increase")
	}

	extra := DefaultStateTable()
	extra[6] = Transition{}
	if err := extra.Validate(); err == nil {
		t.Error("expected error for out-of-range state")
	}
}
