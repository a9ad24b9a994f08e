package world

import (
	"math"
	"testing"
)

func TestElevationFieldDeterministic(t *testing.T) {
	g, _ := NewLattice(KindHex, 8, 8)
	cfg := DefaultGenConfig()
	cfg.Seed = 42

	a := ElevationField(g, cfg)
	b := ElevationField(g, cfg)
	if len(a) != g.Len() {
		t.Fatalf("expected %d values, got %d", g.Len(), len(a))
	}
	for k, v := range a {
		if b[k] != v {
			t.Fatalf("%v: %v vs %v", k, v, b[k])
		}
		if v < cfg.Mean-cfg.Amplitude-1e-9 || v > cfg.Mean+cfg.Amplitude+1e-9 {
			t.Errorf("%v: elevation %v outside mean±amplitude", k, v)
		}
	}
}

func TestElevationFieldSkipsBorder(t *testing.T) {
	g, _ := NewLattice(KindGrid, 3, 3)
	border := g.AttachBorder()
	cfg := DefaultGenConfig()
	cfg.Seed = 7
	field := ElevationField(g, cfg)
	for _, b := range border {
		if _, ok := field[b]; ok {
			t.Errorf("border node %v should not be sampled", b)
		}
	}
	if len(field) != 9 {
		t.Errorf("expected 9 interior values, got %d", len(field))
	}
}

func TestDescendFollowsSteepestPath(t *testing.T) {
	g := NewGraph()
	a, b, c, d := Key{X: 0}, Key{X: 1}, Key{X: 2}, Key{X: 3}
	g.AddEdge(a, b)
	g.AddEdge(a, c)
	g.AddEdge(c, d)
	elev := map[Key]float64{a: 10, b: 8, c: 5, d: 1}

	path := Descend(g, func(k Key) float64 { return elev[k] }, a, 0)
	want := []Key{a, c, d}
	if len(path) != len(want) {
		t.Fatalf("expected path %v, got %v", want, path)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("expected path %v, got %v", want, path)
		}
	}
}

func TestDescendStopsAtMinimum(t *testing.T) {
	g, _ := NewLattice(KindGrid, 3, 3)
	flat := func(Key) float64 { return 1 }
	path := Descend(g, flat, Key{X: 1, Y: 1}, 0)
	if len(path) != 1 {
		t.Errorf("flat terrain should not move, got %v", path)
	}
	if Descend(g, flat, Key{X: 9, Y: 9}, 0) != nil {
		t.Error("unknown start should return nil")
	}
}

func TestPositionHexSpacing(t *testing.T) {
	g, _ := NewLattice(KindHex, 4, 4)
	k := Key{X: 1, Y: 1}
	for _, n := range g.Neighbors(k) {
		x0, y0 := g.Position(k)
		x1, y1 := g.Position(n)
		d := math.Hypot(x1-x0, y1-y0)
		if math.Abs(d-1) > 1e-9 {
			t.Errorf("%v→%v: expected unit spacing, got %v", k, n, d)
		}
	}
}
