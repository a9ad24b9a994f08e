package entropy

import "testing"

func TestSeededIsDeterministic(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)
	for i := 0; i < 100; i++ {
		x, y := a.Float64(), b.Float64()
		if x != y {
			t.Fatalf("draw %d differs: %v vs %v", i, x, y)
		}
		if x < 0 || x >= 1 {
			t.Fatalf("draw %d out of range: %v", i, x)
		}
	}
}

func TestSeededDiffersAcrossSeeds(t *testing.T) {
	a := NewSeeded(1)
	b := NewSeeded(2)
	same := 0
	for i := 0; i < 20; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	if same == 20 {
		t.Fatal("expected different seeds to produce different streams")
	}
}

func TestSequenceCycles(t *testing.T) {
	s := NewSequence(0.1, 0.9)
	want := []float64{0.1, 0.9, 0.1, 0.9}
	for i, w := range want {
		if got := s.Float64(); got != w {
			t.Fatalf("draw %d: expected %v, got %v", i, w, got)
		}
	}
	if s.Draws() != 4 {
		t.Errorf("expected 4 draws, got %d", s.Draws())
	}
}

func TestEmptySequenceReturnsZero(t *testing.T) {
	s := NewSequence()
	if got := s.Float64(); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestCryptoInRange(t *testing.T) {
	var c Crypto
	for i := 0; i < 50; i++ {
		v := c.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("crypto draw out of range: %v", v)
		}
	}
}

func TestFromSeed(t *testing.T) {
	if _, ok := FromSeed(0).(Crypto); !ok {
		t.Error("expected seed 0 to yield a crypto source")
	}
	if _, ok := FromSeed(7).(*Seeded); !ok {
		t.Error("expected non-zero seed to yield a seeded source")
	}
}
