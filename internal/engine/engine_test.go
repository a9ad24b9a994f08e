package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/talgya/beringia/internal/entropy"
	"github.com/talgya/beringia/internal/locale"
	"github.com/talgya/beringia/internal/region"
	"github.com/talgya/beringia/internal/weather"
	"github.com/talgya/beringia/internal/world"
)

func TestAdvanceCallbacks(t *testing.T) {
	e := NewEngine()
	e.ReportEvery = 5
	var ticks, reports []uint64
	e.OnTick = func(tick uint64) { ticks = append(ticks, tick) }
	e.OnReport = func(tick uint64) { reports = append(reports, tick) }

	e.Advance(12)
	if e.Tick != 12 || len(ticks) != 12 || ticks[11] != 12 {
		t.Errorf("unexpected ticks %v (engine at %d)", ticks, e.Tick)
	}
	if len(reports) != 2 || reports[0] != 5 || reports[1] != 10 {
		t.Errorf("unexpected reports %v", reports)
	}
}

func TestRunStopsAfterTicks(t *testing.T) {
	e := NewEngine()
	e.ReportEvery = 10
	var reports []uint64
	e.OnReport = func(tick uint64) { reports = append(reports, tick) }

	if err := e.Run(context.Background(), 25); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e.Tick != 25 || e.Running() {
		t.Errorf("expected stopped at 25, got %d running=%v", e.Tick, e.Running())
	}
	// Final report for the partial period.
	if len(reports) != 3 || reports[2] != 25 {
		t.Errorf("unexpected reports %v", reports)
	}
}

func TestRunNoTrailingReportOnBoundary(t *testing.T) {
	e := NewEngine()
	e.ReportEvery = 10
	n := 0
	e.OnReport = func(uint64) { n++ }
	if err := e.Run(context.Background(), 20); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 reports, got %d", n)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	e := NewEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Run(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if e.Tick != 0 {
		t.Errorf("no tick should run after cancel, got %d", e.Tick)
	}
}

func TestRunCancelledDuringPacing(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	e.OnTick = func(uint64) { cancel() }

	if err := e.Run(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if e.Tick != 1 {
		t.Errorf("expected the started tick to complete, got %d", e.Tick)
	}
}

func TestStopEndsRun(t *testing.T) {
	e := NewEngine()
	e.OnTick = func(tick uint64) {
		if tick == 3 {
			e.Stop()
		}
	}
	if err := e.Run(context.Background(), 0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e.Tick != 3 {
		t.Errorf("expected stop at 3, got %d", e.Tick)
	}
}

func TestPausedRunResumes(t *testing.T) {
	e := NewEngine()
	e.SetSpeed(0)
	var sawRunning bool
	e.OnTick = func(uint64) { sawRunning = e.Running() }

	go func() {
		time.Sleep(20 * time.Millisecond)
		e.SetSpeed(2)
	}()
	if err := e.Run(context.Background(), 3); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e.Tick != 3 || !sawRunning || e.Running() {
		t.Errorf("expected 3 ticks while running, got %d (saw running %v)", e.Tick, sawRunning)
	}
	if e.Speed() != 2 {
		t.Errorf("expected speed 2, got %v", e.Speed())
	}
}

func TestSimTime(t *testing.T) {
	tests := map[uint64]string{
		1:   "Spring Day 1, Year 1",
		90:  "Spring Day 90, Year 1",
		91:  "Summer Day 1, Year 1",
		360: "Winter Day 90, Year 1",
		361: "Spring Day 1, Year 2",
	}
	for tick, want := range tests {
		if got := SimTime(tick); got != want {
			t.Errorf("tick %d: expected %q, got %q", tick, want, got)
		}
	}
	if !strings.HasPrefix(SimTime(0), "before") {
		t.Errorf("unexpected tick 0 time %q", SimTime(0))
	}
}

func flammableRegion(t *testing.T, src entropy.Source) *region.Region {
	t.Helper()
	g, err := world.NewLattice(world.KindGrid, 4, 4)
	if err != nil {
		t.Fatalf("NewLattice: %v", err)
	}
	table := locale.DefaultStateTable()
	table[0] = locale.Transition{Increase: 0, FireStart: 1, FireSpread: 1}
	r, err := region.New(g, region.Options{Table: table, Source: src})
	if err != nil {
		t.Fatalf("region.New: %v", err)
	}
	return r
}

func TestSimulationRecordsFires(t *testing.T) {
	r := flammableRegion(t, entropy.Constant(0.5))
	sim := NewSimulation(r, Options{})

	e := NewEngine()
	e.ReportEvery = 1
	e.OnTick = sim.Tick
	e.OnReport = func(tick uint64) { sim.Report(tick) }
	e.Advance(1)

	stats := sim.Stats()
	if stats.Tick != 1 || stats.Ignitions != 16 {
		t.Errorf("expected 16 spontaneous ignitions, got %+v", stats)
	}
	if stats.Census.Burning != 16 {
		t.Errorf("expected census to see 16 burning, got %d", stats.Census.Burning)
	}
	events := sim.RecentEvents(0)
	if len(events) != 16 || events[0].Category != "fire" {
		t.Errorf("unexpected events %v", events)
	}
	if len(sim.RecentEvents(3)) != 3 {
		t.Error("RecentEvents should limit to n")
	}
	if sim.CurrentTick() != 1 {
		t.Errorf("expected current tick 1, got %d", sim.CurrentTick())
	}
	if sim.RunID == "" {
		t.Error("expected a run id")
	}
}

func TestSimulationTrimsEvents(t *testing.T) {
	r := flammableRegion(t, entropy.Constant(0.5))
	sim := NewSimulation(r, Options{MaxEvents: 5})
	sim.Tick(1)
	sim.Tick(2)
	events := sim.RecentEvents(0)
	if len(events) != 5 {
		t.Fatalf("expected 5 retained events, got %d", len(events))
	}
	if len(sim.EventsSince(1)) != 5 || len(sim.EventsSince(2)) != 0 {
		t.Errorf("unexpected EventsSince results")
	}
}

func TestSimulationJournal(t *testing.T) {
	r := flammableRegion(t, entropy.Constant(0.5))
	sim := NewSimulation(r, Options{MaxEvents: 5})
	sim.Tick(1)
	if got := sim.DrainJournal(); len(got) != 0 {
		t.Errorf("journal should be off by default, got %d events", len(got))
	}

	sim.StartJournal()
	sim.Tick(2)
	sim.Tick(3)
	got := sim.DrainJournal()
	if len(got) <= 5 {
		t.Fatalf("expected journal to outgrow retention, got %d", len(got))
	}
	if got[0].Tick != 2 || got[len(got)-1].Tick != 3 {
		t.Errorf("unexpected journal span %+v .. %+v", got[0], got[len(got)-1])
	}
	if again := sim.DrainJournal(); len(again) != 0 {
		t.Errorf("drain should empty the journal, got %d", len(again))
	}
}

func TestSimulationWeather(t *testing.T) {
	g, _ := world.NewLattice(world.KindGrid, 3, 3)
	r, err := region.New(g, region.Options{Seed: 3})
	if err != nil {
		t.Fatalf("region.New: %v", err)
	}
	cfg := weather.DefaultConfig()
	cfg.StormChance = 1
	sim := NewSimulation(r, Options{Weather: weather.NewModel(cfg, entropy.Constant(0.5))})

	sim.Tick(1)
	stats := sim.Stats()
	if stats.Storms != 1 || stats.Rainfall <= 0 {
		t.Errorf("expected a storm with rain, got %+v", stats)
	}
	var magnitude float64
	sim.View(func(r *region.Region) { magnitude = r.Magnitude })
	if magnitude <= region.DefaultMagnitude {
		t.Errorf("expected storm to raise erosion magnitude, got %v", magnitude)
	}
	if events := sim.RecentEvents(0); len(events) == 0 || events[0].Category != "weather" {
		t.Errorf("expected a weather event, got %v", events)
	}
}

func TestSimulationSubscribe(t *testing.T) {
	r := flammableRegion(t, entropy.Constant(0.5))
	sim := NewSimulation(r, Options{})
	id, ch := sim.Subscribe()

	sim.Tick(1)
	got := 0
	for len(ch) > 0 {
		e := <-ch
		if e.Tick != 1 || e.Category != "fire" {
			t.Errorf("unexpected event %+v", e)
		}
		got++
	}
	if got != 16 {
		t.Errorf("expected 16 streamed events, got %d", got)
	}

	sim.Unsubscribe(id)
	if _, ok := <-ch; ok {
		t.Error("expected channel closed after Unsubscribe")
	}
	sim.Unsubscribe(id)
	sim.Tick(2) // no panic sending to a closed subscription
}
