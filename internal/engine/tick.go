// Package engine provides the tick-based simulation loop.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Calendar. One tick is one day.
const (
	TicksPerSeason = 90
	TicksPerYear   = 4 * TicksPerSeason
)

// Engine drives the simulation forward.
type Engine struct {
	Tick        uint64        // Current tick counter (monotonic, never resets)
	Interval    time.Duration // Base tick interval; 0 runs flat out
	ReportEvery uint64        // OnReport period in ticks; 0 disables reports

	// Speed and running state are read by API handlers while Run loops.
	mu      sync.Mutex
	speed   float64 // Multiplier: 1.0 = real-time, 0 = paused
	running bool

	// Callbacks, populated during setup.
	OnTick   func(tick uint64) // Every tick
	OnReport func(tick uint64) // Every ReportEvery ticks, and once when a run ends
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		speed:       1.0,
		ReportEvery: 10,
	}
}

// Speed returns the pacing multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the pacing multiplier. Zero or less pauses the loop.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()
}

// Running reports whether Run is looping.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) setRunning(running bool) {
	e.mu.Lock()
	e.running = running
	e.mu.Unlock()
}

// Run advances the simulation until ticks more ticks have run (0 = no
// limit), Stop is called or ctx is cancelled. Cancellation is only observed
// between ticks; a tick in progress always completes.
func (e *Engine) Run(ctx context.Context, ticks uint64) error {
	e.setRunning(true)
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed(), "ticks", ticks)
	defer func() {
		e.setRunning(false)
		slog.Info("simulation engine stopped", "tick", e.Tick)
	}()

	end := e.Tick + ticks
	lastReport := e.Tick
	defer func() {
		if e.Tick != lastReport && e.OnReport != nil {
			e.OnReport(e.Tick)
		}
	}()

	for e.Running() && (ticks == 0 || e.Tick < end) {
		if err := ctx.Err(); err != nil {
			return err
		}
		speed := e.Speed()
		if speed <= 0 {
			// Paused: sleep briefly and check again.
			if err := sleep(ctx, 100*time.Millisecond); err != nil {
				return err
			}
			continue
		}

		start := time.Now()

		e.step()
		if e.ReportEvery > 0 && e.Tick%e.ReportEvery == 0 {
			lastReport = e.Tick
		}

		// Sleep for the remainder of the tick interval, adjusted for speed.
		if e.Interval > 0 {
			elapsed := time.Since(start)
			target := time.Duration(float64(e.Interval) / speed)
			if elapsed < target {
				if err := sleep(ctx, target-elapsed); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Advance runs n ticks immediately, ignoring pacing.
func (e *Engine) Advance(n uint64) {
	for i := uint64(0); i < n; i++ {
		e.step()
	}
}

// Stop halts the simulation loop after the current tick.
func (e *Engine) Stop() {
	e.setRunning(false)
}

// step advances the simulation by one tick.
func (e *Engine) step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}

	if e.ReportEvery > 0 && e.Tick%e.ReportEvery == 0 && e.OnReport != nil {
		e.OnReport(e.Tick)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SeasonName returns the name of a season number.
func SeasonName(season uint8) string {
	names := [4]string{"Spring", "Summer", "Autumn", "Winter"}
	return names[season%4]
}

// SimTime returns a human-readable simulation date for a tick number.
// Tick 0 is the eve of the first day.
func SimTime(tick uint64) string {
	if tick == 0 {
		return "before Spring Day 1, Year 1"
	}
	day := tick - 1
	years := day/TicksPerYear + 1
	season := uint8((day % TicksPerYear) / TicksPerSeason)
	dayOfSeason := day%TicksPerSeason + 1
	return fmt.Sprintf("%s Day %d, Year %d", SeasonName(season), dayOfSeason, years)
}
