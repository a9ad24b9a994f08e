// Simulation ties the region, weather and biota together and runs them each tick.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/talgya/beringia/internal/region"
	"github.com/talgya/beringia/internal/weather"
)

// DefaultMaxEvents bounds the in-memory event log.
const DefaultMaxEvents = 1000

// Event is a notable occurrence in the region.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "fire", "weather", "biota"
}

// SimStats tracks run-level statistics. Counters are cumulative since the
// start of the run; Census is refreshed at every report.
type SimStats struct {
	Tick        uint64        `json:"tick"`
	Ignitions   int           `json:"ignitions"` // spontaneous
	Spread      int           `json:"spread"`
	Burned      int           `json:"burned"`
	Transport   float64       `json:"transport"`
	Rainfall    float64       `json:"rainfall"`
	Storms      int           `json:"storms"`
	Census      region.Census `json:"census"`
	LastWeather string        `json:"last_weather,omitempty"`
}

// Options configures a Simulation.
type Options struct {
	Weather   *weather.Model // nil disables weather
	Biota     bool           // run the flora/fauna pass after every tick
	MaxEvents int            // 0 → DefaultMaxEvents
}

// Simulation holds the region and everything driven alongside it.
// Every method is safe to call from an observer goroutine while an Engine
// drives Tick.
type Simulation struct {
	RunID string

	mu        sync.Mutex
	region    *region.Region
	weather   *weather.Model
	biota     bool
	magnitude float64 // dry-weather erosion magnitude
	maxEvents int
	events    []Event
	stats     SimStats
	lastTick  uint64

	subs    map[int]chan Event
	nextSub int

	// Every event since the last DrainJournal, uncapped, once StartJournal
	// has been called.
	journaling bool
	journal    []Event
}

// NewSimulation wraps a region for driving by an Engine.
func NewSimulation(r *region.Region, opts Options) *Simulation {
	s := &Simulation{
		RunID:     uuid.NewString(),
		region:    r,
		weather:   opts.Weather,
		biota:     opts.Biota,
		magnitude: r.Magnitude,
		maxEvents: opts.MaxEvents,
	}
	if s.maxEvents <= 0 {
		s.maxEvents = DefaultMaxEvents
	}
	s.stats.Census = r.Census()
	return s
}

// Tick runs one region tick. Wire it to Engine.OnTick.
func (s *Simulation) Tick(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTick = tick

	if s.weather != nil {
		c := s.weather.Next(tick)
		sw := weather.MapToSim(&c, s.magnitude)
		s.region.Magnitude = sw.Magnitude
		if sw.WaterInput > 0 {
			s.region.WaterInput(sw.WaterInput)
		}
		s.stats.Rainfall += c.Rainfall
		s.stats.LastWeather = sw.Description
		if c.IsStorm {
			s.stats.Storms++
			s.record(tick, "weather", fmt.Sprintf("%s, %.3f rainfall", sw.Description, c.Rainfall))
		}
	}

	res := s.region.Tick()
	s.stats.Tick = tick
	s.stats.Ignitions += len(res.Ignited)
	s.stats.Spread += res.Spread
	s.stats.Burned += res.Burned
	s.stats.Transport += res.Transport

	for _, k := range res.Ignited {
		s.record(tick, "fire", fmt.Sprintf("fire broke out at (%d,%d)", k.X, k.Y))
	}
	if res.Spread > 0 {
		s.record(tick, "fire", fmt.Sprintf("fire spread to %d locales", res.Spread))
	}

	if s.biota {
		if err := s.region.PassBiota(); err != nil {
			slog.Warn("biota pass failed", "tick", tick, "error", err)
			s.record(tick, "biota", err.Error())
		}
	}
}

// Report refreshes the census and logs a summary. Wire it to Engine.OnReport.
func (s *Simulation) Report(tick uint64) SimStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Census = s.region.Census()
	c := s.stats.Census
	slog.Info("region report",
		"tick", tick,
		"sim_time", SimTime(tick),
		"burning", c.Burning,
		"mean_stage", fmt.Sprintf("%.3f", c.MeanStage),
		"mean_elevation", fmt.Sprintf("%.4f", c.MeanElevation),
		"ignitions", s.stats.Ignitions,
		"spread", s.stats.Spread,
		"transport", fmt.Sprintf("%.5f", s.stats.Transport),
	)
	return s.stats
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTick
}

// Stats returns a copy of the current statistics.
func (s *Simulation) Stats() SimStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// RecentEvents returns up to n of the latest events, oldest first.
// n <= 0 returns all retained events.
func (s *Simulation) RecentEvents(n int) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if n > 0 && len(s.events) > n {
		start = len(s.events) - n
	}
	out := make([]Event, len(s.events)-start)
	copy(out, s.events[start:])
	return out
}

// EventsSince returns retained events with a tick greater than tick.
func (s *Simulation) EventsSince(tick uint64) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.Tick > tick {
			out = append(out, e)
		}
	}
	return out
}

// StartJournal makes the simulation keep every event it records until the
// next DrainJournal, regardless of MaxEvents.
func (s *Simulation) StartJournal() {
	s.mu.Lock()
	s.journaling = true
	s.mu.Unlock()
}

// DrainJournal returns and forgets the journalled events, oldest first.
func (s *Simulation) DrainJournal() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.journal
	s.journal = nil
	return out
}

// View calls fn with the region while no tick is running. fn must not keep
// the region after returning.
func (s *Simulation) View(fn func(*region.Region)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.region)
}

// Subscribe returns a channel that receives every event recorded after the
// call. A subscriber that falls more than its buffer behind misses events.
func (s *Simulation) Subscribe() (int, <-chan Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]chan Event)
	}
	s.nextSub++
	ch := make(chan Event, 256)
	s.subs[s.nextSub] = ch
	return s.nextSub, ch
}

// Unsubscribe closes and forgets a subscription.
func (s *Simulation) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Simulation) record(tick uint64, category, desc string) {
	e := Event{Tick: tick, Description: desc, Category: category}
	s.events = append(s.events, e)
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}
	if s.journaling {
		s.journal = append(s.journal, e)
	}
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
