// Package api provides a read-only HTTP API for observing a running region.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/beringia/internal/engine"
	"github.com/talgya/beringia/internal/locale"
	"github.com/talgya/beringia/internal/persistence"
	"github.com/talgya/beringia/internal/region"
	"github.com/talgya/beringia/internal/world"
)

// Server serves region state over HTTP.
type Server struct {
	Sim     *engine.Simulation
	Eng     *engine.Engine
	DB      *persistence.DB // nil disables history endpoints
	Port    int
	Limiter *RateLimiter // nil disables rate limiting
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/map", s.handleMap)
	mux.HandleFunc("GET /api/v1/locale/{x}/{y}", s.handleLocale)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	mux.HandleFunc("GET /api/v1/stats/history", s.handleStatsHistory)
	mux.HandleFunc("GET /api/v1/runs", s.handleRuns)
	mux.HandleFunc("GET /api/v1/stream", s.handleStream)

	var h http.Handler = mux
	if s.Limiter != nil {
		h = s.Limiter.Middleware(h)
	}
	return corsMiddleware(h)
}

// Start serves the API until ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "history", s.DB != nil)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// CORS_ORIGINS holds a comma-separated list of extra allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	tick := s.Sim.CurrentTick()
	stats := s.Sim.Stats()

	status := map[string]any{
		"name":      "beringia",
		"run_id":    s.Sim.RunID,
		"tick":      tick,
		"sim_time":  engine.SimTime(tick),
		"locales":   stats.Census.Locales,
		"burning":   stats.Census.Burning,
		"ignitions": stats.Ignitions,
		"spread":    stats.Spread,
		"transport": humanize.FormatFloat("#,###.#####", stats.Transport),
		"weather":   stats.LastWeather,
	}
	if s.Eng != nil {
		status["speed"] = s.Eng.Speed()
		status["running"] = s.Eng.Running()
	}
	writeJSON(w, status)
}

// handleMap returns every locale's stage, fire flag and elevation for renderers.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	type cell struct {
		X         int     `json:"x"`
		Y         int     `json:"y"`
		State     int     `json:"state"`
		OnFire    bool    `json:"on_fire,omitempty"`
		Border    bool    `json:"border,omitempty"`
		Elevation float64 `json:"elevation"`
	}

	resp := map[string]any{}
	s.Sim.View(func(rg *region.Region) {
		cells := make([]cell, 0, rg.Len())
		for _, l := range rg.Locales() {
			cells = append(cells, cell{
				X:         l.Location.X,
				Y:         l.Location.Y,
				State:     l.State,
				OnFire:    l.OnFire,
				Border:    l.Border,
				Elevation: l.Geology.Elevation(),
			})
		}
		resp["time"] = rg.Time
		resp["locales"] = cells
		if g, ok := rg.Graph().(*world.Graph); ok {
			resp["topology"] = string(g.Kind())
			resp["width"] = g.Width()
			resp["height"] = g.Height()
		}
	})
	writeJSON(w, resp)
}

func (s *Server) handleLocale(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.Atoi(r.PathValue("x"))
	y, errY := strconv.Atoi(r.PathValue("y"))
	if errX != nil || errY != nil {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}

	var (
		snap locale.Snapshot
		ok   bool
	)
	s.Sim.View(func(rg *region.Region) {
		snap, ok = rg.Snapshot(world.Key{X: x, Y: y})
	})
	if !ok {
		http.Error(w, "locale not found", http.StatusNotFound)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	category := r.URL.Query().Get("category")
	if category == "" {
		writeJSON(w, s.Sim.RecentEvents(limit))
		return
	}

	filtered := []engine.Event{}
	for _, e := range s.Sim.RecentEvents(0) {
		if e.Category == category {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	writeJSON(w, filtered)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Stats())
}

func (s *Server) handleStatsHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	runID := s.Sim.RunID
	if id := r.URL.Query().Get("run"); id != "" {
		runID = id
	}
	limit := 30
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	rows, err := s.DB.History(runID, limit)
	if err != nil {
		slog.Error("stats history query failed", "run", runID, "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []persistence.StatsRow{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	runs, err := s.DB.Runs()
	if err != nil {
		slog.Error("runs query failed", "error", err)
		http.Error(w, "runs unavailable", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []persistence.Run{}
	}
	writeJSON(w, runs)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
