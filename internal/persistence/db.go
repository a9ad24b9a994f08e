// Package persistence records simulation run history in SQLite: run
// metadata, periodic statistics and notable events. Region state itself is
// never saved; a run is reproduced from its seed and configuration.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/beringia/internal/engine"
)

// DB wraps a SQLite connection for run history.
type DB struct {
	conn *sqlx.DB
}

// Run describes one simulation run.
type Run struct {
	ID        string `db:"id" json:"id"`
	StartedAt string `db:"started_at" json:"started_at"` // RFC 3339
	Seed      int64  `db:"seed" json:"seed"`
	Topology  string `db:"topology" json:"topology"`
	Width     int    `db:"width" json:"width"`
	Height    int    `db:"height" json:"height"`
	Config    string `db:"config" json:"config,omitempty"` // effective config, YAML
}

// StatsRow is one stored statistics report.
type StatsRow struct {
	RunID         string  `db:"run_id" json:"run_id"`
	Tick          uint64  `db:"tick" json:"tick"`
	Burning       int     `db:"burning" json:"burning"`
	MeanStage     float64 `db:"mean_stage" json:"mean_stage"`
	MeanElevation float64 `db:"mean_elevation" json:"mean_elevation"`
	MeanSoilDepth float64 `db:"mean_soil_depth" json:"mean_soil_depth"`
	MeanMoisture  float64 `db:"mean_moisture" json:"mean_moisture"`
	Flora         float64 `db:"flora" json:"flora"`
	Ignitions     int     `db:"ignitions" json:"ignitions"`
	Spread        int     `db:"spread" json:"spread"`
	Burned        int     `db:"burned" json:"burned"`
	Transport     float64 `db:"transport" json:"transport"`
	Rainfall      float64 `db:"rainfall" json:"rainfall"`
	Storms        int     `db:"storms" json:"storms"`
	StagesJSON    string  `db:"stages_json" json:"-"`
	FaunaJSON     string  `db:"fauna_json" json:"-"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		topology TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		config TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS tick_stats (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		burning INTEGER NOT NULL,
		mean_stage REAL NOT NULL,
		mean_elevation REAL NOT NULL,
		mean_soil_depth REAL NOT NULL,
		mean_moisture REAL NOT NULL,
		flora REAL NOT NULL,
		ignitions INTEGER NOT NULL,
		spread INTEGER NOT NULL,
		burned INTEGER NOT NULL,
		transport REAL NOT NULL,
		rainfall REAL NOT NULL,
		storms INTEGER NOT NULL,
		stages_json TEXT NOT NULL,
		fauna_json TEXT NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartRun records a new run. A zero StartedAt is filled with the current time.
func (db *DB) StartRun(r Run) error {
	if r.StartedAt == "" {
		r.StartedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := db.conn.NamedExec(`INSERT INTO runs
		(id, started_at, seed, topology, width, height, config)
		VALUES (:id, :started_at, :seed, :topology, :width, :height, :config)`, r)
	if err != nil {
		return fmt.Errorf("start run %s: %w", r.ID, err)
	}
	return db.SaveMeta("last_run", r.ID)
}

// GetRun loads one run.
func (db *DB) GetRun(id string) (Run, error) {
	var r Run
	err := db.conn.Get(&r, "SELECT id, started_at, seed, topology, width, height, config FROM runs WHERE id = ?", id)
	return r, err
}

// Runs returns every run, newest first.
func (db *DB) Runs() ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT id, started_at, seed, topology, width, height, config FROM runs ORDER BY started_at DESC, id")
	return runs, err
}

// SaveStats stores a statistics report. Reporting the same tick twice
// replaces the earlier row.
func (db *DB) SaveStats(runID string, s engine.SimStats) error {
	stages, err := json.Marshal(s.Census.Stages)
	if err != nil {
		return fmt.Errorf("encode stages: %w", err)
	}
	fauna, err := json.Marshal(s.Census.Fauna)
	if err != nil {
		return fmt.Errorf("encode fauna: %w", err)
	}
	row := StatsRow{
		RunID:         runID,
		Tick:          s.Tick,
		Burning:       s.Census.Burning,
		MeanStage:     s.Census.MeanStage,
		MeanElevation: s.Census.MeanElevation,
		MeanSoilDepth: s.Census.MeanSoilDepth,
		MeanMoisture:  s.Census.MeanMoisture,
		Flora:         s.Census.Flora,
		Ignitions:     s.Ignitions,
		Spread:        s.Spread,
		Burned:        s.Burned,
		Transport:     s.Transport,
		Rainfall:      s.Rainfall,
		Storms:        s.Storms,
		StagesJSON:    string(stages),
		FaunaJSON:     string(fauna),
	}
	_, err = db.conn.NamedExec(`INSERT OR REPLACE INTO tick_stats
		(run_id, tick, burning, mean_stage, mean_elevation, mean_soil_depth, mean_moisture,
		 flora, ignitions, spread, burned, transport, rainfall, storms, stages_json, fauna_json)
		VALUES (:run_id, :tick, :burning, :mean_stage, :mean_elevation, :mean_soil_depth, :mean_moisture,
		 :flora, :ignitions, :spread, :burned, :transport, :rainfall, :storms, :stages_json, :fauna_json)`, row)
	if err != nil {
		return fmt.Errorf("save stats tick %d: %w", s.Tick, err)
	}
	return nil
}

// History returns the latest limit statistics rows of a run in tick order.
// limit <= 0 returns all of them.
func (db *DB) History(runID string, limit int) ([]StatsRow, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	var rows []StatsRow
	err := db.conn.Select(&rows, `SELECT * FROM (
		SELECT * FROM tick_stats WHERE run_id = ? ORDER BY tick DESC LIMIT ?
	) ORDER BY tick`, runID, limit)
	return rows, err
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(runID string, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (run_id, tick, description, category) VALUES (?, ?, ?, ?)",
			runID, e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events of a run, newest first.
func (db *DB) RecentEvents(runID string, limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		runID, limit,
	)
	return events, err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// Recorder returns an Engine.OnReport-compatible function that refreshes
// the simulation's statistics and stores them together with every event
// raised since the previous report. It turns on the simulation's journal.
func (db *DB) Recorder(sim *engine.Simulation) func(tick uint64) {
	sim.StartJournal()
	return func(tick uint64) {
		stats := sim.Report(tick)
		if err := db.SaveStats(sim.RunID, stats); err != nil {
			slog.Error("stats save failed", "tick", tick, "error", err)
		}
		if err := db.SaveEvents(sim.RunID, sim.DrainJournal()); err != nil {
			slog.Error("event save failed", "tick", tick, "error", err)
		}
		if err := db.SaveMeta("last_tick", fmt.Sprintf("%d", tick)); err != nil {
			slog.Error("meta save failed", "tick", tick, "error", err)
		}
	}
}
