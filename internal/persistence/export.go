package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/beringia/internal/engine"
)

// ExportRecord is one line of an exported run. Exactly one of Run, Stats
// or Event is set, matching Kind.
type ExportRecord struct {
	Kind   string          `json:"kind"` // "run", "stats", "event"
	Run    *Run            `json:"run,omitempty"`
	Stats  *StatsRow       `json:"stats,omitempty"`
	Stages json.RawMessage `json:"stages,omitempty"`
	Fauna  json.RawMessage `json:"fauna,omitempty"`
	Event  *engine.Event   `json:"event,omitempty"`
}

// Events returns every stored event of a run in the order it was raised.
func (db *DB) Events(runID string) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events WHERE run_id = ? ORDER BY id", runID)
	return events, err
}

// Export writes a run as zstd-compressed JSON lines: the run header, its
// statistics in tick order, then its events. It returns the number of
// records written.
func (db *DB) Export(runID string, w io.Writer) (int, error) {
	run, err := db.GetRun(runID)
	if err != nil {
		return 0, fmt.Errorf("export run %s: %w", runID, err)
	}
	rows, err := db.History(runID, 0)
	if err != nil {
		return 0, fmt.Errorf("export stats: %w", err)
	}
	events, err := db.Events(runID)
	if err != nil {
		return 0, fmt.Errorf("export events: %w", err)
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriterSize(enc, 128*1024)
	n := 0
	write := func(rec ExportRecord) error {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := bw.Write(b); err != nil {
			return err
		}
		n++
		return bw.WriteByte('\n')
	}

	if err := write(ExportRecord{Kind: "run", Run: &run}); err != nil {
		enc.Close()
		return n, err
	}
	for i := range rows {
		row := &rows[i]
		rec := ExportRecord{
			Kind:   "stats",
			Stats:  row,
			Stages: json.RawMessage(row.StagesJSON),
			Fauna:  json.RawMessage(row.FaunaJSON),
		}
		if err := write(rec); err != nil {
			enc.Close()
			return n, err
		}
	}
	for i := range events {
		if err := write(ExportRecord{Kind: "event", Event: &events[i]}); err != nil {
			enc.Close()
			return n, err
		}
	}

	if err := bw.Flush(); err != nil {
		enc.Close()
		return n, err
	}
	return n, enc.Close()
}

// ReadExport decodes a stream written by Export.
func ReadExport(r io.Reader) ([]ExportRecord, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var records []ExportRecord
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec ExportRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return records, fmt.Errorf("record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	return records, sc.Err()
}
