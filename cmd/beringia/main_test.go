package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/beringia/internal/config"
	"github.com/talgya/beringia/internal/persistence"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func smallConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Region.Width, cfg.Region.Height = 5, 4
	cfg.Engine.Ticks = 12
	cfg.Engine.ReportEvery = 5
	cfg.Storage.Path = filepath.Join(t.TempDir(), "nested", "runs.db")
	return cfg
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Errorf("expected version in output, got %q", out.String())
	}
}

func TestConfigCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "topology: grid") {
		t.Errorf("expected YAML config, got %q", out.String())
	}
}

func TestApplyRunFlags(t *testing.T) {
	cmd := newRunCmd()
	if err := cmd.ParseFlags([]string{"--ticks", "7", "--topology", "hex", "--border=false", "--db", "", "--interval", "10ms"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	cfg := config.Default()
	if err := applyRunFlags(cmd, cfg); err != nil {
		t.Fatalf("applyRunFlags: %v", err)
	}
	if cfg.Engine.Ticks != 7 || cfg.Region.Topology != "hex" || cfg.Region.Border {
		t.Errorf("flags not applied: %+v %+v", cfg.Engine, cfg.Region)
	}
	if cfg.Storage.Path != "" {
		t.Errorf("expected storage disabled, got %q", cfg.Storage.Path)
	}
	if cfg.Engine.Interval.Milliseconds() != 10 {
		t.Errorf("expected 10ms interval, got %v", cfg.Engine.Interval)
	}
	// Unset flags leave the configuration alone.
	if cfg.Region.Seed != 42 || cfg.Region.Width != 20 {
		t.Errorf("unset flags changed config: %+v", cfg.Region)
	}
}

func TestRunSimulation(t *testing.T) {
	cfg := smallConfig(t)
	var out bytes.Buffer
	if err := runSimulation(context.Background(), cfg, quietLogger(), &out); err != nil {
		t.Fatalf("runSimulation: %v", err)
	}
	summary := out.String()
	for _, want := range []string{"finished", "12 ticks", "hares:", "mean stage"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}

	db, err := persistence.Open(cfg.Storage.Path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	runs, err := db.Runs()
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one run, got %d (%v)", len(runs), err)
	}
	if runs[0].Seed != 42 || !strings.Contains(runs[0].Config, "topology: grid") {
		t.Errorf("unexpected run %+v", runs[0])
	}
	rows, err := db.History(runs[0].ID, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	// Reports at 5 and 10, plus the final report at 12.
	if len(rows) != 3 || rows[2].Tick != 12 {
		t.Errorf("unexpected history %+v", rows)
	}
}

func TestRunSimulationInterrupted(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Engine.Ticks = 0
	cfg.Storage.Path = ""
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	if err := runSimulation(ctx, cfg, quietLogger(), &out); err != nil {
		t.Fatalf("runSimulation: %v", err)
	}
	if !strings.Contains(out.String(), "interrupted") {
		t.Errorf("expected interrupted summary, got %q", out.String())
	}
}

func TestRunSimulationInvalidConfig(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Region.Topology = "cube"
	if err := runSimulation(context.Background(), cfg, quietLogger(), &bytes.Buffer{}); err == nil {
		t.Error("expected error")
	}
}

func TestRunsAndExportCmds(t *testing.T) {
	cfg := smallConfig(t)
	if err := runSimulation(context.Background(), cfg, quietLogger(), &bytes.Buffer{}); err != nil {
		t.Fatalf("runSimulation: %v", err)
	}

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"runs", "--db", cfg.Storage.Path, "--json"})
	if err := root.Execute(); err != nil {
		t.Fatalf("runs: %v", err)
	}
	var runs []persistence.Run
	if err := json.Unmarshal(out.Bytes(), &runs); err != nil || len(runs) != 1 {
		t.Fatalf("expected one run, got %q (%v)", out.String(), err)
	}

	exportPath := filepath.Join(t.TempDir(), "run.jsonl.zst")
	root = newRootCmd()
	out.Reset()
	root.SetOut(&out)
	root.SetArgs([]string{"export", runs[0].ID, "--db", cfg.Storage.Path, "-o", exportPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out.String(), exportPath) {
		t.Errorf("unexpected export output %q", out.String())
	}

	f, err := os.Open(exportPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	records, err := persistence.ReadExport(f)
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}
	if len(records) < 4 || records[0].Kind != "run" || records[1].Kind != "stats" {
		t.Errorf("unexpected export records %+v", records)
	}
}

func TestRunsCmdMissingDB(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"runs", "--db", filepath.Join(t.TempDir(), "absent.db")})
	if err := root.Execute(); err == nil {
		t.Error("expected error for missing database")
	}
}
