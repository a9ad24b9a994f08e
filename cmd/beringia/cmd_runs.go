package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/beringia/internal/config"
	"github.com/talgya/beringia/internal/persistence"
)

// openDB opens the run history database named by --db or the configuration.
func openDB(cmd *cobra.Command) (*persistence.DB, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("db") {
		cfg.Storage.Path, _ = cmd.Flags().GetString("db")
	}
	if cfg.Storage.Path == "" {
		return nil, fmt.Errorf("no database configured")
	}
	if _, err := os.Stat(cfg.Storage.Path); err != nil {
		return nil, fmt.Errorf("database %s: %w", cfg.Storage.Path, err)
	}
	return persistence.Open(cfg.Storage.Path)
}

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.Runs()
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				if runs == nil {
					runs = []persistence.Run{}
				}
				return json.NewEncoder(out).Encode(runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			for _, r := range runs {
				started := r.StartedAt
				if t, err := time.Parse(time.RFC3339, r.StartedAt); err == nil {
					started = humanize.Time(t)
				}
				fmt.Fprintf(out, "%s  %-4s %dx%d  seed %d  %s\n", r.ID, r.Topology, r.Width, r.Height, r.Seed, started)
			}
			return nil
		},
	}
	cmd.Flags().String("db", "", "SQLite path (defaults to the configured storage path)")
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Export a run's history as zstd-compressed JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			outPath, _ := cmd.Flags().GetString("out")
			if outPath == "" {
				outPath = args[0] + ".jsonl.zst"
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, err)
			}
			n, err := db.Export(args[0], f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(outPath)
				return err
			}

			size := "?"
			if info, err := os.Stat(outPath); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s records (%s) to %s\n", humanize.Comma(int64(n)), size, outPath)
			return nil
		},
	}
	cmd.Flags().String("db", "", "SQLite path (defaults to the configured storage path)")
	cmd.Flags().StringP("out", "o", "", "Output file (default <run-id>.jsonl.zst)")
	return cmd
}
