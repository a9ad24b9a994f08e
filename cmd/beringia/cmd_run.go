package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/beringia/internal/api"
	"github.com/talgya/beringia/internal/config"
	"github.com/talgya/beringia/internal/engine"
	"github.com/talgya/beringia/internal/logging"
	"github.com/talgya/beringia/internal/persistence"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		Long: `Run builds the region described by the configuration and advances it
tick by tick. Statistics are written to the SQLite database unless --db is
empty, and --serve exposes a read-only HTTP API while the run is going.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if err := applyRunFlags(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSimulation(ctx, cfg, logger, cmd.OutOrStdout())
		},
	}

	cmd.Flags().Uint64("ticks", 0, "Ticks to run (0 = until interrupted)")
	cmd.Flags().Int64("seed", 0, "Random seed (0 = unrepeatable)")
	cmd.Flags().String("topology", "", "Lattice: grid, hex or tri")
	cmd.Flags().Int("width", 0, "Lattice width")
	cmd.Flags().Int("height", 0, "Lattice height")
	cmd.Flags().Bool("border", true, "Attach inert border locales")
	cmd.Flags().String("db", "", "SQLite path for run history (empty disables)")
	cmd.Flags().Int("serve", 0, "Serve the observer API on this port")
	cmd.Flags().Duration("interval", 0, "Pause between ticks")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")

	return cmd
}

// applyRunFlags copies explicitly set flags over the loaded configuration.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	set := func(name string, apply func() error) {
		if err == nil && flags.Changed(name) {
			err = apply()
		}
	}

	set("ticks", func() (e error) { cfg.Engine.Ticks, e = flags.GetUint64("ticks"); return })
	set("seed", func() (e error) { cfg.Region.Seed, e = flags.GetInt64("seed"); return })
	set("topology", func() (e error) { cfg.Region.Topology, e = flags.GetString("topology"); return })
	set("width", func() (e error) { cfg.Region.Width, e = flags.GetInt("width"); return })
	set("height", func() (e error) { cfg.Region.Height, e = flags.GetInt("height"); return })
	set("border", func() (e error) { cfg.Region.Border, e = flags.GetBool("border"); return })
	set("db", func() (e error) { cfg.Storage.Path, e = flags.GetString("db"); return })
	set("serve", func() (e error) { cfg.API.Port, e = flags.GetInt("serve"); return })
	set("interval", func() (e error) { cfg.Engine.Interval, e = flags.GetDuration("interval"); return })
	set("log-level", func() (e error) { cfg.Logging.Level, e = flags.GetString("log-level"); return })
	return err
}

// runSimulation wires the region, engine, storage and API together and runs
// until the configured tick count is reached or ctx is cancelled.
func runSimulation(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	r, err := cfg.BuildRegion(logger)
	if err != nil {
		return err
	}
	logger.Info("region built",
		"topology", cfg.Region.Topology,
		"width", cfg.Region.Width,
		"height", cfg.Region.Height,
		"locales", r.Len(),
		"seed", cfg.Region.Seed,
	)

	sim := engine.NewSimulation(r, engine.Options{
		Weather: cfg.WeatherModel(),
		Biota:   cfg.Engine.Biota,
	})

	eng := engine.NewEngine()
	eng.Interval = cfg.Engine.Interval
	eng.ReportEvery = cfg.Engine.ReportEvery
	eng.OnTick = sim.Tick
	eng.OnReport = func(tick uint64) { sim.Report(tick) }

	var db *persistence.DB
	if cfg.Storage.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		db, err = persistence.Open(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		effective, err := cfg.Marshal()
		if err != nil {
			return err
		}
		if err := db.StartRun(persistence.Run{
			ID:       sim.RunID,
			Seed:     cfg.Region.Seed,
			Topology: cfg.Region.Topology,
			Width:    cfg.Region.Width,
			Height:   cfg.Region.Height,
			Config:   string(effective),
		}); err != nil {
			return err
		}
		eng.OnReport = db.Recorder(sim)
		logger.Info("database opened", "path", cfg.Storage.Path, "run", sim.RunID)
	}

	if cfg.API.Port > 0 {
		srv := &api.Server{
			Sim:     sim,
			Eng:     eng,
			DB:      db,
			Port:    cfg.API.Port,
			Limiter: api.NewRateLimiter(600, time.Minute),
		}
		srv.Start(ctx)
	}

	start := time.Now()
	err = eng.Run(ctx, cfg.Engine.Ticks)
	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		return err
	}
	printSummary(out, sim, eng.Tick, time.Since(start), interrupted)

	if cfg.API.Port > 0 && !interrupted {
		logger.Info("run finished, API still serving until interrupted", "port", cfg.API.Port)
		<-ctx.Done()
	}
	return nil
}

func printSummary(out io.Writer, sim *engine.Simulation, ticks uint64, elapsed time.Duration, interrupted bool) {
	stats := sim.Stats()
	c := stats.Census

	status := "finished"
	if interrupted {
		status = "interrupted"
	}
	fmt.Fprintf(out, "run %s %s\n", sim.RunID, status)
	fmt.Fprintf(out, "  %s ticks, %s, in %s\n",
		humanize.Comma(int64(ticks)), engine.SimTime(ticks), elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "  fires: %s ignitions, %s spread, %s burned out\n",
		humanize.Comma(int64(stats.Ignitions)), humanize.Comma(int64(stats.Spread)), humanize.Comma(int64(stats.Burned)))
	fmt.Fprintf(out, "  sediment moved: %s\n", humanize.FormatFloat("#,###.#####", stats.Transport))
	if stats.Rainfall > 0 {
		fmt.Fprintf(out, "  rainfall: %s (%s storms)\n",
			humanize.FormatFloat("#,###.###", stats.Rainfall), humanize.Comma(int64(stats.Storms)))
	}
	fmt.Fprintf(out, "  locales: %d, burning %d, mean stage %.2f, mean elevation %.4f\n",
		c.Locales, c.Burning, c.MeanStage, c.MeanElevation)
	fmt.Fprintf(out, "  flora biomass: %s\n", humanize.FormatFloat("#,###.####", c.Flora))

	names := make([]string, 0, len(c.Fauna))
	for name := range c.Fauna {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %s\n", name, humanize.FormatFloat("#,###.####", c.Fauna[name]))
	}
}
