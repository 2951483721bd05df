package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/forklift/cmd"
	"github.com/smazurov/forklift/internal/config"
	"github.com/smazurov/forklift/internal/events"
	"github.com/smazurov/forklift/internal/jobs"
	"github.com/smazurov/forklift/internal/logging"
	"github.com/smazurov/forklift/internal/monitoring"
	"github.com/smazurov/forklift/pool"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"forklift.toml"`

	// Job settings
	Jobs   string `help:"Job file, one command per line" short:"f" default:"jobs.txt" toml:"jobs.file" env:"JOBS_FILE"`
	Follow bool   `help:"Watch the job file and run appended jobs until interrupted" default:"false" toml:"jobs.follow" env:"JOBS_FOLLOW"`

	// Pool settings
	MaxProcs int `help:"Maximum concurrent child processes (0 runs jobs in-process)" short:"j" default:"4" toml:"pool.max_procs" env:"POOL_MAX_PROCS"`

	// Observability settings
	MetricsAddr string `help:"Prometheus metrics listen address (empty disables)" default:"" toml:"metrics.addr" env:"METRICS_ADDR"`

	// Logging settings
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingPool   string `help:"Pool logging level" default:"info" toml:"logging.pool" env:"LOGGING_POOL"`
	LoggingJobs   string `help:"Jobs logging level" default:"info" toml:"logging.jobs" env:"LOGGING_JOBS"`
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically. The root command is built by
		// the time this callback runs, so explicitly-set CLI flags keep
		// precedence over file and environment values.
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"pool": opts.LoggingPool,
				"jobs": opts.LoggingJobs,
			},
		})
		logger := logging.GetLogger("main")

		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			pm, err := pool.New(opts.MaxProcs, pool.WithLogger(logging.GetLogger("pool")))
			if err != nil {
				logger.Error("Invalid pool configuration", "error", err, "max_procs", opts.MaxProcs)
				os.Exit(1)
			}

			bus := events.New()
			unregister := monitoring.Register(pm, bus)
			defer unregister()
			if opts.MetricsAddr != "" {
				monitoring.Serve(opts.MetricsAddr, logging.GetLogger("monitoring"))
			}

			runner := jobs.NewRunner(pm, bus, logging.GetLogger("jobs"))

			var summary jobs.Summary
			var runErr error
			if opts.Follow {
				logger.Info("Following job file", "file", opts.Jobs, "max_procs", opts.MaxProcs)
				summary, runErr = runner.Follow(ctx, opts.Jobs)
			} else {
				batch, parseErr := jobs.ParseFile(opts.Jobs)
				if parseErr != nil {
					logger.Error("Failed to read job file", "error", parseErr)
					os.Exit(1)
				}
				logger.Info("Running jobs", "file", opts.Jobs, "jobs", len(batch), "max_procs", opts.MaxProcs)
				summary, runErr = runner.Run(batch)
			}

			if runErr != nil {
				logger.Error("Run aborted", "error", runErr, "run", summary.Run, "failed", summary.Failed)
				os.Exit(1)
			}
			logger.Info("All jobs accounted for", "run", summary.Run, "failed", summary.Failed)
			if summary.Failed > 0 {
				os.Exit(1)
			}
			os.Exit(0)
		})

		hooks.OnStop(func() {
			// Unblocks follow mode; the runner drains before returning.
			cancel()
		})
	})

	cli.Root().Use = "forklift"
	cli.Root().AddCommand(cmd.CreateVersionCmd())
	cli.Root().AddCommand(cmd.CreateUpdateCmd())

	cli.Run()
}
