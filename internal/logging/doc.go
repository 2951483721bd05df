// Package logging provides structured logging with per-module log level configuration.
//
// # Overview
//
// The logging system uses Go's slog package with automatic output routing:
//   - Logs to systemd journal when available (Linux systems with journald)
//   - Logs to stdout when a terminal, pipe, or file is connected
//   - Logs to both when both are available
//
// # Usage
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"pool": "debug",  // Per-module overrides
//			"jobs": "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("jobs")
//	logger.Info("Starting run", "max_procs", 4)
//	logger.Warn("Job failed", "error", err)
//
// Add contextual attributes:
//
//	logger := logging.GetLogger("pool").With("pid", pid)
//	logger.Info("Child reaped")  // Includes pid in all logs
//
// # Viewing Logs
//
// When running under systemd or on a system with journald:
//
//	journalctl -t forklift              # All forklift logs
//	journalctl -t forklift -f           # Follow live
//	journalctl -t forklift -p err       # Errors only
//
// Filter by structured fields:
//
//	journalctl -t forklift MODULE=pool
//
// # Configuration
//
// Log levels can be set globally or per-module; module-specific levels
// override the global level for that module only.
//
//	[logging]
//	level = "info"
//	format = "text"
//	pool = "debug"
//	jobs = "warn"
package logging
