/*
Package log provides structured logging for rtsim using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers and configurable log levels. Until Init is
called the global Logger discards everything, so library packages can log
unconditionally and tests stay quiet.

# Architecture

	┌──────────────────── LOGGING SYSTEM ────────────────────┐
	│                                                         │
	│  log.Init(Config) ──► Global Logger (zerolog)           │
	│                          │                              │
	│               WithComponent("simulation")               │
	│                          │                              │
	│               WithRunID(l, "9f1c...")                   │
	│                          │                              │
	│               WithScheduler(l, "BE-EDF")                │
	│                          │                              │
	│               WithTaskID(l, 3)                          │
	│                          ▼                              │
	│  {"level":"debug","component":"simulation",             │
	│   "run_id":"9f1c...","scheduler":"BE-EDF",              │
	│   "task_id":3,"message":"job cancelled"}                │
	└─────────────────────────────────────────────────────────┘

# Log Levels

  - Debug: per-tick decisions (cancellations, deadline misses)
  - Info: run start and finish, harness progress
  - Warn: degraded conditions such as a scheduler that is not implemented
  - Error: failures reported to the CLI user

Per-tick logging is at Debug level. Zerolog drops disabled levels without
allocating, so a long simulation at Info level pays nothing for it.

# Usage

	log.Init(log.Config{
		Level:      log.ParseLevel(flagLevel),
		JSONOutput: flagJSON,
		Output:     os.Stderr,
	})

	runLog := log.WithRunID(log.WithComponent("simulation"), run.ID())
	runLog.Info().Int("cycles", 1000).Msg("Run started")

The CLI writes logs to stderr so that command output on stdout can be piped.

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
*/
package log
