// Package log provides terminal-safe logging built on top of the
// standard slog package.
//
// This package extends slog to provide:
//   - Automatic scrubbing of escape sequences and control characters
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Why scrubbing matters
//
// A port scanner logs data received from services it probes: banners,
// greeting lines, connection errors that quote peer input. A hostile or
// buggy service can answer with ANSI escape sequences that recolor,
// rewrite, or hide terminal output, or with control characters that
// corrupt log files. The ScrubHandler neutralizes such data at a single
// choke point, so individual log sites never need to remember to do it.
//
// # Usage
//
//	// Create a scrubbing logger
//	logger := log.NewScrubLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("banner received",
//	    "port", 22,
//	    "banner", banner, // escape sequences stripped, control bytes dotted
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
