// Package logging provides structured logging configuration for htmlgen.
//
// This package wraps log/slog so the CLI, the renderer and the expansion
// engine share one logger setup.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatJSON,
//	})
//
//	logger.Debug("expansion finished", "run", id, "markers", 3)
//
// # Output Formats
//
//   - Text: Human-readable format for terminals
//   - JSON: Structured format for log aggregation systems
//
// # Integration
//
// Components accept a *slog.Logger through an option. If no logger is
// provided, they use logging.Nop().
package logging
