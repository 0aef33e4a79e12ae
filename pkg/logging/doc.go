// Package logging provides structured logging configuration for wmsconsole.
//
// This package wraps log/slog so every console component logs the same way.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	storeLog := logging.Component(logger, "crud")
//	storeLog.Info("store created", "entity", "Uom")
//
// # Output Formats
//
//   - Text: Human-readable format for development
//   - JSON: Structured format for log aggregation systems
//
// When Config.Mirror is set, every record is also written to it as JSON,
// which is how the serve command keeps an audit file next to console output.
//
// # Integration
//
// Components accept a *slog.Logger in their constructor or via an option.
// If no logger is provided, they use logging.Nop().
package logging
