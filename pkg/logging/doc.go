// Package logging provides structured logging configuration for linemock.
//
// It wraps log/slog so every component logs the same way. Construct a logger
// once, near main, and hand it down:
//
//	logger := logging.New(logging.Config{
//	    Level:  slog.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("emulator listening", "port", 5000)
//
// Components that take an optional logger default to logging.Nop().
package logging
