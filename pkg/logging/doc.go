// Package logging provides structured logging configuration for specdocs.
//
// This package wraps log/slog so every component logs the same way. It
// supports configurable log levels and output formats, and carries the
// per-request ID assigned by the HTTP transport.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatJSON,
//	})
//
//	logger.Info("server started", "addr", "127.0.0.1:4300")
//
// # Integration
//
// Components accept a *slog.Logger via a SetLogger method. If no logger is
// provided they use logging.Nop(). In stdio mode all logs go to stderr so
// stdout stays reserved for the protocol.
package logging
