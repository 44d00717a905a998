// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance for development (console) and production
// (json) output and integrates with the Fiber web framework.
//
// # Context Awareness
//
// WithRayID extracts the RayID set by the rayid middleware from a Fiber context and
// attaches it to the log entry, so every log line of a request can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Bid failed", zap.Error(err))
package logger
