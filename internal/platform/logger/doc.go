// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels, and carries a request-scoped logger through
// context.Context so that every log line written while serving a request
// includes its trace id.
package logger
