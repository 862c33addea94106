// Package logger sets up the process-wide slog logger and carries
// request-scoped loggers (with request and trace ids) through contexts.
package logger
