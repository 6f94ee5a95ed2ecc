package log

import (
	"context"
	"log/slog"
	"net/http"

	"ecotrack/internal/core"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext extracts the request logger, falling back to the slog default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// LogHTTPEnd logs a completed request at a level matching its status.
func LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
		WithHTTPResponse(statusCode, durationMs)
	fields[FieldClientIP] = clientIP

	FromContext(ctx).log(ctx, level, "HTTP request completed", fields.ToSlice())
}

// LogLedgerWrite records a successful income, charge or expense write.
func LogLedgerWrite(ctx context.Context, logger *Logger, ev core.LedgerEvent) {
	logger.InfoContext(ctx, "Ledger entry written", NewFields().WithEvent(ev).ToSlice()...)
}

// LogError logs err with its component and operation.
func LogError(ctx context.Context, logger *Logger, msg string, err error, operation string) {
	logger.ErrorContext(ctx, msg, NewFields().WithError(err).WithOperation(operation).ToSlice()...)
}
