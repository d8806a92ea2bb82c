// Package logger wraps slog with the event helpers the desk logs through:
// HTTP requests, logins, courier calls and dispatch outcomes.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey string

// Context keys read by WithContext.
const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
)

// FileOptions configures the optional rotating file sink.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Logger is an slog.Logger plus an optional file sink to close on exit.
type Logger struct {
	*slog.Logger
	closer io.Closer
}

// New logs to stdout: text at debug level in development, JSON at info
// level elsewhere.
func New(env string) *Logger {
	return newLogger(env, os.Stdout, nil)
}

// NewWithFile creates a logger that writes to stdout and, when a path is
// set, to a size-rotated file.
func NewWithFile(env string, file FileOptions) *Logger {
	if strings.TrimSpace(file.Path) == "" {
		return New(env)
	}

	rotator := &lumberjack.Logger{
		Filename:   file.Path,
		MaxSize:    file.MaxSizeMB,
		MaxBackups: file.MaxBackups,
		MaxAge:     file.MaxAgeDays,
		Compress:   file.Compress,
	}
	return newLogger(env, io.MultiWriter(os.Stdout, rotator), rotator)
}

func newLogger(env string, out io.Writer, closer io.Closer) *Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler = slog.NewJSONHandler(out, opts)
	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(out, opts)
	}
	return &Logger{Logger: slog.New(handler), closer: closer}
}

// Close flushes and closes the file sink, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) with(attrs ...any) *Logger {
	return &Logger{Logger: l.With(attrs...), closer: l.closer}
}

// WithContext tags the logger with the request and user ids that the
// HTTP middleware put on ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	out := l
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		out = out.WithRequestID(id)
	}
	if id, ok := ctx.Value(UserIDKey).(string); ok && id != "" {
		out = out.with(slog.String("user_id", id))
	}
	return out
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.with(slog.String("request_id", requestID))
}

func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("client_ip", clientIP),
	)
}

// AuthEvent records a login attempt. Failures are warnings so repeated
// guessing against one email stands out.
func (l *Logger) AuthEvent(event, email string, success bool, reason string) {
	if success {
		l.Info("auth_event", slog.String("event", event), slog.String("email", email), slog.Bool("success", true))
		return
	}
	l.Warn("auth_event",
		slog.String("event", event),
		slog.String("email", email),
		slog.Bool("success", false),
		slog.String("reason", reason),
	)
}

func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error", slog.String("operation", operation), slog.String("error", err.Error()))
}

func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded", slog.String("client_ip", clientIP), slog.String("path", path))
}

// CourierCall logs a single round trip to the courier API.
func (l *Logger) CourierCall(endpoint string, status int, latency time.Duration, err error) {
	attrs := []any{
		slog.String("endpoint", endpoint),
		slog.Int("status", status),
		slog.Float64("latency_ms", float64(latency.Milliseconds())),
	}
	if err != nil {
		l.Warn("courier_call", append(attrs, slog.String("error", err.Error()))...)
		return
	}
	l.Debug("courier_call", attrs...)
}

// DispatchOutcome logs the result of handing an order to the courier.
func (l *Logger) DispatchOutcome(orderID, outcome, consignmentID string) {
	level := slog.LevelInfo
	if outcome == "simulated" {
		level = slog.LevelWarn
	}
	l.Log(context.Background(), level, "courier_dispatch",
		slog.String("order_id", orderID),
		slog.String("outcome", outcome),
		slog.String("consignment_id", consignmentID),
	)
}
