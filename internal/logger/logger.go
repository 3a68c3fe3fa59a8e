// Package logger provides the application-wide structured logger built on
// the Uber zap library, plus an HTTP middleware that logs every request.
package logger

import (
	"errors"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// Log is the global SugaredLogger used across the application.
// It must be initialized via Init() before use; until then it is a no-op
// logger so that packages may log safely from tests.
var Log = zap.NewNop().Sugar()

// Init configures the global logger with the given level
// ("debug", "info", "warn", "error", ...).
func Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zl.Sugar()

	return nil
}

// Sync flushes buffered log entries. Call it on shutdown.
func Sync() error {
	if err := Log.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}

	return nil
}

type statusCapturingWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusCapturingWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusCapturingWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// WithLoggingHTTPMiddleware logs method, URI, response status, size and
// duration of every handled request.
func WithLoggingHTTPMiddleware(h http.Handler) http.Handler {
	logFn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		cw := &statusCapturingWriter{ResponseWriter: w}
		h.ServeHTTP(cw, r)

		Log.Infoln(
			"uri", r.RequestURI,
			"method", r.Method,
			"status", cw.status,
			"duration", time.Since(start),
			"size", cw.size,
		)
	}

	return http.HandlerFunc(logFn)
}
