package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// APIKeyHeader carries the key checked by APIKeyAuth
const APIKeyHeader = "X-API-Key"

const apiClientKey ctxKey = "api-client"

// APIKeyAuth rejects requests without one of the configured keys. With no
// keys configured every request passes.
func APIKeyAuth(logger *slog.Logger, keys []string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			apiKey := r.Header.Get(APIKeyHeader)
			if apiKey == "" {
				logger.WarnContext(ctx, "missing API key",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				ProblemFromStatus(http.StatusUnauthorized, "API key required", traceIDFor(ctx)).Render(w, r)
				return
			}

			client, ok := matchKey(keys, apiKey)
			if !ok {
				logger.WarnContext(ctx, "invalid API key",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				ProblemFromStatus(http.StatusUnauthorized, "Invalid API key", traceIDFor(ctx)).Render(w, r)
				return
			}

			ctx = context.WithValue(ctx, apiClientKey, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// matchKey compares in constant time and returns the key's position as the
// client label.
func matchKey(keys []string, candidate string) (string, bool) {
	found := -1
	for i, k := range keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(candidate)) == 1 {
			found = i
		}
	}
	if found < 0 {
		return "", false
	}
	return "key-" + strconv.Itoa(found+1), true
}

// APIClient returns the client label set by APIKeyAuth
func APIClient(ctx context.Context) string {
	if c, ok := ctx.Value(apiClientKey).(string); ok {
		return c
	}
	return "anonymous"
}

// AuditLog records who triggered a state-changing operation and how it ended
func AuditLog(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()
			ww := &auditResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			logger.InfoContext(ctx, "audit log",
				"event_type", "api_mutation",
				"client", APIClient(ctx),
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"status", ww.statusCode,
				"duration", time.Since(start).String(),
			)
		})
	}
}

type auditResponseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (w *auditResponseWriter) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *auditResponseWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}
