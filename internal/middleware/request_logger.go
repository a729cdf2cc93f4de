package middleware

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestIDKey contextKey = "request_id"

// RequestLogger logs one structured entry per request, at a level that
// follows the response status.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.NewString()
			w.Header().Set("X-Request-ID", requestID)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx := context.WithValue(r.Context(), requestIDKey, requestID)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			entry := log.WithFields(logrus.Fields{
				"request_id":  requestID,
				"http_method": r.Method,
				"uri":         r.URL.RequestURI(),
				"status_code": status,
				"latency_ms":  time.Since(start).Milliseconds(),
				"client_ip":   r.RemoteAddr,
				"user_agent":  r.UserAgent(),
			})

			switch {
			case status >= 500:
				entry.Error("Request completed with server error")
			case status >= 400:
				entry.Warn("Request completed with client error")
			default:
				entry.Info("Request completed")
			}
		})
	}
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
