// file: internal/middleware/structured_logger.go
package middleware

import (
	"net/http"
	"time"

	"engagehub/internal/contextutils"

	"go.uber.org/zap"
)

// statusRecorder captures the response status and size for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// StructuredLogger logs one line per request with correlation fields
func StructuredLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", recorder.status),
				zap.Int("size", recorder.size),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", contextutils.GetRequestID(r.Context())),
			}
			if userID := contextutils.GetUserID(r.Context()); userID != 0 {
				fields = append(fields, zap.Int64("user_id", userID))
			}

			switch {
			case recorder.status >= 500:
				logger.Error("Request completed", fields...)
			case recorder.status >= 400:
				logger.Warn("Request completed", fields...)
			default:
				logger.Info("Request completed", fields...)
			}
		})
	}
}
