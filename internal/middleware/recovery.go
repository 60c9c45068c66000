// file: internal/middleware/recovery.go
package middleware

import (
	"net/http"
	"runtime/debug"

	"engagehub/internal/contextutils"
	"engagehub/internal/response"

	"go.uber.org/zap"
)

// Recovery converts handler panics into 500 responses instead of dropping
// the connection
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("Panic recovered",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.String("request_id", contextutils.GetRequestID(r.Context())),
						zap.ByteString("stack", debug.Stack()),
					)
					response.WriteError(w, r, http.StatusInternalServerError,
						"INTERNAL_ERROR", "an unexpected error occurred")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
