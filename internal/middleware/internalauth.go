package middleware

import (
	"crypto/subtle"
	"net/http"

	"go.uber.org/zap"
)

// InternalAPIKeyHeader carries the shared secret for internal endpoints
const InternalAPIKeyHeader = "X-API-Key"

// InternalAuthMiddleware guards internal endpoints with a shared-secret
// header compare. An empty configured key rejects every request, so an unset
// secret can never open the endpoint up.
func InternalAuthMiddleware(apiKey string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(InternalAPIKeyHeader)

			if apiKey == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				logger.Debug("Internal API key rejected",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				respondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
