package middleware

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"sxfs/internal/auth"
	"sxfs/internal/config"
)

// Authenticate classifies every request's credentials once and stores the
// outcome in the request context. Malformed credentials are rejected here;
// whether an anonymous request is acceptable is decided by each route.
func Authenticate(site *config.Site, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			outcome, err := auth.Authorize(r, site)
			if err != nil {
				if errors.Is(err, auth.ErrMalformedCookie) {
					logger.Warn("Malformed session cookie",
						zap.String("remote", r.RemoteAddr),
					)
					http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
					return
				}

				logger.Warn("Rejected credentials",
					zap.String("remote", r.RemoteAddr),
					zap.Error(err),
				)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), outcome)))
		})
	}
}
