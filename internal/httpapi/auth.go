package httpapi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ivugurura/music-vault/internal/netutil"
)

// requireBearer gates a route behind the static analytics token. An empty
// configured token fails closed with a 500: that is an operator mistake,
// and it must never degrade into an open endpoint. Callers learn nothing
// beyond "unauthorized" about why a token was rejected.
func requireBearer(token string, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				log.Error().Msg("analytics token is not configured, refusing report access")
				netutil.WriteError(w, http.StatusInternalServerError, "Server configuration error.")
				return
			}

			header := r.Header.Get("Authorization")
			supplied, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
				netutil.WriteError(w, http.StatusUnauthorized, "Unauthorized.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
