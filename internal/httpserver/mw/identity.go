package mw

import (
	"net/http"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/auth"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/logger"
)

// Identity resolves the caller from an `Authorization: Bearer <jwt>` header.
// Requests without a token, or with one that fails verification, continue
// as defaultOwner; they are never rejected here.
// A nil verifier treats every request as defaultOwner.
func Identity(v *auth.Verifier, defaultOwner string, log logger.Logger) func(http.Handler) http.Handler {
	if defaultOwner == "" {
		defaultOwner = auth.DefaultOwner
	}
	if v == nil {
		log.Debug("Identity: no verifier, every request uses the default owner")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := defaultOwner

			if token := auth.BearerToken(r.Header.Get("Authorization")); token != "" && v != nil {
				if verified, err := v.Verify(token); err == nil {
					owner = verified
				} else {
					log.Debugf("Identity: token rejected (%v), using default owner", err)
				}
			}

			next.ServeHTTP(w, r.WithContext(auth.WithOwner(r.Context(), owner)))
		})
	}
}
