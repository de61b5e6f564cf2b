package middleware

import (
	"net/http"

	"github.com/angelmondragon/comptoir-backend/api/responses"
	"github.com/angelmondragon/comptoir-backend/internal/access"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
)

// RequireManager lets only the patron and the gérantes through.
func RequireManager(logg *logger.Logger) func(http.Handler) http.Handler {
	return require(func(p access.Principal) bool { return p.IsManager() }, access.ErrManagerOnly, logg)
}

func RequirePatron(logg *logger.Logger) func(http.Handler) http.Handler {
	return require(func(p access.Principal) bool { return p.IsPatron() }, access.ErrPatronOnly, logg)
}

func require(allowed func(access.Principal) bool, denied error, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, access.ErrUnknownActor)
				return
			}
			if !allowed(principal) {
				responses.WriteError(r.Context(), logg, w, denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
