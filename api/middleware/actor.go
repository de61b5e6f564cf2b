package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/comptoir-backend/api/responses"
	"github.com/angelmondragon/comptoir-backend/internal/access"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
)

// ActorHeader carries the id of the manager role or employee making the call.
const ActorHeader = "X-Comptoir-Actor"

type ActorResolver interface {
	Resolve(ctx context.Context, actorID string) (*access.Principal, error)
}

// Actor resolves ActorHeader into a principal and rejects unknown callers.
func Actor(resolver ActorResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorID := strings.TrimSpace(r.Header.Get(ActorHeader))
			if actorID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, ActorHeader+" header required"))
				return
			}
			principal, err := resolver.Resolve(r.Context(), actorID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			ctx := WithPrincipal(r.Context(), *principal)
			if logg != nil {
				ctx = logg.WithActor(ctx, principal.ActorID, principal.Role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
