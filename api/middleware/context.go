package middleware

import (
	"context"

	"github.com/angelmondragon/comptoir-backend/internal/access"
)

type contextKey string

const ctxPrincipal contextKey = "principal"

// WithPrincipal stores the resolved actor for downstream handlers.
func WithPrincipal(ctx context.Context, principal access.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, principal)
}

func PrincipalFromContext(ctx context.Context) (access.Principal, bool) {
	if ctx == nil {
		return access.Principal{}, false
	}
	p, ok := ctx.Value(ctxPrincipal).(access.Principal)
	return p, ok
}

// ActorIDFromContext returns the actor id, or "" outside an authenticated route.
func ActorIDFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.ActorID
}
