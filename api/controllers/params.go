package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/comptoir-backend/api/middleware"
	"github.com/angelmondragon/comptoir-backend/internal/access"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
)

func pathParam(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(chi.URLParam(r, name))
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	return value, nil
}

func principal(r *http.Request) (access.Principal, error) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return access.Principal{}, access.ErrUnknownActor
	}
	return p, nil
}
