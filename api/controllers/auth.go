package controllers

import (
	"net/http"

	"github.com/angelmondragon/comptoir-backend/api/responses"
	"github.com/angelmondragon/comptoir-backend/api/validators"
	"github.com/angelmondragon/comptoir-backend/internal/access"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
)

type loginRequest struct {
	ActorID string `json:"actorId" validate:"required"`
	Code    string `json:"code" validate:"required"`
}

type navigationRequest struct {
	Section string `json:"section" validate:"required,max=60"`
}

// AuthActors lists the identities offered on the login screen.
func AuthActors(svc access.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actors, err := svc.Actors(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, actors)
	}
}

func AuthLogin(svc access.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		p, err := svc.Login(r.Context(), req.ActorID, req.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, p)
	}
}

func AuthLogout(svc access.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := principal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Logout(r.Context(), p); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func Navigate(svc access.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := principal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req navigationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Navigate(r.Context(), p, validators.SanitizeString(req.Section, 60)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
