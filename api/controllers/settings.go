package controllers

import (
	"net/http"

	"github.com/angelmondragon/comptoir-backend/api/responses"
	"github.com/angelmondragon/comptoir-backend/api/validators"
	"github.com/angelmondragon/comptoir-backend/internal/access"
	"github.com/angelmondragon/comptoir-backend/internal/settings"
	"github.com/angelmondragon/comptoir-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
)

type modeRequest struct {
	Mode enums.Mode `json:"mode" validate:"required,oneof=bar snackbar"`
}

type accessCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

func GetMode(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := svc.Mode(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"mode": mode, "label": mode.Label()})
	}
}

func SetMode(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := principal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req modeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mode, err := svc.SetMode(r.Context(), p.ActorID, req.Mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"mode": mode, "label": mode.Label()})
	}
}

// UpdateAccessCode overrides one manager's code. Patron only.
func UpdateAccessCode(svc access.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := principal(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		raw, err := pathParam(r, "role")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := enums.ParseManagerRole(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown manager role"))
			return
		}
		var req accessCodeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.UpdateManagerCode(r.Context(), p, role, req.Code); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
