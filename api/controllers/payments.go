package controllers

import (
	"net/http"

	"github.com/angelmondragon/comptoir-backend/api/responses"
	"github.com/angelmondragon/comptoir-backend/api/validators"
	"github.com/angelmondragon/comptoir-backend/internal/ledger"
	"github.com/angelmondragon/comptoir-backend/pkg/enums"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
)

func ListPayments(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := validators.ParseQueryChoice(r, "mode", ledger.ModeAll, ledger.ModeAll, string(enums.ModeBar), string(enums.ModeSnackbar))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rawPeriod, err := validators.ParseQueryChoice(r, "period", string(ledger.PeriodAll),
			string(ledger.PeriodAll), string(ledger.PeriodToday), string(ledger.PeriodWeek))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.List(r.Context(), ledger.Filter{Mode: mode, Period: ledger.Period(rawPeriod)})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
