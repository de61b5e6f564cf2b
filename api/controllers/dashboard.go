package controllers

import (
	"net/http"

	"github.com/angelmondragon/comptoir-backend/api/responses"
	"github.com/angelmondragon/comptoir-backend/internal/dashboard"
	"github.com/angelmondragon/comptoir-backend/internal/reports"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
)

func DashboardStats(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// StockReport downloads today's stock report as a spreadsheet.
func StockReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Stock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAttachment(w, reports.ContentType, report.Filename, report.Body)
	}
}
