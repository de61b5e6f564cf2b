package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/comptoir-backend/api/controllers"
	"github.com/angelmondragon/comptoir-backend/api/middleware"
	"github.com/angelmondragon/comptoir-backend/internal/access"
	"github.com/angelmondragon/comptoir-backend/internal/activity"
	"github.com/angelmondragon/comptoir-backend/internal/catalog"
	"github.com/angelmondragon/comptoir-backend/internal/dashboard"
	"github.com/angelmondragon/comptoir-backend/internal/employees"
	"github.com/angelmondragon/comptoir-backend/internal/ledger"
	"github.com/angelmondragon/comptoir-backend/internal/orders"
	"github.com/angelmondragon/comptoir-backend/internal/reports"
	"github.com/angelmondragon/comptoir-backend/internal/settings"
	"github.com/angelmondragon/comptoir-backend/pkg/config"
	"github.com/angelmondragon/comptoir-backend/pkg/db"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/comptoir-backend/pkg/redis"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

// Dependencies carries everything the router hands to controllers.
// Idempotency and Gatherer are optional.
type Dependencies struct {
	Pingers     map[string]db.Pinger
	Feed        store.Feed
	Idempotency pkgredis.IdempotencyStore
	Gatherer    prometheus.Gatherer

	Access    access.Service
	Settings  settings.Service
	Catalog   catalog.Service
	Orders    orders.Service
	Ledger    ledger.Service
	Employees employees.Service
	Activity  activity.Service
	Dashboard dashboard.Service
	Reports   reports.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	var idempotency pkgredis.IdempotencyStore
	if cfg.FeatureFlags.Idempotency {
		idempotency = deps.Idempotency
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/auth/actors", controllers.AuthActors(deps.Access, logg))
		r.Post("/auth/login", controllers.AuthLogin(deps.Access, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Actor(deps.Access, logg))

			r.Post("/auth/logout", controllers.AuthLogout(deps.Access, logg))
			r.Post("/navigation", controllers.Navigate(deps.Access, logg))

			r.Get("/mode", controllers.GetMode(deps.Settings, logg))
			r.Put("/mode", controllers.SetMode(deps.Settings, logg))

			r.Get("/dashboard", controllers.DashboardStats(deps.Dashboard, logg))
			if deps.Feed != nil {
				r.Get("/changes", controllers.StreamChanges(deps.Feed, logg))
			}

			r.Route("/articles", func(r chi.Router) {
				r.Get("/", controllers.ListArticles(deps.Catalog, logg))
				r.Get("/options", controllers.ArticleOptions(deps.Catalog))
				r.Get("/{articleId}", controllers.GetArticle(deps.Catalog, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager(logg))
					r.Post("/", controllers.CreateArticle(deps.Catalog, logg))
					r.Patch("/{articleId}", controllers.UpdateArticle(deps.Catalog, logg))
					r.Delete("/{articleId}", controllers.DeleteArticle(deps.Catalog, logg))
				})
			})

			r.Route("/tables", func(r chi.Router) {
				r.Get("/", controllers.ListTables(deps.Orders, logg))
				r.Get("/{tableId}", controllers.GetTable(deps.Orders, logg))
				r.Post("/{tableId}/lines", controllers.AddTableLine(deps.Orders, logg))
				r.Delete("/{tableId}/lines/{articleId}", controllers.RemoveTableLine(deps.Orders, logg))
				r.With(middleware.Idempotency(idempotency, cfg.Eventing.IdempotencyTTL, logg)).
					Post("/{tableId}/pay", controllers.PayTable(deps.Orders, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager(logg))
					r.Post("/", controllers.CreateTable(deps.Orders, logg))
					r.Delete("/{tableId}", controllers.DeleteTable(deps.Orders, logg))
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager(logg))

				r.Get("/payments", controllers.ListPayments(deps.Ledger, logg))
				r.Get("/activity", controllers.ListActivity(deps.Activity, logg))

				r.Route("/employees", func(r chi.Router) {
					r.Get("/", controllers.ListEmployees(deps.Employees, logg))
					r.Post("/", controllers.CreateEmployee(deps.Employees, logg))
					r.Delete("/{employeeId}", controllers.DeleteEmployee(deps.Employees, logg))
					r.Get("/{employeeId}/activity", controllers.EmployeeActivity(deps.Employees, logg))
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePatron(logg))

				r.Get("/reports/stock", controllers.StockReport(deps.Reports, logg))
				r.Put("/settings/access-codes/{role}", controllers.UpdateAccessCode(deps.Access, logg))
			})
		})
	})

	return r
}
