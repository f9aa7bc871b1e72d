package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	"github.com/frahmantamala/fuel-station-management/internal/alert"
	"github.com/frahmantamala/fuel-station-management/internal/auth"
	"github.com/frahmantamala/fuel-station-management/internal/company"
	"github.com/frahmantamala/fuel-station-management/internal/dashboard"
	"github.com/frahmantamala/fuel-station-management/internal/inventory"
	"github.com/frahmantamala/fuel-station-management/internal/metrics"
	"github.com/frahmantamala/fuel-station-management/internal/pricing"
	"github.com/frahmantamala/fuel-station-management/internal/pump"
	"github.com/frahmantamala/fuel-station-management/internal/ratelimit"
	"github.com/frahmantamala/fuel-station-management/internal/station"
	"github.com/frahmantamala/fuel-station-management/internal/transaction"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
	"github.com/frahmantamala/fuel-station-management/internal/transport/middleware"
	"github.com/frahmantamala/fuel-station-management/internal/transport/openapi"
	"github.com/frahmantamala/fuel-station-management/internal/transport/swagger"
	"github.com/frahmantamala/fuel-station-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/redis/go-redis/v9"
)

const APIPrefix = "/api/v1"

type Handlers struct {
	Auth        *auth.Handler
	User        *user.Handler
	Company     *company.Handler
	Station     *station.Handler
	Pump        *pump.Handler
	Inventory   *inventory.Handler
	Alert       *alert.Handler
	Transaction *transaction.Handler
	Pricing     *pricing.Handler
	Dashboard   *dashboard.Handler
}

// Options carries the infrastructure the router wires around the handlers. Nil fields switch the
// corresponding feature off.
type Options struct {
	DB          *sql.DB
	Redis       redis.UniversalClient
	Limiter     *ratelimit.Limiter
	Metrics     *metrics.Metrics
	Validator   *openapi.Validator
	Origins     []string
	OpenAPIPath string
	MetricsPath string
	Logger      *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options) {
	base := transport.NewBaseHandler(opts.Logger)
	healthHandler := NewHealthHandler(base, opts.DB, opts.Redis)

	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS(opts.Origins))
	router.Use(opts.Metrics.Middleware)

	if opts.OpenAPIPath != "" {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, opts.OpenAPIPath)
		})
		router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))
	}
	if opts.Metrics != nil && opts.MetricsPath != "" {
		router.Handle(opts.MetricsPath, opts.Metrics.Handler())
	}

	limit := func(route string) func(http.Handler) http.Handler {
		if opts.Limiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return opts.Limiter.Middleware(route, base, opts.Metrics)
	}

	router.Route(APIPrefix, func(r chi.Router) {
		if opts.Validator != nil {
			r.Use(opts.Validator.Middleware)
		}

		r.Get("/health", healthHandler.Health)
		r.Get("/ping", healthHandler.Ping)

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.With(limit("login")).Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)
			ar.With(limit("password_reset")).Post("/password-reset", h.Auth.RequestPasswordReset)
			ar.With(limit("password_reset")).Post("/password-reset/confirm", h.Auth.ConfirmPasswordReset)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			ownersOnly := h.Auth.RequireRole(access.RoleAdmin, access.RoleOwner)

			if h.User != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Get("/", h.User.ListUsers)
					ur.Get("/me", h.User.GetCurrentUser)
					ur.With(ownersOnly).Post("/", h.User.CreateUser)
					ur.Get("/{id}", h.User.GetUser)
					ur.Patch("/{id}", h.User.UpdateUser)
					ur.With(ownersOnly).Delete("/{id}", h.User.DeleteUser)
				})
			}

			if h.Company != nil {
				pr.Route("/companies", func(cr chi.Router) {
					cr.Get("/", h.Company.ListCompanies)
					cr.With(ownersOnly).Post("/", h.Company.CreateCompany)
					cr.Get("/{id}", h.Company.GetCompany)
					cr.With(ownersOnly).Patch("/{id}", h.Company.UpdateCompany)
					cr.With(ownersOnly).Delete("/{id}", h.Company.DeleteCompany)
				})
			}

			if h.Station != nil {
				pr.Route("/stations", func(sr chi.Router) {
					sr.Get("/", h.Station.ListStations)
					sr.With(ownersOnly).Post("/", h.Station.CreateStation)
					sr.Get("/{id}", h.Station.GetStation)
					sr.Patch("/{id}", h.Station.UpdateStation)
					sr.With(ownersOnly).Delete("/{id}", h.Station.DeleteStation)
				})
			}

			if h.Pump != nil {
				pr.Route("/pumps", func(pmr chi.Router) {
					pmr.Get("/", h.Pump.ListPumps)
					pmr.With(ownersOnly).Post("/", h.Pump.CreatePump)
					pmr.Get("/{id}", h.Pump.GetPump)
					pmr.Patch("/{id}", h.Pump.UpdatePump)
					pmr.Patch("/{id}/status", h.Pump.UpdatePumpStatus)
					pmr.With(ownersOnly).Delete("/{id}", h.Pump.DeletePump)
				})
			}

			if h.Inventory != nil {
				pr.Route("/inventory", func(ir chi.Router) {
					ir.Get("/", h.Inventory.ListInventories)
					ir.Post("/", h.Inventory.MethodNotAllowed)
					ir.Get("/{id}", h.Inventory.GetInventory)
					ir.Patch("/{id}", h.Inventory.UpdateInventory)
					ir.Delete("/{id}", h.Inventory.MethodNotAllowed)
				})
			}

			if h.Alert != nil {
				pr.Route("/alerts", func(alr chi.Router) {
					alr.Get("/", h.Alert.ListAlerts)
					alr.Get("/{id}", h.Alert.GetAlert)
					alr.Patch("/{id}", h.Alert.UpdateAlert)
				})
			}

			if h.Transaction != nil {
				pr.Route("/transactions", func(tr chi.Router) {
					tr.Get("/", h.Transaction.ListTransactions)
					tr.Post("/", h.Transaction.PostTransaction)
					tr.Get("/{id}", h.Transaction.GetTransaction)
				})
			}

			if h.Pricing != nil {
				pr.Get("/settings/prices", h.Pricing.ListPrices)
				pr.With(ownersOnly).Put("/settings/prices/{fuel_type}", h.Pricing.ApplyPrice)
			}

			if h.Dashboard != nil {
				pr.Get("/dashboard", h.Dashboard.GetDashboard)
				pr.Get("/reports/sales", h.Dashboard.GetSalesReport)
			}
		})
	})
}
