package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
	accessPostgres "github.com/frahmantamala/fuel-station-management/internal/access/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/alert"
	alertPostgres "github.com/frahmantamala/fuel-station-management/internal/alert/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/auth"
	authPostgres "github.com/frahmantamala/fuel-station-management/internal/auth/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/company"
	companyPostgres "github.com/frahmantamala/fuel-station-management/internal/company/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/frahmantamala/fuel-station-management/internal/core/events"
	"github.com/frahmantamala/fuel-station-management/internal/dashboard"
	dashboardPostgres "github.com/frahmantamala/fuel-station-management/internal/dashboard/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/inventory"
	inventoryPostgres "github.com/frahmantamala/fuel-station-management/internal/inventory/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/metrics"
	"github.com/frahmantamala/fuel-station-management/internal/notification"
	notificationPostgres "github.com/frahmantamala/fuel-station-management/internal/notification/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/pricing"
	pricingPostgres "github.com/frahmantamala/fuel-station-management/internal/pricing/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/pump"
	pumpPostgres "github.com/frahmantamala/fuel-station-management/internal/pump/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/ratelimit"
	"github.com/frahmantamala/fuel-station-management/internal/station"
	stationPostgres "github.com/frahmantamala/fuel-station-management/internal/station/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/transaction"
	transactionPostgres "github.com/frahmantamala/fuel-station-management/internal/transaction/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
	"github.com/frahmantamala/fuel-station-management/internal/transport/openapi"
	"github.com/frahmantamala/fuel-station-management/internal/transport/rest"
	"github.com/frahmantamala/fuel-station-management/internal/user"
	userPostgres "github.com/frahmantamala/fuel-station-management/internal/user/postgres"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Infra is everything the application needs from the outside world. Redis and Sender are optional:
// without Redis there is no rate limiting, without a Sender no notifications.
type Infra struct {
	Config  *internal.Config
	Gorm    *gorm.DB
	SQL     *sqlx.DB
	Redis   redis.UniversalClient
	Bus     *events.EventBus
	Metrics *metrics.Metrics
	Sender  notification.Sender
	Logger  *slog.Logger
}

type Application struct {
	Router     *chi.Mux
	Dispatcher *notification.Dispatcher
}

// Close drains queued notifications.
func (a *Application) Close() {
	if a.Dispatcher != nil {
		a.Dispatcher.Shutdown()
	}
}

func buildApplication(ctx context.Context, infra Infra) (*Application, error) {
	cfg, lg := infra.Config, infra.Logger
	base := transport.NewBaseHandler(lg)

	resolver := access.NewResolver(accessPostgres.NewScopeRepository(infra.Gorm))
	gate := access.NewGate(resolver, lg)
	tx := database.NewTransactor(infra.Gorm, lg)

	hasher, err := auth.NewPasswordHasher(cfg.Security.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}
	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)

	authService := auth.NewService(authPostgres.NewRepository(infra.Gorm), tokens, hasher, tx, infra.Bus, cfg.Security.PasswordResetTTL, lg)
	userService := user.NewService(userPostgres.NewUserRepository(infra.Gorm), gate, hasher, tx, infra.Bus, lg)
	companyService := company.NewService(companyPostgres.NewCompanyRepository(infra.Gorm), gate, tx, lg)

	stationRepo := stationPostgres.NewStationRepository(infra.Gorm)
	stationService := station.NewService(stationRepo, station.NewAssignmentValidator(stationRepo, lg), gate, tx, lg)

	pumpRepo := pumpPostgres.NewPumpRepository(infra.Gorm)
	pumpService := pump.NewService(pumpRepo, gate, lg)

	alertRepo := alertPostgres.NewAlertRepository(infra.Gorm)
	engine := alert.NewEngine(alertRepo, infra.Bus, infra.Metrics, lg)
	alertService := alert.NewService(alertRepo, gate, lg)

	inventoryService := inventory.NewService(inventoryPostgres.NewInventoryRepository(infra.Gorm), gate, engine, tx, lg)
	pricingService := pricing.NewService(pricingPostgres.NewPricingRepository(infra.Gorm), gate, tx, cfg.Pricing.MissingPricePolicy, lg)

	transactionService := transaction.NewService(transaction.Dependencies{
		Repo:      transactionPostgres.NewTransactionRepository(infra.Gorm),
		Pumps:     pumpRepo,
		Prices:    pricingService,
		Inventory: inventoryService,
		Alerts:    engine,
		Gate:      gate,
		Tx:        tx,
		Publisher: infra.Bus,
		Metrics:   infra.Metrics,
		Logger:    lg,
	})
	dashboardService := dashboard.NewService(dashboardPostgres.NewDashboardRepository(infra.SQL), resolver, lg)

	app := &Application{Router: chi.NewRouter()}

	if infra.Sender != nil {
		app.Dispatcher = notification.NewDispatcher(notification.DispatcherConfig{
			Workers:   cfg.Notification.Workers,
			QueueSize: cfg.Notification.QueueSize,
		}, infra.Sender, infra.Metrics, lg)
		composer := notification.NewComposer(
			notificationPostgres.NewRecipientRepository(infra.SQL),
			cfg.Notification.FromAddress,
			cfg.Notification.ResetURL,
		)
		notification.Subscribe(infra.Bus, composer, app.Dispatcher, lg)
	}

	var limiter *ratelimit.Limiter
	if infra.Redis != nil && cfg.RateLimit.Enabled {
		limiter = ratelimit.NewLimiter(infra.Redis, ratelimit.Config{
			Capacity:       cfg.RateLimit.Capacity,
			RefillTokens:   cfg.RateLimit.RefillTokens,
			RefillInterval: cfg.RateLimit.RefillInterval,
			TTL:            cfg.RateLimit.TTL,
			Prefix:         cfg.RateLimit.Prefix,
		})
	}

	var validator *openapi.Validator
	if cfg.Server.ValidateRequests {
		doc, err := openapi.Load(ctx, cfg.Server.OpenAPIPath)
		if err != nil {
			return nil, err
		}
		if validator, err = openapi.NewValidator(doc, rest.APIPrefix, base); err != nil {
			return nil, err
		}
	}

	opts := rest.Options{
		Redis:       infra.Redis,
		Limiter:     limiter,
		Metrics:     infra.Metrics,
		Validator:   validator,
		Origins:     cfg.Server.Origins(),
		OpenAPIPath: cfg.Server.OpenAPIPath,
		Logger:      lg,
	}
	if infra.SQL != nil {
		opts.DB = infra.SQL.DB
	}
	if cfg.Observability.Metrics.Enabled {
		opts.MetricsPath = cfg.Observability.Metrics.Path
	}

	rest.RegisterAllRoutes(app.Router, rest.Handlers{
		Auth:        auth.NewHandler(base, authService),
		User:        user.NewHandler(base, userService),
		Company:     company.NewHandler(base, companyService),
		Station:     station.NewHandler(base, stationService),
		Pump:        pump.NewHandler(base, pumpService),
		Inventory:   inventory.NewHandler(base, inventoryService),
		Alert:       alert.NewHandler(base, alertService),
		Transaction: transaction.NewHandler(base, transactionService),
		Pricing:     pricing.NewHandler(base, pricingService),
		Dashboard:   dashboard.NewHandler(base, dashboardService),
	}, opts)

	return app, nil
}
