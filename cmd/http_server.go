package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/frahmantamala/fuel-station-management/internal/core/events"
	"github.com/frahmantamala/fuel-station-management/internal/metrics"
	"github.com/frahmantamala/fuel-station-management/internal/notification"
	"github.com/frahmantamala/fuel-station-management/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		lg.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := database.OpenGorm(db.DB)
	if err != nil {
		lg.Error("failed to initialize gorm", "error", err)
		os.Exit(1)
	}

	var rdb redis.UniversalClient
	if client := initRedis(config.Redis, lg); client != nil {
		defer client.Close()
		rdb = client
	}

	var m *metrics.Metrics
	if config.Observability.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
	}

	bus := events.NewEventBus(lg)

	var sender notification.Sender
	if config.Notification.Enabled {
		publisher := notification.NewAMQPPublisher(config.Notification.AMQPURL, config.Notification.Queue, lg)
		defer publisher.Close()
		sender = publisher
	} else {
		sender = notification.NewLogMailer(lg)
	}

	app, err := buildApplication(context.Background(), Infra{
		Config:  config,
		Gorm:    gormDB,
		SQL:     db,
		Redis:   rdb,
		Bus:     bus,
		Metrics: m,
		Sender:  sender,
		Logger:  lg,
	})
	if err != nil {
		lg.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: config.Server.ReadHeaderTimeout,
		ReadTimeout:       config.Server.ReadTimeout,
		WriteTimeout:      config.Server.WriteTimeout,
		IdleTimeout:       config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		lg.Info("starting HTTP server", "address", addr)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			lg.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			lg.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	// handlers still running on the bus may enqueue notifications, so drain the bus first
	bus.Wait()
	app.Close()
	lg.Info("server stopped")
}

// initDB opens the pgx pool shared by sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initRedis returns nil when redis is not configured or unreachable; rate limiting is then switched off.
func initRedis(cfg internal.RedisConfig, lg *slog.Logger) *redis.Client {
	if cfg.Addr == "" {
		lg.Warn("redis not configured, rate limiting disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := internal.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		lg.Warn("redis unreachable, rate limiting disabled", "addr", cfg.Addr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}
