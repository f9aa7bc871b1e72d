package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/fuel-station-management/internal/metrics"
	"github.com/frahmantamala/fuel-station-management/internal/notification"
	"github.com/frahmantamala/fuel-station-management/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that drain the message broker.`,
}

var notificationWorkerCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Consume the notification queue",
	Long:  `Consume queued email notifications from RabbitMQ and hand them to the mail transport`,
	Run: func(cmd *cobra.Command, args []string) {
		startNotificationWorker()
	},
}

var (
	prefetch    int
	metricsAddr string
)

func startNotificationWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	lg := logger.LoggerWrapper()

	var m *metrics.Metrics
	if config.Observability.Metrics.Enabled {
		m = metrics.New(prometheus.NewRegistry())
	}

	consumer := notification.NewConsumer(
		config.Notification.AMQPURL,
		config.Notification.Queue,
		getIntFlag(prefetch, config.Notification.Workers),
		notification.NewLogMailer(lg),
		m,
		lg,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if m != nil && metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle(config.Observability.Metrics.Path, m.Handler())
		metricsServer = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				lg.Error("metrics server failed", "error", err)
			}
		}()
	}

	lg.Info("notification worker is running. Press Ctrl+C to stop.",
		"queue", config.Notification.Queue,
		"prefetch", getIntFlag(prefetch, config.Notification.Workers))

	if err := consumer.Run(ctx); err != nil {
		lg.Error("notification worker stopped", "error", err)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	lg.Info("notification worker shutdown complete")
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	notificationWorkerCmd.Flags().IntVar(&prefetch, "prefetch", 0, "Unacknowledged deliveries held at once (overrides notification.workers)")
	notificationWorkerCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address to expose worker metrics on, e.g. :9091")

	workerCmd.AddCommand(notificationWorkerCmd)
}
