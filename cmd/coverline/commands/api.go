package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/coverline/internal/api"
	"github.com/wonny/coverline/internal/api/handlers"
	"github.com/wonny/coverline/pkg/metrics"
	"github.com/wonny/coverline/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API server.

This command:
- wires the store (memory or postgres), redis and the webhook notifier
- serves the /api/v1 quote and policy endpoints
- serves /metrics on METRICS_PORT when METRICS_ENABLED

Endpoints (excerpt):
  GET    /health
  POST   /api/v1/users/{user_id}/autoquotes/{auto_id}
  POST   /api/v1/users/{user_id}/autopolicies/{quote_id}
  POST   /api/v1/users/{user_id}/autopolicies/renew/{policy_id}
  DELETE /api/v1/users/{user_id}/autopolicies/{policy_id}

Example:
  go run ./cmd/coverline api
  go run ./cmd/coverline api --port 8081`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Coverline API Server ===")

	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Wire application
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log

	if err := a.ping(cmd.Context()); err != nil {
		return fmt.Errorf("store not reachable: %w", err)
	}

	// 3. Create handlers and router
	var remote *redis.RateLimiter
	if a.redis.Enabled() {
		remote = redis.NewRateLimiter(a.redis, redisPrefix)
	}
	router := api.NewRouter(api.Handlers{
		Users:    handlers.NewUserHandler(a.service, log),
		Quotes:   handlers.NewQuoteHandler(a.service, log),
		Policies: handlers.NewPolicyHandler(a.service, log),
		Health:   handlers.NewHealthHandler(a.service, log),
	}, api.NewRateLimiter(cfg.RateLimit, remote, log), log)

	// 4. Create servers
	server := api.New(cfg, log, router)

	var metricsServer *metrics.Server
	if cfg.MetricsEnabled {
		metricsServer = metrics.NewServer(cfg, log)
		go func() {
			if err := metricsServer.Start(); err != nil {
				log.WithError(err).Error("Metrics server stopped")
			}
		}()
	}

	// 5. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s (store: %s)\n", cfg.Port, cfg.Store)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-quit:
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("Metrics server shutdown failed")
		}
	}
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
