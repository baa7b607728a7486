// cmd/gateway/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"agentscore-gateway/internal/audit"
	"agentscore-gateway/internal/common/config"
	"agentscore-gateway/internal/common/database"
	"agentscore-gateway/internal/common/logger"
	"agentscore-gateway/internal/common/observability"
	"agentscore-gateway/internal/dispatch"
	"agentscore-gateway/internal/gateway"
	"agentscore-gateway/internal/ledger"
	"agentscore-gateway/internal/reputation"
	"agentscore-gateway/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting gateway...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("gateway")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Ledger Store ---
	var store ledger.Store
	ledgerCfg := ledger.Config{
		InvoiceTTL: config.GetDuration(cfg.Ledger.InvoiceTTL),
		TokenTTL:   config.GetDuration(cfg.Ledger.TokenTTL),
	}

	switch cfg.Ledger.Store {
	case "redis":
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")

		store = ledger.NewRedisStore(redisClient.GetClient(), ledgerCfg)
	default:
		memStore := ledger.NewMemoryStore(ledgerCfg)
		defer memStore.Close()
		store = memStore
	}
	zapLog.Info("Ledger store initialized", zap.String("store", cfg.Ledger.Store))

	// --- Load Agent Catalog ---
	var catalog *registry.AgentRegistry
	if cfg.Registry.Path != "" {
		catalog, err = registry.LoadRegistry(cfg.Registry.Path)
		if err != nil {
			zapLog.Fatal("agent registry load failed", zap.Error(err))
		}
		if err := catalog.Validate(); err != nil {
			zapLog.Fatal("agent registry invalid", zap.Error(err))
		}
		zapLog.Info("Agent registry loaded", zap.Int("agents", len(catalog.Agents)))
	} else {
		zapLog.Warn("No agent registry configured, using default pricing")
	}

	// --- Init Dispatcher ---
	dispatcher := dispatch.New(dispatch.ConfigFrom(cfg.Worker), log)
	zapLog.Info("Dispatcher initialized", zap.String("mode", cfg.Worker.Mode))

	// --- Init Auditor ---
	var auditor audit.Auditor
	if cfg.Audit.Mode == "remote" {
		auditor = audit.NewWebhookClient(cfg.Audit.WebhookURL, config.GetDuration(cfg.Audit.Timeout), log)
		zapLog.Info("Remote auditor configured", zap.String("url", cfg.Audit.WebhookURL))
	} else {
		engine, err := audit.NewEngine(&audit.Config{
			SlowThresholdMillis: float64(cfg.Audit.SlowThreshold),
			Denylist:            cfg.Audit.Denylist,
		}, log)
		if err != nil {
			zapLog.Fatal("audit engine init failed", zap.Error(err))
		}
		auditor = engine
	}

	// --- Init Reputation Reporter ---
	var submitter reputation.Submitter = reputation.NoOpSubmitter{}
	if cfg.Reputation.Enabled && cfg.Reputation.URL != "" {
		submitter = reputation.NewHTTPSubmitter(cfg.Reputation.URL, config.GetDuration(cfg.Reputation.Timeout), log)
		zapLog.Info("Reputation ledger configured", zap.String("url", cfg.Reputation.URL))
	}
	reporter := reputation.NewReporter(submitter, config.GetDuration(cfg.Reputation.Timeout), log)

	// --- Wire Handlers ---
	handler := gateway.NewHandler(
		gateway.ConfigFrom(cfg.Payment),
		store,
		catalog,
		dispatcher,
		auditor,
		reporter,
		log,
	)

	mux := http.NewServeMux()
	handler.Register(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ready",
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: mux,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")

	shutdownCtx, cancel := context.WithTimeout(ctx, config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("shutdown incomplete", zap.Error(err))
	}

	zapLog.Info("Gateway stopped")
}
