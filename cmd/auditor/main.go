// cmd/auditor/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"agentscore-gateway/internal/audit"
	"agentscore-gateway/internal/common/config"
	"agentscore-gateway/internal/common/logger"
	"agentscore-gateway/internal/common/observability"
)

// webhookRequest tolerates loosely typed callers: responseTime may arrive
// as a number, a string, or not at all. Only a numeric value feeds the
// performance stage.
type webhookRequest struct {
	AgentID      int64       `json:"agentId"`
	RawPayload   string      `json:"rawPayload"`
	ResponseTime interface{} `json:"responseTime"`
}

func (r *webhookRequest) auditRequest() audit.Request {
	req := audit.Request{
		AgentID:    r.AgentID,
		RawPayload: r.RawPayload,
	}
	if ms, ok := r.ResponseTime.(float64); ok {
		req.ResponseTime = &ms
	}
	return req
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting auditor webhook...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("auditor")
	defer obs.Shutdown()

	engine, err := audit.NewEngine(&audit.Config{
		SlowThresholdMillis: float64(cfg.Audit.SlowThreshold),
		Denylist:            cfg.Audit.Denylist,
	}, log)
	if err != nil {
		zapLog.Fatal("audit engine init failed", zap.Error(err))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /webhook", func(w http.ResponseWriter, r *http.Request) {
		var req webhookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid request body"})
			return
		}

		verdict := engine.Score(req.auditRequest())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(verdict.Result())
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: mux,
	}

	go func() {
		zapLog.Info("Auditor listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("shutdown incomplete", zap.Error(err))
	}

	zapLog.Info("Auditor stopped")
}
