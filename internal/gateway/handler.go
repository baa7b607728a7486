// internal/gateway/handler.go
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"agentscore-gateway/internal/audit"
	commonerrors "agentscore-gateway/internal/common/errors"
	"agentscore-gateway/internal/common/logger"
	"agentscore-gateway/internal/common/metrics"
	"agentscore-gateway/internal/dispatch"
	"agentscore-gateway/internal/ledger"
	"agentscore-gateway/internal/reputation"
	"agentscore-gateway/pkg/registry"
)

// Handler orchestrates the paywall, execution, audit, and delivery phases
// of a service request.
type Handler struct {
	config     *Config
	store      ledger.Store
	catalog    *registry.AgentRegistry
	dispatcher *dispatch.Dispatcher
	auditor    audit.Auditor
	reporter   *reputation.Reporter
	errors     *commonerrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(
	config *Config,
	store ledger.Store,
	catalog *registry.AgentRegistry,
	dispatcher *dispatch.Dispatcher,
	auditor audit.Auditor,
	reporter *reputation.Reporter,
	log logger.Logger,
) *Handler {
	return &Handler{
		config:     config,
		store:      store,
		catalog:    catalog,
		dispatcher: dispatcher,
		auditor:    auditor,
		reporter:   reporter,
		errors:     commonerrors.NewErrorHandler(log),
		logger:     log.With(map[string]interface{}{"component": "gateway"}),
	}
}

// Register mounts the public API on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/request-service", h.HandleRequestService)
	mux.HandleFunc("POST /api/pay-invoice", h.HandlePayInvoice)
}

// HandleRequestService runs the full pipeline: paywall, single-use token
// consumption, execution, audit, reputation write, delivery.
func (h *Handler) HandleRequestService(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	outcome := "success"
	defer func() {
		metrics.GatewayRequests.WithLabelValues(outcome).Inc()
		metrics.GatewayRequestDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	ctx := r.Context()

	var req ServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		outcome = "malformed"
		h.errors.WriteError(w, commonerrors.NewMalformedRequestError(err.Error()))
		return
	}
	if req.AgentID <= 0 || req.UserPrompt == "" {
		outcome = "malformed"
		h.errors.WriteError(w, commonerrors.NewMalformedRequestError("agentId and userPrompt are required"))
		return
	}

	token, ok := h.bearerToken(r)
	if !ok {
		outcome = "challenge"
		h.issueChallenge(ctx, w, req.AgentID)
		return
	}

	// Token is consumed here regardless of downstream outcome.
	if err := h.store.Authorize(ctx, token); err != nil {
		outcome = "unauthorized"
		h.logger.Warn("invalid payment token", map[string]interface{}{"agentId": req.AgentID})
		h.errors.WriteError(w, commonerrors.NewInvalidPaymentTokenError())
		return
	}

	h.logger.Info("payment verified, dispatching", map[string]interface{}{
		"agentId": req.AgentID,
	})

	result, err := h.dispatcher.Dispatch(ctx, req.UserPrompt)
	if err != nil {
		outcome = "worker_unavailable"
		h.errors.WriteError(w, commonerrors.NewWorkerUnavailableError(err))
		return
	}
	metrics.WorkerDispatchDuration.Observe(result.ElapsedMillis / 1000)

	responseTime := result.ElapsedMillis
	verdict, err := h.auditor.Audit(ctx, audit.Request{
		AgentID:      req.AgentID,
		RawPayload:   result.RawOutput,
		ResponseTime: &responseTime,
	})
	if err != nil {
		outcome = "audit_unavailable"
		h.errors.WriteError(w, commonerrors.NewAuditInfraUnavailableError(err))
		return
	}

	auditResult := verdict.Result()
	metrics.AuditVerdicts.WithLabelValues(string(auditResult.AuditStatus)).Inc()

	// The reputation write happens whether the verdict passed or failed;
	// only an audit infrastructure outage suppresses it.
	h.reporter.Report(reputation.Assertion{
		AgentID:       req.AgentID,
		AssertionType: reputation.AssertionTypeFormatCompliance,
		ScoreDelta:    verdict.ScoreDelta,
		EvidenceHash:  verdict.EvidenceDigest,
	})

	if !verdict.Pass {
		outcome = "rejected"
		h.errors.WriteError(w, commonerrors.NewAuditRejectedError(auditResult))
		return
	}

	var data interface{}
	if err := json.Unmarshal([]byte(result.RawOutput), &data); err != nil {
		data = result.RawOutput
	}

	h.writeJSON(w, http.StatusOK, ServiceResponse{
		Status:          "success",
		Data:            data,
		AgentScoreAudit: auditResult,
	})
}

// HandlePayInvoice settles a pending invoice and mints the bearer token.
func (h *Handler) HandlePayInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PayInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.WriteError(w, commonerrors.NewMalformedRequestError(err.Error()))
		return
	}

	token, err := h.store.RedeemInvoice(ctx, req.InvoiceID)
	if err != nil {
		if errors.Is(err, ledger.ErrInvoiceNotFound) {
			h.errors.WriteError(w, commonerrors.NewInvoiceNotFoundError(req.InvoiceID))
			return
		}
		h.errors.WriteError(w, commonerrors.NewInternalError(err))
		return
	}
	metrics.TokensRedeemed.Inc()

	h.logger.Info("invoice paid, token issued", map[string]interface{}{
		"invoiceId": req.InvoiceID,
	})

	h.writeJSON(w, http.StatusOK, PayInvoiceResponse{
		Status:      "paid",
		Token:       token,
		Instruction: payInstruction,
	})
}

// bearerToken extracts the credential from "Authorization: <scheme> <token>".
func (h *Handler) bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	prefix := h.config.Scheme + " "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	token := strings.TrimPrefix(auth, prefix)
	if token == "" {
		return "", false
	}
	return token, true
}

func (h *Handler) issueChallenge(ctx context.Context, w http.ResponseWriter, agentID int64) {
	amount := h.catalog.PriceFor(agentID, h.config.DefaultAmount)

	invoiceID, err := h.store.IssueInvoice(ctx, amount)
	if err != nil {
		h.errors.WriteError(w, commonerrors.NewInternalError(err))
		return
	}
	metrics.InvoicesIssued.Inc()

	h.logger.Info("issuing payment challenge", map[string]interface{}{
		"agentId":   agentID,
		"invoiceId": invoiceID,
		"amount":    amount,
	})

	w.Header().Set("Www-Authenticate",
		fmt.Sprintf(`%s invoice="%s%s"`, h.config.Scheme, h.config.InvoicePrefix, invoiceID))

	challenge := commonerrors.NewPaymentRequiredError(invoiceID)
	challenge.Metadata["message"] = challengeInstruction
	h.errors.WriteError(w, challenge)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
