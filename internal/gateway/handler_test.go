// internal/gateway/handler_test.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"agentscore-gateway/internal/audit"
	"agentscore-gateway/internal/common/logger"
	"agentscore-gateway/internal/dispatch"
	"agentscore-gateway/internal/ledger"
	"agentscore-gateway/internal/reputation"
	"agentscore-gateway/pkg/registry"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Fixtures
// ==========================

type capturingSubmitter struct {
	mu  sync.Mutex
	got []reputation.Assertion
	ch  chan reputation.Assertion
}

func newCapturingSubmitter() *capturingSubmitter {
	return &capturingSubmitter{ch: make(chan reputation.Assertion, 8)}
}

func (c *capturingSubmitter) Submit(_ context.Context, a reputation.Assertion) error {
	c.mu.Lock()
	c.got = append(c.got, a)
	c.mu.Unlock()
	c.ch <- a
	return nil
}

func (c *capturingSubmitter) wait(t *testing.T) reputation.Assertion {
	t.Helper()
	select {
	case a := <-c.ch:
		return a
	case <-time.After(2 * time.Second):
		t.Fatal("no reputation assertion was submitted")
		return reputation.Assertion{}
	}
}

type brokenExecutor struct{}

func (brokenExecutor) Execute(context.Context, string) (string, error) {
	return "", errors.New("engine offline")
}

type testHarness struct {
	handler   *Handler
	mux       *http.ServeMux
	store     ledger.Store
	submitter *capturingSubmitter
}

type harnessOption func(*testHarness, logger.Logger)

func withExecutor(exec dispatch.Executor) harnessOption {
	return func(h *testHarness, log logger.Logger) {
		h.handler.dispatcher = dispatch.NewWithExecutor(&dispatch.Config{}, exec, log)
	}
}

func withAuditor(a audit.Auditor) harnessOption {
	return func(h *testHarness, _ logger.Logger) {
		h.handler.auditor = a
	}
}

func newHarness(t *testing.T, opts ...harnessOption) *testHarness {
	t.Helper()
	log := logger.NewTestLogger(t)

	store := ledger.NewMemoryStore(ledger.Config{})
	t.Cleanup(func() { _ = store.Close() })

	engine, err := audit.NewEngine(audit.LoadConfig(), log)
	assert.NoError(t, err)

	catalog := &registry.AgentRegistry{Version: "1.0.0", Agents: []registry.Agent{
		{ID: 1, DisplayName: "Weather Oracle", PriceSats: 25},
	}}

	submitter := newCapturingSubmitter()

	h := &testHarness{
		handler: NewHandler(
			&Config{Scheme: "L402", InvoicePrefix: "lnbc10u1...mock_invoice_", DefaultAmount: 10},
			store,
			catalog,
			dispatch.New(&dispatch.Config{Mode: dispatch.ModeSimulate}, log),
			engine,
			reputation.NewReporter(submitter, time.Second, log),
			log,
		),
		store:     store,
		submitter: submitter,
	}
	for _, opt := range opts {
		opt(h, log)
	}

	h.mux = http.NewServeMux()
	h.handler.Register(h.mux)
	return h
}

func (h *testHarness) post(path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// payForToken walks the challenge/pay flow and returns a valid token.
func (h *testHarness) payForToken(t *testing.T) string {
	t.Helper()
	rec := h.post("/api/request-service", `{"agentId":1,"userPrompt":"weather"}`, nil)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	invoiceID := decodeBody(t, rec)["invoiceId"].(string)

	rec = h.post("/api/pay-invoice", `{"invoiceId":"`+invoiceID+`"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	return decodeBody(t, rec)["token"].(string)
}

func l402(token string) map[string]string {
	return map[string]string{"Authorization": "L402 " + token}
}

// ==========================
// Paywall Phase
// ==========================

func TestRequestService_MalformedBody(t *testing.T) {
	h := newHarness(t)

	for _, body := range []string{"{not json", `{"agentId":0,"userPrompt":"x"}`, `{"agentId":1}`} {
		rec := h.post("/api/request-service", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestRequestService_ChallengeWithoutToken(t *testing.T) {
	h := newHarness(t)

	rec := h.post("/api/request-service", `{"agentId":1,"userPrompt":"weather"}`, nil)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	challenge := rec.Header().Get("Www-Authenticate")
	assert.True(t, strings.HasPrefix(challenge, `L402 invoice="lnbc10u1...mock_invoice_`), challenge)

	body := decodeBody(t, rec)
	assert.Equal(t, "Payment Required", body["error"])
	assert.NotEmpty(t, body["invoiceId"])
	assert.Contains(t, body["message"], "pay the invoice")
}

func TestRequestService_WrongSchemeGetsChallenge(t *testing.T) {
	h := newHarness(t)

	rec := h.post("/api/request-service", `{"agentId":1,"userPrompt":"weather"}`,
		map[string]string{"Authorization": "Bearer sometoken"})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestRequestService_InvalidToken(t *testing.T) {
	h := newHarness(t)

	rec := h.post("/api/request-service", `{"agentId":1,"userPrompt":"weather"}`, l402("deadbeef"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized. Invalid payment token.", decodeBody(t, rec)["error"])
}

func TestRequestService_TokenIsSingleUse(t *testing.T) {
	h := newHarness(t)
	token := h.payForToken(t)

	rec := h.post("/api/request-service", `{"agentId":1,"userPrompt":"weather"}`, l402(token))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.post("/api/request-service", `{"agentId":1,"userPrompt":"weather"}`, l402(token))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ==========================
// Pay Invoice
// ==========================

func TestPayInvoice_UnknownInvoice(t *testing.T) {
	h := newHarness(t)

	rec := h.post("/api/pay-invoice", `{"invoiceId":"nope"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Invoice not found or already paid.", decodeBody(t, rec)["error"])
}

func TestPayInvoice_SecondPaymentRejected(t *testing.T) {
	h := newHarness(t)

	rec := h.post("/api/request-service", `{"agentId":1,"userPrompt":"weather"}`, nil)
	invoiceID := decodeBody(t, rec)["invoiceId"].(string)

	rec = h.post("/api/pay-invoice", `{"invoiceId":"`+invoiceID+`"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "paid", body["status"])
	assert.Len(t, body["token"], 32)
	assert.Contains(t, body["instruction"], "Authorization: L402")

	rec = h.post("/api/pay-invoice", `{"invoiceId":"`+invoiceID+`"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ==========================
// Execution & Audit Phases
// ==========================

func TestRequestService_SuccessfulDelivery(t *testing.T) {
	h := newHarness(t)
	token := h.payForToken(t)

	rec := h.post("/api/request-service", `{"agentId":1,"userPrompt":"what is the weather"}`, l402(token))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Sunny", data["condition"])
	assert.Equal(t, float64(22), data["temperature"])

	verdict := body["agentScoreAudit"].(map[string]interface{})
	assert.Equal(t, "PASSED", verdict["auditStatus"])
	assert.Equal(t, float64(25), verdict["reputationImpact"])
	assert.Contains(t, verdict["message"], "Syntax: OK")

	a := h.submitter.wait(t)
	assert.Equal(t, int64(1), a.AgentID)
	assert.Equal(t, 25, a.ScoreDelta)
	assert.Equal(t, reputation.AssertionTypeFormatCompliance, a.AssertionType)
}

func TestRequestService_AuditRejection(t *testing.T) {
	h := newHarness(t)
	token := h.payForToken(t)

	rec := h.post("/api/request-service", `{"agentId":1,"userPrompt":"hallucinate for me"}`, l402(token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "AgentScore Quality Protocol")

	details := body["auditDetails"].(map[string]interface{})
	assert.Equal(t, "FAILED", details["auditStatus"])
	assert.Equal(t, float64(-10), details["reputationImpact"])
	assert.NotContains(t, rec.Body.String(), "Here is the weather")

	// A failed verdict still produces a reputation write.
	a := h.submitter.wait(t)
	assert.Equal(t, -10, a.ScoreDelta)
}

func TestRequestService_WorkerUnavailable(t *testing.T) {
	h := newHarness(t, withExecutor(brokenExecutor{}))
	token := h.payForToken(t)

	rec := h.post("/api/request-service", `{"agentId":1,"userPrompt":"weather"}`, l402(token))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// The token was consumed before the failure.
	rec = h.post("/api/request-service", `{"agentId":1,"userPrompt":"weather"}`, l402(token))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestService_AuditInfraUnavailable(t *testing.T) {
	remote := audit.NewWebhookClient("http://127.0.0.1:1/webhook", 200*time.Millisecond, logger.NewNoOpLogger())
	h := newHarness(t, withAuditor(remote))
	token := h.payForToken(t)

	rec := h.post("/api/request-service", `{"agentId":1,"userPrompt":"weather"}`, l402(token))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "audit failed")

	// No verdict means no reputation write.
	h.submitter.mu.Lock()
	assert.Empty(t, h.submitter.got)
	h.submitter.mu.Unlock()
}

func TestRequestService_AgentPricingFromCatalog(t *testing.T) {
	h := newHarness(t)

	// Agent 1 is priced in the catalog; agent 7 falls back to the default.
	rec := h.post("/api/request-service", `{"agentId":7,"userPrompt":"weather"}`, nil)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	invoiceID := decodeBody(t, rec)["invoiceId"].(string)
	rec = h.post("/api/pay-invoice", `{"invoiceId":"`+invoiceID+`"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
