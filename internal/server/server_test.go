package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/realibuddy/citecheck/internal/model"
)

type fakeAuditor struct {
	outcomes []model.AuditOutcome
	err      error
	lastText string
}

func (f *fakeAuditor) Audit(ctx context.Context, text string) ([]model.AuditOutcome, error) {
	f.lastText = text
	return f.outcomes, f.err
}

func testConfig() model.ServerConfig {
	cfg := model.DefaultConfig().Server
	cfg.RateQuota = 100
	return cfg
}

func postAudit(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/audit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandleAudit_OK(t *testing.T) {
	a := &fakeAuditor{outcomes: []model.AuditOutcome{
		{CitationText: "ref", Status: model.StatusReal, Source: "openalex", Metadata: map[string]interface{}{}},
	}}
	h := New(a, nil, testConfig()).Handler()

	w := postAudit(t, h, `{"text": "Vaswani et al. (2017) ..."}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var outcomes []model.AuditOutcome
	if err := json.Unmarshal(w.Body.Bytes(), &outcomes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Status != model.StatusReal {
		t.Errorf("outcomes = %+v", outcomes)
	}
	if a.lastText != "Vaswani et al. (2017) ..." {
		t.Errorf("auditor got %q", a.lastText)
	}
}

func TestHandleAudit_EmptyText(t *testing.T) {
	h := New(&fakeAuditor{}, nil, testConfig()).Handler()

	for _, body := range []string{`{"text": ""}`, `{"text": "   "}`, `{}`} {
		if w := postAudit(t, h, body); w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d", body, w.Code)
		}
	}
}

func TestHandleAudit_TooLong(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTextLen = 50
	h := New(&fakeAuditor{}, nil, cfg).Handler()

	w := postAudit(t, h, `{"text": "`+strings.Repeat("x", 60)+`"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestHandleAudit_BadJSON(t *testing.T) {
	h := New(&fakeAuditor{}, nil, testConfig()).Handler()

	if w := postAudit(t, h, `not json`); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestHandleAudit_MethodNotAllowed(t *testing.T) {
	h := New(&fakeAuditor{}, nil, testConfig()).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/audit", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", w.Code)
	}
}

func TestHandleAudit_PipelineError(t *testing.T) {
	h := New(&fakeAuditor{err: errors.New("provider down")}, nil, testConfig()).Handler()

	if w := postAudit(t, h, `{"text": "some text"}`); w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
}

func TestHandleAudit_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateQuota = 2
	cfg.RateWindow = time.Minute
	h := New(&fakeAuditor{outcomes: []model.AuditOutcome{}}, nil, cfg).Handler()

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = postAudit(t, h, `{"text": "some text"}`)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("429 must carry Retry-After")
	}
}

func TestHealthz(t *testing.T) {
	h := New(&fakeAuditor{}, nil, testConfig()).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	h := New(&fakeAuditor{}, nil, testConfig()).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/audit", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}
