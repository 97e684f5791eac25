package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/service"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/server/httpserver/handler"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/storage/memory"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/metric"
)

var (
	serverSecret  = []byte("server-secret-0123456789abcdef-0123")
	foreignSecret = []byte("another-secret-0123456789abcdef-999")
)

// stubCompleter counts calls so tests can tell whether the chat handler ran.
type stubCompleter struct {
	calls atomic.Int32
}

func (s *stubCompleter) Complete(ctx context.Context, p domain.Prompt) (string, error) {
	s.calls.Add(1)
	return "She is a frontend engineer.", nil
}

type testEnv struct {
	server    *httptest.Server
	csrf      *service.CSRFService
	completer *stubCompleter
	metrics   *metric.Registry
}

func newTestEnv(t *testing.T, chatMax, globalMax int64) *testEnv {
	t.Helper()

	csrf, err := service.NewCSRFService(service.CSRFConfig{Secret: serverSecret})
	if err != nil {
		t.Fatal(err)
	}

	store := memory.New()
	chatCfg := service.ChatRateLimitConfig()
	chatCfg.Max = chatMax
	chatLimiter, err := service.NewRateLimiter(chatCfg, store)
	if err != nil {
		t.Fatal(err)
	}
	globalCfg := service.GlobalRateLimitConfig()
	globalCfg.Max = globalMax
	globalLimiter, err := service.NewRateLimiter(globalCfg, store)
	if err != nil {
		t.Fatal(err)
	}

	completer := &stubCompleter{}
	cfg := service.DefaultChatConfig()
	cfg.CacheSize = 0
	chat, err := service.NewChatService(cfg, service.StaticProfile(`{"name":"Test"}`), completer)
	if err != nil {
		t.Fatal(err)
	}

	reg := metric.NewRegistry()
	router := NewRouter(&RouterConfig{
		Tokens:        csrf,
		Checker:       csrf,
		Chat:          chat,
		GlobalLimiter: globalLimiter,
		ChatLimiter:   chatLimiter,
		Metrics:       reg,
		Logger:        testLogger(),
		CORSOrigins:   []string{"*"},
		Version:       "test",
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, csrf: csrf, completer: completer, metrics: reg}
}

func (e *testEnv) fetchToken(t *testing.T) string {
	t.Helper()
	resp, err := http.Get(e.server.URL + "/api/csrf-token")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("token status = %d", resp.StatusCode)
	}
	var issued domain.IssuedToken
	if err := json.NewDecoder(resp.Body).Decode(&issued); err != nil {
		t.Fatal(err)
	}
	return issued.Token
}

func (e *testEnv) postChat(t *testing.T, token, body string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, e.server.URL+"/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(HeaderCSRFToken, token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeErrorBody(t *testing.T, resp *http.Response) handler.ErrorResponse {
	t.Helper()
	var body handler.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	return body
}

func TestE2E_MissingToken(t *testing.T) {
	env := newTestEnv(t, 10, 100)

	resp := env.postChat(t, "", `{"userMessage":"Who is this?"}`)

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	body := decodeErrorBody(t, resp)
	if body.Code != "CSRF_TOKEN_MISSING" || body.Error != "CSRF token missing" {
		t.Errorf("body = %+v", body)
	}
	if env.completer.calls.Load() != 0 {
		t.Error("chat handler ran without a token")
	}
}

func TestE2E_ForeignSecretToken(t *testing.T) {
	env := newTestEnv(t, 10, 100)

	other, err := service.NewCSRFService(service.CSRFConfig{Secret: foreignSecret})
	if err != nil {
		t.Fatal(err)
	}
	forged, err := other.Issue()
	if err != nil {
		t.Fatal(err)
	}

	resp := env.postChat(t, forged.Token, `{"userMessage":"Who is this?"}`)

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	body := decodeErrorBody(t, resp)
	if body.Code != "CSRF_TOKEN_INVALID" || body.Error != "Invalid or expired CSRF token" {
		t.Errorf("body = %+v", body)
	}
	if env.completer.calls.Load() != 0 {
		t.Error("chat handler ran with a forged token")
	}
}

func TestE2E_ValidTokenReachesChat(t *testing.T) {
	env := newTestEnv(t, 10, 100)
	token := env.fetchToken(t)

	resp := env.postChat(t, token, `{"userMessage":"Who is this?"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body handler.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Response != "She is a frontend engineer." {
		t.Errorf("response = %q", body.Response)
	}
	if _, err := time.Parse(time.RFC3339, body.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC 3339", body.Timestamp)
	}
	if env.completer.calls.Load() != 1 {
		t.Errorf("completer calls = %d, want 1", env.completer.calls.Load())
	}
	if resp.Header.Get(HeaderRateLimitLimit) != "10" {
		t.Errorf("X-RateLimit-Limit = %q, want the chat limit", resp.Header.Get(HeaderRateLimitLimit))
	}
}

func TestE2E_TokenInBody(t *testing.T) {
	env := newTestEnv(t, 10, 100)
	token := env.fetchToken(t)

	resp := env.postChat(t, "", fmt.Sprintf(`{"userMessage":"Who is this?","csrfToken":%q}`, token))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestE2E_TokenReplayAllowed(t *testing.T) {
	env := newTestEnv(t, 10, 100)
	token := env.fetchToken(t)

	for i := 0; i < 3; i++ {
		if resp := env.postChat(t, token, `{"userMessage":"again?"}`); resp.StatusCode != http.StatusOK {
			t.Fatalf("use %d: status = %d, want 200", i+1, resp.StatusCode)
		}
	}
}

func TestE2E_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, 10, 100)

	tests := []struct {
		method, path, allow string
	}{
		{http.MethodPost, "/api/csrf-token", "GET"},
		{http.MethodHead, "/api/csrf-token", "GET"},
		{http.MethodDelete, "/api/csrf-token", "GET"},
		{http.MethodGet, "/api/chat", "POST"},
		{http.MethodPut, "/api/chat", "POST"},
	}

	for _, tt := range tests {
		req, _ := http.NewRequest(tt.method, env.server.URL+tt.path, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status = %d, want 405", tt.method, tt.path, resp.StatusCode)
		}
		if got := resp.Header.Get("Allow"); got != tt.allow {
			t.Errorf("%s %s: Allow = %q, want %q", tt.method, tt.path, got, tt.allow)
		}
	}
}

func TestE2E_ChatRateLimit(t *testing.T) {
	env := newTestEnv(t, 3, 100)
	token := env.fetchToken(t)

	for i := 0; i < 3; i++ {
		resp := env.postChat(t, token, `{"userMessage":"hello there"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, resp.StatusCode)
		}
	}

	resp := env.postChat(t, token, `{"userMessage":"hello there"}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("4th request: status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get(HeaderRetryAfter) == "" {
		t.Error("missing Retry-After")
	}
	if resp.Header.Get(HeaderRateLimitRemaining) != "0" {
		t.Errorf("X-RateLimit-Remaining = %q", resp.Header.Get(HeaderRateLimitRemaining))
	}

	var body handler.RateLimitResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != "RATE_LIMITED" || body.Limit != 3 || body.RetryAfter < 1 {
		t.Errorf("body = %+v", body)
	}
	if env.completer.calls.Load() != 3 {
		t.Errorf("completer calls = %d, want 3", env.completer.calls.Load())
	}
}

func TestE2E_RateLimitBeforeCSRF(t *testing.T) {
	env := newTestEnv(t, 1, 100)

	// Both requests lack a token; the second is throttled before the guard runs.
	if resp := env.postChat(t, "", `{"userMessage":"hi there"}`); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("first: status = %d, want 403", resp.StatusCode)
	}
	if resp := env.postChat(t, "", `{"userMessage":"hi there"}`); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second: status = %d, want 429", resp.StatusCode)
	}
}

func TestE2E_GlobalLimitCoversTokenEndpoint(t *testing.T) {
	env := newTestEnv(t, 10, 2)

	env.fetchToken(t)
	env.fetchToken(t)

	resp, err := http.Get(env.server.URL + "/api/csrf-token")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}

	// Operational endpoints are exempt.
	resp, err = http.Get(env.server.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/health status = %d, want 200", resp.StatusCode)
	}
}

func TestE2E_InvalidMessage(t *testing.T) {
	env := newTestEnv(t, 10, 100)
	token := env.fetchToken(t)

	resp := env.postChat(t, token, `{"userMessage":"   "}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body := decodeErrorBody(t, resp); body.Code != "INVALID_INPUT" {
		t.Errorf("code = %q", body.Code)
	}
}

func TestE2E_Preflight(t *testing.T) {
	env := newTestEnv(t, 10, 100)

	req, _ := http.NewRequest(http.MethodOptions, env.server.URL+"/api/chat", nil)
	req.Header.Set("Origin", "https://card.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}

func TestE2E_RootAndNotFound(t *testing.T) {
	env := newTestEnv(t, 10, 100)

	resp, err := http.Get(env.server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "Welcome to the Chat API" {
		t.Errorf("/ = %d %q", resp.StatusCode, body)
	}

	resp, err = http.Get(env.server.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("/nope status = %d, want 404", resp.StatusCode)
	}
}

func TestE2E_Metrics(t *testing.T) {
	env := newTestEnv(t, 10, 100)
	env.fetchToken(t)

	resp, err := http.Get(env.server.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "cardchat_csrf_tokens_issued_total 1") {
		t.Errorf("metrics output missing issued counter")
	}
}
