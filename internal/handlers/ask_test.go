package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gammadesk/backend-go/internal/config"
	"gammadesk/backend-go/internal/models"
	"gammadesk/backend-go/internal/services"
)

// newCompletionServer fakes the chat-completions endpoint with a fixed answer.
func newCompletionServer(t *testing.T, answer string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": answer}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newConfiguredAPI(t *testing.T, cfg config.Config) *API {
	t.Helper()
	scanner := services.NewMarketScanner(cfg, nil, nil)
	completion := services.NewCompletionClient(cfg)
	throttle := services.NewRequestThrottle(cfg.RateLimitWindow, cfg.RateLimitMax)
	return New(cfg, scanner, completion, throttle)
}

func postAsk(t *testing.T, api *API, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(body))
	w := httptest.NewRecorder()
	api.Ask(w, r)
	return w
}

func decodeAsk(t *testing.T, w *httptest.ResponseRecorder) models.AskResponse {
	t.Helper()
	var res models.AskResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	return res
}

func TestAskNotConfigured(t *testing.T) {
	api := newTestAPI(testConfig())
	w := postAsk(t, api, `{"question":"what is gamma?"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	res := decodeAsk(t, w)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"AI service is not configured. Please add server credentials and try again."}, res.Warnings)
}

func TestAskThrottled(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitMax = 1
	api := newTestAPI(cfg)

	first := postAsk(t, api, `{"question":"q"}`)
	assert.NotEqual(t, http.StatusTooManyRequests, first.Code)

	second := postAsk(t, api, `{"question":"q"}`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	res := decodeAsk(t, second)
	assert.False(t, res.Success)
	assert.Contains(t, res.Warnings[0], "Rate limit exceeded")
}

func TestAskThrottleKeyedByClient(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitMax = 1
	api := newTestAPI(cfg)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"question":"q"}`))
	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	w := httptest.NewRecorder()
	api.Ask(w, r)
	assert.NotEqual(t, http.StatusTooManyRequests, w.Code)

	r2 := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"question":"q"}`))
	r2.Header.Set("X-Forwarded-For", "203.0.113.8")
	w2 := httptest.NewRecorder()
	api.Ask(w2, r2)
	assert.NotEqual(t, http.StatusTooManyRequests, w2.Code, "a different client has its own budget")
}

func TestAskInvalidJSON(t *testing.T) {
	cfg := testConfig()
	cfg.OpenAIAPIKey = "test-key"
	api := newConfiguredAPI(t, cfg)

	w := postAsk(t, api, `{"question":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	res := decodeAsk(t, w)
	assert.Equal(t, []string{"Invalid JSON payload."}, res.Warnings)
}

func TestAskValidation(t *testing.T) {
	cfg := testConfig()
	cfg.OpenAIAPIKey = "test-key"
	api := newConfiguredAPI(t, cfg)

	w := postAsk(t, api, `{"question":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	res := decodeAsk(t, w)
	assert.Equal(t, []string{"Question is required"}, res.Warnings)

	long := strings.Repeat("a", cfg.MaxQuestionChars+1)
	w = postAsk(t, api, `{"question":"`+long+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	res = decodeAsk(t, w)
	assert.Equal(t, []string{"Question must be 1200 characters or less"}, res.Warnings)

	w = postAsk(t, api, `{"question":"ok","context":{"ticker":"TOOLONGTICKER1","contract":"`+strings.Repeat("c", 65)+`"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	res = decodeAsk(t, w)
	assert.Equal(t, []string{
		"Ticker must be 12 characters or less",
		"Contract must be 64 characters or less",
	}, res.Warnings)
}

func TestAskSuccess(t *testing.T) {
	srv := newCompletionServer(t, "Gamma measures the rate of change of delta.")
	cfg := testConfig()
	cfg.OpenAIAPIKey = "test-key"
	cfg.OpenAIBaseURL = srv.URL
	api := newConfiguredAPI(t, cfg)

	w := postAsk(t, api, `{"question":"what is gamma?","context":{"ticker":"SPX"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	res := decodeAsk(t, w)
	assert.True(t, res.Success)
	require.NotNil(t, res.Answer)
	assert.Equal(t, "Gamma measures the rate of change of delta.", *res.Answer)
	assert.Empty(t, res.Warnings)
	assert.NotNil(t, res.Warnings, "warnings is an empty list, not null")
}

func TestAskCompletionTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.OpenAIAPIKey = "test-key"
	cfg.OpenAIBaseURL = srv.URL
	cfg.CompletionTimeout = 20 * time.Millisecond
	api := newConfiguredAPI(t, cfg)

	w := postAsk(t, api, `{"question":"slow"}`)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	res := decodeAsk(t, w)
	assert.Equal(t, []string{"The AI request timed out. Please try again."}, res.Warnings)
}

func TestAskEmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.OpenAIAPIKey = "test-key"
	cfg.OpenAIBaseURL = srv.URL
	api := newConfiguredAPI(t, cfg)

	w := postAsk(t, api, `{"question":"q"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	res := decodeAsk(t, w)
	assert.Equal(t, []string{"No answer was generated. Please refine your question and try again."}, res.Warnings)
}

func TestAskUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.OpenAIAPIKey = "test-key"
	cfg.OpenAIBaseURL = srv.URL
	api := newConfiguredAPI(t, cfg)

	w := postAsk(t, api, `{"question":"q"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	res := decodeAsk(t, w)
	assert.Equal(t, []string{"Unable to generate an answer right now. Please try again shortly."}, res.Warnings)
}

func TestBuildAskPrompt(t *testing.T) {
	prompt := buildAskPrompt(models.AskRequest{
		Question: "Is the spread workable?",
		Context:  &models.AskContext{Ticker: "SPX", Contract: "SPX:2026-02-10:CALL:5000"},
	})

	want := askPromptIntro + "\n\n" +
		"Context:\nTicker: SPX\nContract: SPX:2026-02-10:CALL:5000\n\n" +
		"Question: Is the spread workable?"
	assert.Equal(t, want, prompt)

	bare := buildAskPrompt(models.AskRequest{Question: "q"})
	assert.Equal(t, askPromptIntro+"\n\nQuestion: q", bare)
	assert.NotContains(t, bare, "Context:")
}
