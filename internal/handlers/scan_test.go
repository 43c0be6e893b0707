package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gammadesk/backend-go/internal/models"
)

func TestScanEndpointDefaultsToWildcard(t *testing.T) {
	api := newTestAPI(testConfig())

	r := httptest.NewRequest(http.MethodGet, "/api/v1/scan", nil)
	w := httptest.NewRecorder()
	api.Scan(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var res models.ScanResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.True(t, res.Success)
	assert.Len(t, res.Data, 6, "mock-only mode serves the full catalog")
	assert.False(t, res.Data[0].IsRealData)

	ts, err := time.Parse(time.RFC3339, res.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), ts, time.Minute)
}

func TestScanEndpointFiltersByTicker(t *testing.T) {
	api := newTestAPI(testConfig())

	r := httptest.NewRequest(http.MethodGet, "/api/v1/scan?ticker=SPX", nil)
	w := httptest.NewRecorder()
	api.Scan(w, r)

	var res models.ScanResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	require.Len(t, res.Data, 1)
	assert.Equal(t, "SPX", res.Data[0].Ticker)
	assert.Equal(t, 92, res.Data[0].GammaScore)
	assert.Equal(t, models.ConvictionHigh, res.Data[0].Conviction)
}

func TestScanEndpointUnknownTickerIsEmptyList(t *testing.T) {
	api := newTestAPI(testConfig())

	r := httptest.NewRequest(http.MethodGet, "/api/v1/scan?ticker=GME", nil)
	w := httptest.NewRecorder()
	api.Scan(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&raw))
	assert.JSONEq(t, `[]`, string(raw["data"]), "empty scans serialize as [], not null")
}

func TestActivityEndpoint(t *testing.T) {
	api := newTestAPI(testConfig())

	r := httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil)
	w := httptest.NewRecorder()
	api.Activity(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var res models.ActivityResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.True(t, res.Success)
	assert.Len(t, res.Data, 6)
	assert.Equal(t, "SPX", res.Data[0].Ticker)
}

func TestHealthEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.OpenAIAPIKey = "test-key"
	api := newConfiguredAPI(t, cfg)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	api.Health(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var res models.HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.True(t, res.Ok)
	assert.False(t, res.Env["POLYGON_API_KEY"])
	assert.True(t, res.Env["OPENAI_API_KEY"])
	assert.False(t, res.Features["live_scan_enabled"])
	assert.True(t, res.Features["mock_fallback_enabled"])
	assert.True(t, res.Features["completions_enabled"])
	_, err := time.Parse(time.RFC3339, res.TsISO)
	assert.NoError(t, err)
}
