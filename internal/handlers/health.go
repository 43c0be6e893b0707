package handlers

import (
	"net/http"
	"os"

	"gammadesk/backend-go/internal/models"
)

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Ok:      true,
		TsISO:   nowISO(),
		Service: "backend-go",
		Version: os.Getenv("SERVICE_VERSION"),
		Env: map[string]bool{
			"POLYGON_API_KEY":   a.cfg.PolygonAPIKey != "",
			"OPENAI_API_KEY":    a.cfg.OpenAIAPIKey != "",
			"OPENAI_MODEL":      os.Getenv("OPENAI_MODEL") != "",
			"REQUIRE_REAL_DATA": a.cfg.RequireRealData,
			"REDIS_URL":         os.Getenv("REDIS_URL") != "",
		},
		Features: map[string]bool{
			"live_scan_enabled":     a.cfg.PolygonAPIKey != "",
			"mock_fallback_enabled": !a.cfg.RequireRealData,
			"completions_enabled":   a.completion.Configured(),
		},
	}
	writeJSON(w, http.StatusOK, resp)
}
