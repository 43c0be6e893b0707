package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"gammadesk/backend-go/internal/config"
	"gammadesk/backend-go/internal/services"
)

type API struct {
	cfg        config.Config
	scanner    *services.MarketScanner
	completion *services.CompletionClient
	throttle   *services.RequestThrottle
}

func New(cfg config.Config, scanner *services.MarketScanner, completion *services.CompletionClient, throttle *services.RequestThrottle) *API {
	return &API{
		cfg:        cfg,
		scanner:    scanner,
		completion: completion,
		throttle:   throttle,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// clientID identifies the caller for throttling: first X-Forwarded-For hop,
// then X-Real-IP, then the literal "unknown".
func clientID(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return rip
	}
	return "unknown"
}

func timeboxed(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
