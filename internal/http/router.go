package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"gammadesk/backend-go/internal/config"
	"gammadesk/backend-go/internal/handlers"
	"gammadesk/backend-go/internal/services"
)

func NewRouter(cfg config.Config, scanner *services.MarketScanner, completion *services.CompletionClient, throttle *services.RequestThrottle) http.Handler {
	api := handlers.New(cfg, scanner, completion, throttle)

	r := mux.NewRouter()
	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/health", api.Health).Methods(http.MethodGet)
	v1.HandleFunc("/scan", api.Scan).Methods(http.MethodGet)
	v1.HandleFunc("/activity", api.Activity).Methods(http.MethodGet)
	v1.HandleFunc("/context", api.BuildContext).Methods(http.MethodPost)
	v1.HandleFunc("/prompt", api.Prompt).Methods(http.MethodPost)
	v1.HandleFunc("/ask", api.Ask).Methods(http.MethodPost)
	v1.HandleFunc("/explain", api.Explain).Methods(http.MethodPost)
	v1.HandleFunc("/assistant", api.Assistant).Methods(http.MethodPost)

	h := http.Handler(r)
	h = withRecovery(h)
	h = withLogging(h)
	h = withCORS(h)
	return h
}
