package main

import (
	"net/http"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"gammadesk/backend-go/internal/config"
	internalhttp "gammadesk/backend-go/internal/http"
	"gammadesk/backend-go/internal/services"
)

func main() {
	_ = godotenv.Load(
		".env",
		".env.local",
		"../.env",
		"../.env.local",
	)
	cfg := config.Load()
	cache := services.NewCache(cfg)

	var provider services.ChainProvider
	if cfg.PolygonAPIKey != "" {
		provider = services.NewPolygonProvider(cfg.PolygonAPIKey, cfg.ScanLimit)
	} else {
		log.Warn("POLYGON_API_KEY not set, scanner runs in mock-only mode")
	}

	scanner := services.NewMarketScanner(cfg, provider, cache)
	completion := services.NewCompletionClient(cfg)
	throttle := services.NewRequestThrottle(cfg.RateLimitWindow, cfg.RateLimitMax)

	h := internalhttp.NewRouter(cfg, scanner, completion, throttle)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Infof("gammadesk backend listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
