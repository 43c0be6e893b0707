package handlers

import (
	"net/http"
	"strings"

	"gammadesk/backend-go/internal/models"
)

// Scan runs the 0DTE scan for one ticker (or the wildcard). It always
// resolves to a list; provider failures degrade to mock or empty results
// inside the scanner and are never surfaced as errors here.
func (a *API) Scan(w http.ResponseWriter, r *http.Request) {
	ticker := strings.TrimSpace(r.URL.Query().Get("ticker"))
	if ticker == "" {
		ticker = models.WildcardTicker
	}

	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()

	writeJSON(w, http.StatusOK, models.ScanResponse{
		Success:   true,
		Data:      a.scanner.Scan(ctx, ticker),
		Timestamp: nowISO(),
	})
}

// Activity returns the classified market-activity feed.
func (a *API) Activity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeboxed(r, a.cfg.RequestTimeout)
	defer cancel()

	writeJSON(w, http.StatusOK, models.ActivityResponse{
		Success: true,
		Data:    a.scanner.Activity(ctx),
	})
}
