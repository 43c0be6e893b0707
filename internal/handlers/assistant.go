package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"gammadesk/backend-go/internal/models"
)

const educationalDisclaimer = "Educational only, not financial advice."

var redFlagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)guarantee\s+(my\s+)?(portfolio|returns|profit)`),
	regexp.MustCompile(`(?i)(certain|certainty|surefire|can'?t\s+lose|risk[-\s]?free)\s+(profit|return|gain|win)`),
	regexp.MustCompile(`(?i)(what\s+will|tell\s+me\s+what\s+to)\s+(buy|sell)`),
	regexp.MustCompile(`(?i)exact\s+(trade|entry|exit)\s+(to\s+)?(guarantee|ensure)`),
}

var safeRefusalMessage = educationalDisclaimer + " I can't help with guaranteed outcomes, certainty claims, or direct buy/sell instructions. " +
	"I can help with educational alternatives such as: (1) how 0DTE risk/reward profiles work, (2) a checklist for position sizing and stop criteria, " +
	"and (3) scenario analysis for bullish, bearish, and neutral market conditions."

// Assistant serves the educational Q&A surface. Requests asking for
// guaranteed outcomes or direct trade instructions are refused outright; the
// rest get a deterministic learning-focused framework.
func (a *API) Assistant(w http.ResponseWriter, r *http.Request) {
	var req models.AssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Success: false, Error: "Invalid JSON payload."})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Success: false, Error: "Message is required."})
		return
	}

	if isRedFlagRequest(message) {
		writeJSON(w, http.StatusOK, models.AssistantResponse{
			Success:    true,
			Refused:    true,
			Response:   safeRefusalMessage,
			Disclaimer: educationalDisclaimer,
		})
		return
	}

	writeJSON(w, http.StatusOK, models.AssistantResponse{
		Success:    true,
		Refused:    false,
		Response:   buildEducationalResponse(message),
		Disclaimer: educationalDisclaimer,
	})
}

func isRedFlagRequest(message string) bool {
	for _, pattern := range redFlagPatterns {
		if pattern.MatchString(message) {
			return true
		}
	}
	return false
}

func buildEducationalResponse(message string) string {
	return fmt.Sprintf("Based on your question: %q, here is a learning-focused framework:\n", message) +
		"- Define the setup and thesis in plain language.\n" +
		"- Identify invalidation levels and maximum tolerated loss before entering.\n" +
		"- Compare at least two scenarios (favorable and adverse) using probability-aware assumptions.\n" +
		"- Track Greeks (delta, gamma, theta, vega) and liquidity (spread, volume, open interest).\n" +
		"- Review post-trade outcomes to improve process rather than chase certainty."
}
