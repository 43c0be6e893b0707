package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"gammadesk/backend-go/internal/models"
)

const explainSystemPrompt = "You are a 0DTE options scanner assistant. Respond with JSON only."

// Explain produces a structured breakdown of one scanner row. The completion
// backend is optional: when it is missing, errors out, or returns something
// unparseable, the deterministic rule-built explanation is served instead.
func (a *API) Explain(w http.ResponseWriter, r *http.Request) {
	var req models.ExplainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Success: false, Error: "Invalid JSON payload."})
		return
	}
	if req.Trade == nil || req.Trade.ID == "" || req.Trade.Ticker == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Success: false, Error: "Missing trade payload"})
		return
	}
	trade := *req.Trade

	if !a.completion.Configured() {
		writeJSON(w, http.StatusOK, models.ExplainResponse{
			Success: true,
			Data:    fallbackExplanation(trade),
			Meta:    models.ExplainMeta{Source: "fallback", Reason: "completion backend not configured"},
		})
		return
	}

	answer, err := a.completion.Complete(r.Context(), explainSystemPrompt, buildExplainPrompt(trade))
	if err != nil {
		log.WithError(err).Warn("explain completion failed, serving fallback")
		writeJSON(w, http.StatusOK, models.ExplainResponse{
			Success: true,
			Data:    fallbackExplanation(trade),
			Meta:    models.ExplainMeta{Source: "fallback", Reason: "completion backend error"},
		})
		return
	}

	var explanation models.Explanation
	if err := json.Unmarshal([]byte(answer), &explanation); err != nil || len(explanation.Summary) == 0 {
		writeJSON(w, http.StatusOK, models.ExplainResponse{
			Success: true,
			Data:    fallbackExplanation(trade),
			Meta:    models.ExplainMeta{Source: "fallback", Reason: "completion output was not valid JSON"},
		})
		return
	}

	writeJSON(w, http.StatusOK, models.ExplainResponse{
		Success: true,
		Data:    explanation,
		Meta:    models.ExplainMeta{Source: "model"},
	})
}

func buildExplainPrompt(trade models.Opportunity) string {
	payload, _ := json.MarshalIndent(trade, "", "  ")
	return strings.Join([]string{
		"Explain this row using the scanner's specific model logic, not generic options theory.",
		"",
		"Scanner model context:",
		"- gammaScore is computed from the option contract greeks as: min(100, round(abs(gamma) * 5000)).",
		"- expMove is derived from delta as a signed percentage string to one decimal.",
		"- conviction is assigned from gammaScore: High if > 80, Medium if > 50, Low otherwise.",
		"- Rows are sorted descending by gammaScore.",
		"",
		"Row to explain:",
		string(payload),
		"",
		"Return JSON only with keys: summary, riskFactors, whatToWatchNext.",
		"Each key must be an array of concise actionable bullet points.",
	}, "\n")
}

var expMovePattern = regexp.MustCompile(`-?\d+(\.\d+)?`)

func parseExpMove(expMove string) float64 {
	match := expMovePattern.FindString(expMove)
	if match == "" {
		return 0
	}
	var v float64
	if _, err := fmt.Sscanf(match, "%f", &v); err != nil {
		return 0
	}
	return v
}

// fallbackExplanation builds the deterministic explanation from the row
// itself, mirroring the scanner's own scoring rules.
func fallbackExplanation(trade models.Opportunity) models.Explanation {
	spreadLine := "Bid/ask spread is unavailable, so execution quality is uncertain."
	if trade.Bid != nil && trade.Ask != nil {
		spreadLine = fmt.Sprintf("Current bid/ask spread is $%.2f; wider spreads can make entries/exits less efficient.", *trade.Ask-*trade.Bid)
	}

	directionalBias := "upside"
	if parseExpMove(trade.ExpMove) < 0 {
		directionalBias = "downside"
	}

	return models.Explanation{
		Summary: []string{
			fmt.Sprintf("%s %s %g is ranked by a gammaScore of %d, which in this scanner is a scaled absolute gamma signal (abs(gamma) * 5000, capped at 100).", trade.Ticker, trade.Type, trade.Strike, trade.GammaScore),
			fmt.Sprintf("The scanner's expMove of %s comes from option delta and reflects model-implied %s direction for this contract, not a full distribution forecast.", trade.ExpMove, directionalBias),
			fmt.Sprintf("Conviction is %s, which this model sets by gammaScore tiers (>80 High, >50 Medium, else Low).", trade.Conviction),
		},
		RiskFactors: []string{
			spreadLine,
			"Because the ranking emphasizes absolute gamma, score can stay elevated even if directional edge weakens intraday.",
			"0DTE contracts can decay quickly; timing errors can outweigh a strong scanner score.",
		},
		WhatToWatchNext: []string{
			fmt.Sprintf("Watch whether gammaScore remains in the %s tier after refreshes; tier downgrades may indicate setup deterioration.", trade.Conviction),
			fmt.Sprintf("Track changes in expMove sign/magnitude from %s; shrinking magnitude can signal fading directional pressure.", trade.ExpMove),
			"Monitor liquidity (bid/ask changes and last trade activity) before sizing the trade.",
		},
	}
}
