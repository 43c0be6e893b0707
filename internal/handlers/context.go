package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"gammadesk/backend-go/internal/models"
	"gammadesk/backend-go/internal/services"
)

// minContextChars guards against budgets too small to hold even the header;
// anything at or below it falls back to the default.
const minContextChars = 250

var defaultSystemInstructions = strings.Join([]string{
	"You are an options-flow assistant focused on 0DTE ideas.",
	"Use only the provided context when citing contracts.",
	"Be concise and explicit about risk.",
	"If context is missing, say so instead of guessing.",
}, " ")

// BuildContext serializes the posted items into a deterministic,
// character-budgeted summary block.
func (a *API) BuildContext(w http.ResponseWriter, r *http.Request) {
	var req models.ContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Success: false, Error: "Invalid JSON payload."})
		return
	}

	writeJSON(w, http.StatusOK, services.BuildContextSummary(req.Items, clampContextChars(req.MaxChars)))
}

// Prompt composes the completion message list for a question plus selected
// trades, surfacing how much context survived the budget.
func (a *API) Prompt(w http.ResponseWriter, r *http.Request) {
	var req models.PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Success: false, Error: "Invalid JSON payload."})
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Success: false, Error: "Question is required"})
		return
	}

	instructions := strings.TrimSpace(req.SystemInstructions)
	if instructions == "" {
		instructions = defaultSystemInstructions
	}
	maxChars := clampContextChars(req.MaxContextChars)

	result := services.BuildContextSummary(req.SelectedTrades, maxChars)

	writeJSON(w, http.StatusOK, models.PromptResponse{
		Success: true,
		Prompt: []models.PromptMessage{
			{Role: "system", Content: instructions},
			{Role: "user", Content: question},
			{Role: "user", Content: "Structured context summary:\n" + result.Summary},
		},
		ContextMeta: models.ContextMeta{
			Included:        result.Included,
			Omitted:         result.Omitted,
			EstimatedChars:  result.EstimatedChars,
			MaxContextChars: maxChars,
		},
	})
}

func clampContextChars(requested int) int {
	if requested > minContextChars {
		return requested
	}
	return services.DefaultMaxContextChars
}
