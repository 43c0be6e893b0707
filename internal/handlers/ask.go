package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"gammadesk/backend-go/internal/models"
	"gammadesk/backend-go/internal/services"
)

const (
	askSystemPrompt = "You answer questions about options trading and 0DTE analysis."
	askPromptIntro  = "You are an assistant for 0DTE options analysis. Keep responses concise and actionable."
)

// Ask answers a free-form question about a contract or ticker. Order of
// checks: throttle, configuration, validation, completion call. This endpoint
// and validation are the only surfaces that produce explicit error responses.
func (a *API) Ask(w http.ResponseWriter, r *http.Request) {
	if !a.throttle.Allow(clientID(r)) {
		writeAskFailure(w, http.StatusTooManyRequests, "Rate limit exceeded. Please wait a minute and try again.")
		return
	}

	if !a.completion.Configured() {
		writeAskFailure(w, http.StatusServiceUnavailable, "AI service is not configured. Please add server credentials and try again.")
		return
	}

	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAskFailure(w, http.StatusBadRequest, "Invalid JSON payload.")
		return
	}
	if warnings := a.validateAskRequest(&req); len(warnings) > 0 {
		writeJSON(w, http.StatusBadRequest, models.AskResponse{Success: false, Warnings: warnings})
		return
	}

	answer, err := a.completion.Complete(r.Context(), askSystemPrompt, buildAskPrompt(req))
	if err != nil {
		if errors.Is(err, services.ErrCompletionTimeout) {
			writeAskFailure(w, http.StatusGatewayTimeout, "The AI request timed out. Please try again.")
			return
		}
		if errors.Is(err, services.ErrEmptyAnswer) {
			writeAskFailure(w, http.StatusBadGateway, "No answer was generated. Please refine your question and try again.")
			return
		}
		log.WithError(err).Error("completion call failed")
		writeAskFailure(w, http.StatusBadGateway, "Unable to generate an answer right now. Please try again shortly.")
		return
	}

	writeJSON(w, http.StatusOK, models.AskResponse{
		Success:   true,
		Answer:    &answer,
		Citations: []string{},
		Warnings:  []string{},
	})
}

// validateAskRequest trims and bounds the inbound fields, returning one
// human-readable message per violation. No partial processing happens on
// failure.
func (a *API) validateAskRequest(req *models.AskRequest) []string {
	var warnings []string

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		warnings = append(warnings, "Question is required")
	} else if len(req.Question) > a.cfg.MaxQuestionChars {
		warnings = append(warnings, fmt.Sprintf("Question must be %d characters or less", a.cfg.MaxQuestionChars))
	}

	if req.Context != nil {
		req.Context.Ticker = strings.TrimSpace(req.Context.Ticker)
		req.Context.Contract = strings.TrimSpace(req.Context.Contract)
		if len(req.Context.Ticker) > a.cfg.MaxTickerChars {
			warnings = append(warnings, fmt.Sprintf("Ticker must be %d characters or less", a.cfg.MaxTickerChars))
		}
		if len(req.Context.Contract) > a.cfg.MaxContractChars {
			warnings = append(warnings, fmt.Sprintf("Contract must be %d characters or less", a.cfg.MaxContractChars))
		}
	}
	return warnings
}

func buildAskPrompt(req models.AskRequest) string {
	sections := []string{askPromptIntro}

	var contextLines []string
	if req.Context != nil {
		if req.Context.Ticker != "" {
			contextLines = append(contextLines, "Ticker: "+req.Context.Ticker)
		}
		if req.Context.Contract != "" {
			contextLines = append(contextLines, "Contract: "+req.Context.Contract)
		}
	}
	if len(contextLines) > 0 {
		sections = append(sections, "Context:\n"+strings.Join(contextLines, "\n"))
	}

	sections = append(sections, "Question: "+req.Question)
	return strings.Join(sections, "\n\n")
}

func writeAskFailure(w http.ResponseWriter, code int, warning string) {
	writeJSON(w, code, models.AskResponse{Success: false, Warnings: []string{warning}})
}
