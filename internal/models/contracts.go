package models

// Conviction is the three-tier qualitative label derived from the gamma score.
type Conviction string

const (
	ConvictionHigh   Conviction = "High"
	ConvictionMedium Conviction = "Medium"
	ConvictionLow    Conviction = "Low"
)

type ContractType string

const (
	ContractCall ContractType = "CALL"
	ContractPut  ContractType = "PUT"
)

// WildcardTicker requests the full catalog / unfiltered scan.
const WildcardTicker = "ALL"

// Opportunity is one ranked 0DTE contract candidate. It is rebuilt on every
// scan; nothing here is persisted.
type Opportunity struct {
	ID             string       `json:"id"`
	Ticker         string       `json:"ticker"`
	Type           ContractType `json:"type"`
	Strike         float64      `json:"strike"`
	Price          float64      `json:"price"`
	Bid            *float64     `json:"bid,omitempty"`
	Ask            *float64     `json:"ask,omitempty"`
	LastTradeTime  string       `json:"lastTradeTime,omitempty"`
	ExpirationDate string       `json:"expirationDate"`
	IsRealData     bool         `json:"isRealData"`
	GammaScore     int          `json:"gammaScore"`
	ExpMove        string       `json:"expMove"`
	Conviction     Conviction   `json:"conviction"`
}

type EventType string

const (
	EventVolume EventType = "VOLUME"
	EventNews   EventType = "NEWS"
	EventIV     EventType = "IV"
)

// MarketEvent is one inferred market-activity item, built per request.
type MarketEvent struct {
	ID      string    `json:"id"`
	Time    string    `json:"time"`
	Ticker  string    `json:"ticker"`
	Message string    `json:"message"`
	Type    EventType `json:"type"`
}

// ContextItem is an opportunity-like record accepted by the context builder.
// Fields may be partially present; pointers distinguish absent from zero.
type ContextItem struct {
	ID             string   `json:"id,omitempty"`
	Ticker         string   `json:"ticker"`
	Type           string   `json:"type"`
	Strike         float64  `json:"strike"`
	Price          *float64 `json:"price,omitempty"`
	Bid            *float64 `json:"bid,omitempty"`
	Ask            *float64 `json:"ask,omitempty"`
	LastTradeTime  string   `json:"lastTradeTime,omitempty"`
	ExpirationDate string   `json:"expirationDate"`
	IsRealData     *bool    `json:"isRealData,omitempty"`
	GammaScore     *float64 `json:"gammaScore,omitempty"`
	ExpMove        string   `json:"expMove,omitempty"`
	Conviction     string   `json:"conviction,omitempty"`
}

// ContextBuildResult reports what the summarizer emitted and what it dropped.
// Included + Omitted always equals the input length.
type ContextBuildResult struct {
	Summary        string `json:"summary"`
	Included       int    `json:"included"`
	Omitted        int    `json:"omitted"`
	EstimatedChars int    `json:"estimatedChars"`
}

type ScanResponse struct {
	Success   bool          `json:"success"`
	Data      []Opportunity `json:"data"`
	Timestamp string        `json:"timestamp"`
}

type ActivityResponse struct {
	Success bool          `json:"success"`
	Data    []MarketEvent `json:"data"`
}

type AskContext struct {
	Ticker   string `json:"ticker,omitempty"`
	Contract string `json:"contract,omitempty"`
}

type AskRequest struct {
	Question string      `json:"question"`
	Context  *AskContext `json:"context,omitempty"`
}

type AskResponse struct {
	Success   bool     `json:"success"`
	Answer    *string  `json:"answer"`
	Citations []string `json:"citations,omitempty"`
	Warnings  []string `json:"warnings"`
}

type ContextRequest struct {
	Items    []ContextItem `json:"items"`
	MaxChars int           `json:"maxChars,omitempty"`
}

type PromptRequest struct {
	Question           string        `json:"question"`
	SelectedTrades     []ContextItem `json:"selectedTrades"`
	SystemInstructions string        `json:"systemInstructions,omitempty"`
	MaxContextChars    int           `json:"maxContextChars,omitempty"`
}

type PromptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ContextMeta struct {
	Included        int `json:"included"`
	Omitted         int `json:"omitted"`
	EstimatedChars  int `json:"estimatedChars"`
	MaxContextChars int `json:"maxContextChars"`
}

type PromptResponse struct {
	Success     bool            `json:"success"`
	Prompt      []PromptMessage `json:"prompt"`
	ContextMeta ContextMeta     `json:"contextMeta"`
}

// Explanation is the structured breakdown of a single scanner row.
type Explanation struct {
	Summary         []string `json:"summary"`
	RiskFactors     []string `json:"riskFactors"`
	WhatToWatchNext []string `json:"whatToWatchNext"`
}

type ExplainMeta struct {
	Source string `json:"source"`
	Reason string `json:"reason,omitempty"`
}

type ExplainRequest struct {
	Trade *Opportunity `json:"trade"`
}

type ExplainResponse struct {
	Success bool        `json:"success"`
	Data    Explanation `json:"data"`
	Meta    ExplainMeta `json:"meta"`
}

type AssistantRequest struct {
	Message string `json:"message"`
}

type AssistantResponse struct {
	Success    bool   `json:"success"`
	Refused    bool   `json:"refused"`
	Response   string `json:"response"`
	Disclaimer string `json:"disclaimer"`
}

type DepStatus struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type HealthResponse struct {
	Ok       bool            `json:"ok"`
	TsISO    string          `json:"tsISO"`
	Service  string          `json:"service"`
	Version  string          `json:"version,omitempty"`
	Env      map[string]bool `json:"env"`
	Features map[string]bool `json:"features"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
