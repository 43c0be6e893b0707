package services

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gammadesk/backend-go/internal/models"
)

// DefaultMaxContextChars is the character budget applied when the caller
// does not supply one.
const DefaultMaxContextChars = 2500

// BuildContextSummary serializes opportunity-like records into a
// length-bounded text block. Output is deterministic: items are sorted by
// (ticker, expiration, type, strike, id) before formatting, so two calls with
// the same set in any order produce byte-identical summaries.
func BuildContextSummary(items []models.ContextItem, maxChars int) models.ContextBuildResult {
	if maxChars <= 0 {
		maxChars = DefaultMaxContextChars
	}
	sorted := sortForDeterminism(items)

	sections := []string{fmt.Sprintf("Watchlist contracts: %d", len(sorted))}
	omitted := 0

	for _, item := range sorted {
		block := formatContextItem(item)
		candidate := strings.Join(sections, "\n") + "\n" + block
		if len(candidate) > maxChars {
			// No partial blocks: the whole item is either in or out.
			omitted++
			continue
		}
		sections = append(sections, block)
	}

	if omitted > 0 {
		sections = append(sections, fmt.Sprintf("- truncated: omitted %d contract(s) to stay within context budget", omitted))
	}

	summary := strings.Join(sections, "\n")
	return models.ContextBuildResult{
		Summary:        summary,
		Included:       len(sorted) - omitted,
		Omitted:        omitted,
		EstimatedChars: len(summary),
	}
}

func sortForDeterminism(items []models.ContextItem) []models.ContextItem {
	sorted := make([]models.ContextItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Ticker != b.Ticker {
			return a.Ticker < b.Ticker
		}
		if a.ExpirationDate != b.ExpirationDate {
			return a.ExpirationDate < b.ExpirationDate
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Strike != b.Strike {
			return a.Strike < b.Strike
		}
		return a.ID < b.ID
	})
	return sorted
}

func formatContextItem(item models.ContextItem) string {
	spreadStr := "n/a"
	if spread, ok := calcSpread(item.Bid, item.Ask); ok {
		spreadStr = fmt.Sprintf("%.2f", spread)
	}
	gammaStr := "n/a"
	if item.GammaScore != nil {
		gammaStr = strconv.FormatFloat(*item.GammaScore, 'f', -1, 64)
	}
	conviction := item.Conviction
	if conviction == "" {
		conviction = "n/a"
	}

	lines := []string{
		fmt.Sprintf("- %s %s %s @ %s", item.Ticker, item.Type, formatStrike(item.Strike), item.ExpirationDate),
		fmt.Sprintf("  quote: bid %s / ask %s (spread %s)", formatCurrency(item.Bid), formatCurrency(item.Ask), spreadStr),
		fmt.Sprintf("  score: gamma %s | conviction %s", gammaStr, conviction),
		"  risk: " + strings.Join(contextRiskFlags(item), ","),
	}
	return strings.Join(lines, "\n")
}

// contextRiskFlags returns every applicable flag, or the literal "none".
// The spread flags and missing-quote are mutually exclusive.
func contextRiskFlags(item models.ContextItem) []string {
	var flags []string

	if spread, ok := calcSpread(item.Bid, item.Ask); ok {
		if spread >= 1 {
			flags = append(flags, "wide-spread")
		} else if spread >= 0.5 {
			flags = append(flags, "moderate-spread")
		}
	} else {
		flags = append(flags, "missing-quote")
	}

	if item.GammaScore == nil {
		flags = append(flags, "missing-gamma")
	} else if *item.GammaScore < 50 {
		flags = append(flags, "low-gamma")
	}

	if item.Conviction == string(models.ConvictionLow) {
		flags = append(flags, "low-conviction")
	}
	if item.IsRealData != nil && !*item.IsRealData {
		flags = append(flags, "simulated-data")
	}

	if len(flags) == 0 {
		return []string{"none"}
	}
	return flags
}

func calcSpread(bid, ask *float64) (float64, bool) {
	if bid == nil || ask == nil {
		return 0, false
	}
	return math.Round((*ask-*bid)*100) / 100, true
}

func formatCurrency(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatStrike(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
