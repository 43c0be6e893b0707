package services

import (
	"sort"

	"gammadesk/backend-go/internal/models"
)

const mockExpiration = "2026-02-10"

// mockCatalog is the hand-curated fallback dataset served when no live chain
// is available. Output is fully deterministic: scores are fixed and run
// through the same conviction tiering as the live path on every call.
func mockCatalog() []models.Opportunity {
	return []models.Opportunity{
		mockOpportunity("SPX", models.ContractCall, 5000, 2.45, 2.40, 2.50, "10:30:05", 92, "+0.8%"),
		mockOpportunity("QQQ", models.ContractPut, 430, 0.85, 0.80, 0.90, "10:31:12", 88, "-1.2%"),
		mockOpportunity("TSLA", models.ContractCall, 425, 1.10, 1.05, 1.15, "10:32:45", 75, "+2.5%"),
		mockOpportunity("IWM", models.ContractPut, 200, 0.45, 0.40, 0.50, "10:29:30", 60, "-0.5%"),
		mockOpportunity("NVDA", models.ContractCall, 700, 5.20, 5.10, 5.30, "10:33:00", 85, "+1.8%"),
		mockOpportunity("SPY", models.ContractPut, 500, 0.15, 0.10, 0.20, "10:28:15", 95, "-0.9%"),
	}
}

func mockOpportunity(ticker string, side models.ContractType, strike, price, bid, ask float64, tradeTime string, score int, expMove string) models.Opportunity {
	return models.Opportunity{
		ID:             OpportunityID(ticker, mockExpiration, side, strike),
		Ticker:         ticker,
		Type:           side,
		Strike:         strike,
		Price:          price,
		Bid:            &bid,
		Ask:            &ask,
		LastTradeTime:  tradeTime,
		ExpirationDate: mockExpiration,
		IsRealData:     false,
		GammaScore:     score,
		ExpMove:        expMove,
		Conviction:     models.ConvictionLow,
	}
}

// MockScan filters the catalog by exact ticker (or returns everything for the
// wildcard), retiers conviction and sorts descending by gamma score.
func MockScan(ticker string) []models.Opportunity {
	out := make([]models.Opportunity, 0)
	for _, o := range mockCatalog() {
		if ticker != models.WildcardTicker && o.Ticker != ticker {
			continue
		}
		o.Conviction = convictionFor(o.GammaScore)
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GammaScore > out[j].GammaScore
	})
	return out
}

// MockEvents is the fallback activity feed.
func MockEvents() []models.MarketEvent {
	return []models.MarketEvent{
		{ID: "1", Time: "10:32:15", Ticker: "SPX", Message: "Huge call sweep at 4850 strike", Type: models.EventVolume},
		{ID: "2", Time: "10:31:45", Ticker: "TSLA", Message: "IV Spike > 50% percentile", Type: models.EventIV},
		{ID: "3", Time: "10:30:20", Ticker: "QQQ", Message: "Breaking above VWAP", Type: models.EventNews},
		{ID: "4", Time: "10:29:10", Ticker: "AMD", Message: "Put volume increasing rapidly", Type: models.EventVolume},
		{ID: "5", Time: "10:28:05", Ticker: "SPY", Message: "Gamma flip level approached", Type: models.EventIV},
		{ID: "6", Time: "10:27:00", Ticker: "META", Message: "Block trade 5000 contracts", Type: models.EventVolume},
	}
}
