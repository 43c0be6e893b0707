package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gammadesk/backend-go/internal/models"
)

const (
	// gammaScale maps absolute gamma into the 0-100 score band. It is a
	// modeling constant, not a standard market quantity.
	gammaScale = 5000
	// minPremium drops contracts priced at or below this as illiquid.
	minPremium = 0.05
	// atmBand keeps strikes within this fraction of the underlying price.
	atmBand = 0.15
	// maxScanResults caps the ranked list.
	maxScanResults = 50
)

// OpportunityID builds the composite identifier. Ticker and expiration are
// part of the key so ids stay unique if results are ever merged across
// underlyings or expirations.
func OpportunityID(ticker, expiration string, side models.ContractType, strike float64) string {
	return fmt.Sprintf("%s:%s:%s:%s", ticker, expiration, side, formatStrike(strike))
}

// MapRawContract turns one boundary record into an opportunity. Every nested
// section is defaulted first; the upstream payload guarantees nothing.
func MapRawContract(raw RawContract, underlying, expiration string) models.Opportunity {
	details := raw.Details
	if details == nil {
		details = &RawDetails{}
	}
	greeks := raw.Greeks
	if greeks == nil {
		greeks = &RawGreeks{}
	}
	day := raw.Day
	if day == nil {
		day = &RawDay{}
	}

	side := models.ContractCall
	if strings.EqualFold(details.ContractType, "put") {
		side = models.ContractPut
	}

	price := 0.0
	if raw.LastTrade != nil && raw.LastTrade.Price > 0 {
		price = raw.LastTrade.Price
	} else if day.Close > 0 {
		price = day.Close
	}

	opp := models.Opportunity{
		ID:             OpportunityID(underlying, expiration, side, details.StrikePrice),
		Ticker:         underlying,
		Type:           side,
		Strike:         details.StrikePrice,
		Price:          price,
		ExpirationDate: expiration,
		IsRealData:     true,
		GammaScore:     gammaScoreFor(greeks.Gamma),
		ExpMove:        expMoveFor(greeks.Delta),
		Conviction:     models.ConvictionLow,
	}
	if raw.LastQuote != nil {
		opp.Bid = raw.LastQuote.Bid
		opp.Ask = raw.LastQuote.Ask
	}
	if raw.LastTrade != nil && raw.LastTrade.TimeUnixMilli > 0 {
		opp.LastTradeTime = time.UnixMilli(raw.LastTrade.TimeUnixMilli).UTC().Format("15:04:05")
	}
	return opp
}

func gammaScoreFor(gamma float64) int {
	return int(math.Min(100, math.Round(math.Abs(gamma)*gammaScale)))
}

// expMoveFor renders delta as a signed percentage to one decimal, e.g.
// 0.018 -> "1.8%", -0.018 -> "-1.8%". Absent delta renders as "0%".
func expMoveFor(delta float64) string {
	if delta == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", delta*100)
}

// FilterATM drops near-worthless contracts and, when the underlying price is
// known, strikes more than 15% away from it. An unknown underlying price
// skips the moneyness check entirely (fail open): better to show the chain
// unfiltered than to show nothing.
func FilterATM(opps []models.Opportunity, underlyingPrice float64) []models.Opportunity {
	out := make([]models.Opportunity, 0, len(opps))
	for _, o := range opps {
		if o.Price <= minPremium {
			continue
		}
		if underlyingPrice > 0 && math.Abs(o.Strike-underlyingPrice)/underlyingPrice >= atmBand {
			continue
		}
		out = append(out, o)
	}
	return out
}

// convictionFor tiers a gamma score: >80 High, >50 Medium, else Low.
func convictionFor(score int) models.Conviction {
	switch {
	case score > 80:
		return models.ConvictionHigh
	case score > 50:
		return models.ConvictionMedium
	default:
		return models.ConvictionLow
	}
}

// RankOpportunities finalizes conviction, sorts descending by gamma score and
// truncates to the top results. The sort is stable: equal scores keep their
// encounter order.
func RankOpportunities(opps []models.Opportunity) []models.Opportunity {
	for i := range opps {
		opps[i].Conviction = convictionFor(opps[i].GammaScore)
	}
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].GammaScore > opps[j].GammaScore
	})
	if len(opps) > maxScanResults {
		opps = opps[:maxScanResults]
	}
	return opps
}

func underlyingPriceOf(raws []RawContract) float64 {
	for _, r := range raws {
		if r.Underlying != nil && r.Underlying.Price > 0 {
			return r.Underlying.Price
		}
	}
	return 0
}
