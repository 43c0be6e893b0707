package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gammadesk/backend-go/internal/models"
)

func fptr(v float64) *float64 {
	return &v
}

func TestGammaScoreFor(t *testing.T) {
	assert.Equal(t, 0, gammaScoreFor(0))
	assert.Equal(t, 92, gammaScoreFor(0.0184))
	assert.Equal(t, 92, gammaScoreFor(-0.0184))
	assert.Equal(t, 100, gammaScoreFor(0.03), "scores are capped at 100")
	assert.Equal(t, 100, gammaScoreFor(5))
}

func TestExpMoveFor(t *testing.T) {
	assert.Equal(t, "1.8%", expMoveFor(0.018))
	assert.Equal(t, "-1.8%", expMoveFor(-0.018))
	assert.Equal(t, "0%", expMoveFor(0))
	assert.Equal(t, "100.0%", expMoveFor(1))
}

func TestConvictionForBoundaries(t *testing.T) {
	assert.Equal(t, models.ConvictionLow, convictionFor(0))
	assert.Equal(t, models.ConvictionLow, convictionFor(50))
	assert.Equal(t, models.ConvictionMedium, convictionFor(51))
	assert.Equal(t, models.ConvictionMedium, convictionFor(80))
	assert.Equal(t, models.ConvictionHigh, convictionFor(81))
	assert.Equal(t, models.ConvictionHigh, convictionFor(100))
}

func TestMapRawContractDefaultsMissingSections(t *testing.T) {
	opp := MapRawContract(RawContract{}, "SPX", "2026-02-10")

	assert.Equal(t, "SPX", opp.Ticker)
	assert.Equal(t, models.ContractCall, opp.Type, "missing contract type defaults to CALL")
	assert.Equal(t, 0.0, opp.Strike)
	assert.Equal(t, 0.0, opp.Price)
	assert.Nil(t, opp.Bid)
	assert.Nil(t, opp.Ask)
	assert.Empty(t, opp.LastTradeTime)
	assert.Equal(t, 0, opp.GammaScore)
	assert.Equal(t, "0%", opp.ExpMove)
	assert.Equal(t, models.ConvictionLow, opp.Conviction)
	assert.True(t, opp.IsRealData)
}

func TestMapRawContractFullRecord(t *testing.T) {
	raw := RawContract{
		Details:   &RawDetails{ContractType: "put", StrikePrice: 430},
		Greeks:    &RawGreeks{Delta: -0.012, Gamma: 0.0176},
		LastQuote: &RawQuote{Bid: fptr(0.80), Ask: fptr(0.90)},
		LastTrade: &RawTrade{Price: 0.85, TimeUnixMilli: 1765367472000},
	}
	opp := MapRawContract(raw, "QQQ", "2026-02-10")

	assert.Equal(t, models.ContractPut, opp.Type)
	assert.Equal(t, 430.0, opp.Strike)
	assert.Equal(t, 0.85, opp.Price)
	require.NotNil(t, opp.Bid)
	require.NotNil(t, opp.Ask)
	assert.Equal(t, 0.80, *opp.Bid)
	assert.Equal(t, 0.90, *opp.Ask)
	assert.Equal(t, 88, opp.GammaScore)
	assert.Equal(t, "-1.2%", opp.ExpMove)
	assert.Equal(t, "QQQ:2026-02-10:PUT:430", opp.ID)
	assert.NotEmpty(t, opp.LastTradeTime)
}

func TestMapRawContractFallsBackToDayClose(t *testing.T) {
	raw := RawContract{
		Details: &RawDetails{ContractType: "call", StrikePrice: 5000},
		Day:     &RawDay{Close: 2.45},
	}
	opp := MapRawContract(raw, "SPX", "2026-02-10")
	assert.Equal(t, 2.45, opp.Price)
}

func TestOpportunityIDIncludesTickerAndExpiration(t *testing.T) {
	a := OpportunityID("SPX", "2026-02-10", models.ContractCall, 5000)
	b := OpportunityID("SPX", "2026-02-11", models.ContractCall, 5000)
	c := OpportunityID("SPY", "2026-02-10", models.ContractCall, 5000)
	d := OpportunityID("SPX", "2026-02-10", models.ContractPut, 5000)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Equal(t, "SPX:2026-02-10:CALL:5000", a)
}

func TestFilterATMMoneynessBoundary(t *testing.T) {
	opps := []models.Opportunity{
		{Strike: 114.9, Price: 1.0},
		{Strike: 115.0, Price: 1.0},
		{Strike: 116.0, Price: 1.0},
		{Strike: 85.1, Price: 1.0},
		{Strike: 85.0, Price: 1.0},
	}
	kept := FilterATM(opps, 100)

	require.Len(t, kept, 2)
	assert.Equal(t, 114.9, kept[0].Strike)
	assert.Equal(t, 85.1, kept[1].Strike)
}

func TestFilterATMDropsNearWorthless(t *testing.T) {
	opps := []models.Opportunity{
		{Strike: 100, Price: 0.05},
		{Strike: 100, Price: 0.06},
		{Strike: 100, Price: 0},
	}
	kept := FilterATM(opps, 100)

	require.Len(t, kept, 1)
	assert.Equal(t, 0.06, kept[0].Price)
}

func TestFilterATMFailsOpenWithoutUnderlyingPrice(t *testing.T) {
	opps := []models.Opportunity{
		{Strike: 5000, Price: 2.45},
		{Strike: 10, Price: 1.0},
	}
	kept := FilterATM(opps, 0)
	assert.Len(t, kept, 2, "unknown underlying price skips the moneyness filter")
}

func TestRankOpportunitiesStableAndTruncated(t *testing.T) {
	opps := []models.Opportunity{
		{ID: "a", GammaScore: 60},
		{ID: "b", GammaScore: 90},
		{ID: "c", GammaScore: 60},
		{ID: "d", GammaScore: 95},
	}
	ranked := RankOpportunities(opps)

	require.Len(t, ranked, 4)
	assert.Equal(t, "d", ranked[0].ID)
	assert.Equal(t, "b", ranked[1].ID)
	assert.Equal(t, "a", ranked[2].ID, "equal scores keep encounter order")
	assert.Equal(t, "c", ranked[3].ID)
	assert.Equal(t, models.ConvictionHigh, ranked[0].Conviction)
	assert.Equal(t, models.ConvictionMedium, ranked[2].Conviction)

	var many []models.Opportunity
	for i := 0; i < 120; i++ {
		many = append(many, models.Opportunity{GammaScore: i % 100})
	}
	assert.Len(t, RankOpportunities(many), maxScanResults)
}
