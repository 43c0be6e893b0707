package services

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"gammadesk/backend-go/internal/config"
	"gammadesk/backend-go/internal/models"
)

const (
	defaultUnderlying = "SPX"
	activityCacheKey  = "activity:v1"
	activityLimit     = 12
)

// MarketScanner owns the live/mock decision for the scan and activity
// operations. A nil provider means mock-only mode.
type MarketScanner struct {
	cfg      config.Config
	provider ChainProvider
	cache    Cache
	nowFn    func() time.Time
}

func NewMarketScanner(cfg config.Config, provider ChainProvider, cache Cache) *MarketScanner {
	return &MarketScanner{
		cfg:      cfg,
		provider: provider,
		cache:    cache,
		nowFn:    time.Now,
	}
}

// Scan returns the ranked 0DTE opportunity list for one ticker (or the
// wildcard). It never fails outward: every error path resolves to either the
// mock catalog or an empty list.
func (s *MarketScanner) Scan(ctx context.Context, ticker string) []models.Opportunity {
	if s.provider == nil {
		if s.cfg.RequireRealData {
			log.Warn("no chain provider configured and real data required, returning empty scan")
			return []models.Opportunity{}
		}
		log.Warn("no chain provider configured, serving mock scan")
		return MockScan(ticker)
	}

	underlying := ticker
	if underlying == models.WildcardTicker {
		underlying = defaultUnderlying
	}
	today := s.nowFn().UTC().Format(dateLayout)

	raws, targetDate, err := s.fetchResolved(ctx, underlying, today)
	if err != nil {
		if errors.Is(err, ErrEntitlement) {
			log.WithError(err).Error("chain provider denied entitlement for options snapshot")
			if s.cfg.RequireRealData {
				return []models.Opportunity{}
			}
			return MockScan(ticker)
		}
		log.WithError(err).WithField("underlying", underlying).Error("chain fetch failed")
		return []models.Opportunity{}
	}
	if len(raws) == 0 {
		return []models.Opportunity{}
	}

	opps := make([]models.Opportunity, 0, len(raws))
	for _, raw := range raws {
		opps = append(opps, MapRawContract(raw, underlying, targetDate))
	}
	opps = FilterATM(opps, underlyingPriceOf(raws))
	return RankOpportunities(opps)
}

// fetchResolved tries today's chain first and falls back to the nearest
// strictly-future expiration when the underlying has no same-day contracts.
func (s *MarketScanner) fetchResolved(ctx context.Context, underlying, today string) ([]RawContract, string, error) {
	raws, err := s.fetchChains(ctx, underlying, today)
	if err != nil {
		return nil, "", err
	}
	if len(raws) > 0 {
		return raws, today, nil
	}

	next, ok, err := s.provider.NextExpiration(ctx, underlying, today)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		log.Infof("no listed expirations for %s after %s", underlying, today)
		return nil, today, nil
	}

	log.Infof("no 0DTE chain for %s, scanning next expiration %s", underlying, next)
	raws, err = s.fetchChains(ctx, underlying, next)
	if err != nil {
		return nil, "", err
	}
	return raws, next, nil
}

// fetchChains fans out the call and put sides concurrently and merges the
// results. Order between the two sides does not matter; ranking sorts later.
func (s *MarketScanner) fetchChains(ctx context.Context, underlying, expiration string) ([]RawContract, error) {
	type chainResult struct {
		contracts []RawContract
		err       error
	}

	results := make(chan chainResult, 2)
	for _, side := range []string{"call", "put"} {
		go func(side string) {
			contracts, err := s.provider.FetchChain(ctx, underlying, expiration, side)
			results <- chainResult{contracts: contracts, err: err}
		}(side)
	}

	var merged []RawContract
	var firstErr error
	for i := 0; i < 2; i++ {
		r := <-results
		if r.err != nil {
			if firstErr == nil || errors.Is(r.err, ErrEntitlement) {
				firstErr = r.err
			}
			continue
		}
		merged = append(merged, r.contracts...)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return merged, nil
}

// Activity returns the classified market-activity feed. Fallback policy
// mirrors Scan: mock events when live data is unavailable or denied, empty on
// any other failure.
func (s *MarketScanner) Activity(ctx context.Context) []models.MarketEvent {
	if s.provider == nil {
		if s.cfg.RequireRealData {
			return []models.MarketEvent{}
		}
		return MockEvents()
	}

	if s.cache != nil {
		if b, ok := s.cache.Get(ctx, activityCacheKey); ok {
			var cached []models.MarketEvent
			if err := UnmarshalCache(b, &cached); err == nil {
				return cached
			}
		}
	}

	headlines, err := s.provider.ListNews(ctx, activityLimit)
	if err != nil {
		if errors.Is(err, ErrEntitlement) {
			log.WithError(err).Error("chain provider denied entitlement for news feed")
			if s.cfg.RequireRealData {
				return []models.MarketEvent{}
			}
			return MockEvents()
		}
		log.WithError(err).Error("news fetch failed")
		return []models.MarketEvent{}
	}

	events := make([]models.MarketEvent, 0, len(headlines))
	for _, h := range headlines {
		events = append(events, classifyHeadline(h))
	}

	if s.cache != nil && len(events) > 0 {
		if b, err := MarshalCache(events); err == nil {
			_ = s.cache.Set(ctx, activityCacheKey, b, s.cfg.CacheTTLActivity)
		}
	}
	return events
}

func classifyHeadline(h RawHeadline) models.MarketEvent {
	ticker := ""
	if len(h.Tickers) > 0 {
		ticker = h.Tickers[0]
	}
	return models.MarketEvent{
		ID:      h.ID,
		Time:    h.PublishedAt.UTC().Format("15:04:05"),
		Ticker:  ticker,
		Message: h.Title,
		Type:    classifyEventType(h.Title + " " + h.Teaser),
	}
}

var (
	volumeKeywords = []string{"volume", "sweep", "block trade", "call flow", "put flow", "open interest"}
	ivKeywords     = []string{"volatility", "implied vol", " iv ", "vix", "gamma"}
)

// classifyEventType buckets a headline by keyword match over title+teaser.
func classifyEventType(text string) models.EventType {
	padded := " " + strings.ToLower(text) + " "
	for _, kw := range volumeKeywords {
		if strings.Contains(padded, kw) {
			return models.EventVolume
		}
	}
	for _, kw := range ivKeywords {
		if strings.Contains(padded, kw) {
			return models.EventIV
		}
	}
	return models.EventNews
}
