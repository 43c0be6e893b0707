package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	polymodels "github.com/polygon-io/client-go/rest/models"
)

const dateLayout = "2006-01-02"

// PolygonProvider implements ChainProvider on top of the Polygon REST API.
type PolygonProvider struct {
	client *polygon.Client
	limit  int
}

func NewPolygonProvider(apiKey string, limit int) *PolygonProvider {
	if limit <= 0 {
		limit = 100
	}
	return &PolygonProvider{client: polygon.New(apiKey), limit: limit}
}

func (p *PolygonProvider) FetchChain(ctx context.Context, underlying, expiration, side string) ([]RawContract, error) {
	day, err := time.Parse(dateLayout, expiration)
	if err != nil {
		return nil, fmt.Errorf("invalid expiration %q: %w", expiration, err)
	}

	params := polymodels.ListOptionsChainParams{UnderlyingAsset: underlying}.
		WithExpirationDate(polymodels.EQ, polymodels.Date(day)).
		WithContractType(polymodels.ContractType(side)).
		WithLimit(p.limit)

	it := p.client.ListOptionsChainSnapshot(ctx, params)
	var out []RawContract
	for it.Next() {
		out = append(out, normalizeSnapshot(it.Item()))
	}
	if err := it.Err(); err != nil {
		return nil, classifyProviderError(err)
	}
	return out, nil
}

func (p *PolygonProvider) NextExpiration(ctx context.Context, underlying, after string) (string, bool, error) {
	day, err := time.Parse(dateLayout, after)
	if err != nil {
		return "", false, fmt.Errorf("invalid date %q: %w", after, err)
	}

	params := polymodels.ListOptionsContractsParams{}.
		WithUnderlyingTicker(polymodels.EQ, underlying).
		WithExpirationDate(polymodels.GT, polymodels.Date(day)).
		WithSort(polymodels.Sort("expiration_date")).
		WithOrder(polymodels.Asc).
		WithLimit(p.limit)

	it := p.client.ListOptionsContracts(ctx, params)
	for it.Next() {
		exp := time.Time(it.Item().ExpirationDate)
		return exp.Format(dateLayout), true, nil
	}
	if err := it.Err(); err != nil {
		return "", false, classifyProviderError(err)
	}
	return "", false, nil
}

func (p *PolygonProvider) ListNews(ctx context.Context, limit int) ([]RawHeadline, error) {
	if limit <= 0 || limit > p.limit {
		limit = p.limit
	}

	params := polymodels.ListTickerNewsParams{}.
		WithSort(polymodels.Sort("published_utc")).
		WithOrder(polymodels.Desc).
		WithLimit(limit)

	it := p.client.ListTickerNews(ctx, params)
	out := make([]RawHeadline, 0, limit)
	for it.Next() && len(out) < limit {
		item := it.Item()
		out = append(out, RawHeadline{
			ID:          item.ID,
			Title:       item.Title,
			Teaser:      item.Description,
			Tickers:     item.Tickers,
			PublishedAt: time.Time(item.PublishedUTC),
		})
	}
	if err := it.Err(); err != nil {
		return nil, classifyProviderError(err)
	}
	return out, nil
}

// normalizeSnapshot converts the upstream snapshot into the boundary DTO.
// Sections whose fields are all zero are treated as absent.
func normalizeSnapshot(s polymodels.OptionContractSnapshot) RawContract {
	var raw RawContract

	if s.Details.Ticker != "" || s.Details.StrikePrice != 0 || s.Details.ContractType != "" {
		raw.Details = &RawDetails{
			ContractType: s.Details.ContractType,
			StrikePrice:  s.Details.StrikePrice,
			Ticker:       s.Details.Ticker,
		}
	}
	if s.Greeks.Delta != 0 || s.Greeks.Gamma != 0 {
		raw.Greeks = &RawGreeks{Delta: s.Greeks.Delta, Gamma: s.Greeks.Gamma}
	}
	if !time.Time(s.LastQuote.LastUpdated).IsZero() || s.LastQuote.Bid != 0 || s.LastQuote.Ask != 0 {
		q := &RawQuote{}
		if s.LastQuote.Bid != 0 {
			bid := s.LastQuote.Bid
			q.Bid = &bid
		}
		if s.LastQuote.Ask != 0 {
			ask := s.LastQuote.Ask
			q.Ask = &ask
		}
		raw.LastQuote = q
	}
	if tradeTime := time.Time(s.LastTrade.Timestamp); !tradeTime.IsZero() || s.LastTrade.Price != 0 {
		t := &RawTrade{Price: s.LastTrade.Price}
		if !tradeTime.IsZero() {
			t.TimeUnixMilli = tradeTime.UnixMilli()
		}
		raw.LastTrade = t
	}
	if s.Day.Close != 0 {
		raw.Day = &RawDay{Close: s.Day.Close}
	}
	if s.UnderlyingAsset.Price != 0 {
		raw.Underlying = &RawUnderlying{Price: s.UnderlyingAsset.Price}
	}
	return raw
}

func classifyProviderError(err error) error {
	var respErr *polymodels.ErrorResponse
	if errors.As(err, &respErr) && respErr.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %v", ErrEntitlement, err)
	}
	return err
}
