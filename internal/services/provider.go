package services

import (
	"context"
	"errors"
	"time"
)

// ErrEntitlement marks a provider-side denial: the configured credentials are
// valid but lack access to the requested data feed. Callers treat it like
// "no live data" rather than a hard failure.
var ErrEntitlement = errors.New("provider entitlement denied")

// ChainProvider is the upstream options-chain and news source.
type ChainProvider interface {
	// FetchChain returns the chain snapshot for one underlying, expiration
	// date (YYYY-MM-DD) and contract side ("call" or "put").
	FetchChain(ctx context.Context, underlying, expiration, side string) ([]RawContract, error)
	// NextExpiration returns the nearest listed expiration strictly after
	// the given date; ok is false when none exists.
	NextExpiration(ctx context.Context, underlying, after string) (next string, ok bool, err error)
	// ListNews returns recent market headlines, newest first.
	ListNews(ctx context.Context, limit int) ([]RawHeadline, error)
}

// RawContract is the boundary-validated form of one upstream chain record.
// The upstream payload is effectively untyped and every nested section may be
// missing; nil means the section was absent and must be defaulted before
// extraction.
type RawContract struct {
	Details    *RawDetails
	Greeks     *RawGreeks
	LastQuote  *RawQuote
	LastTrade  *RawTrade
	Day        *RawDay
	Underlying *RawUnderlying
}

type RawDetails struct {
	ContractType string
	StrikePrice  float64
	Ticker       string
}

type RawGreeks struct {
	Delta float64
	Gamma float64
}

type RawQuote struct {
	Bid *float64
	Ask *float64
}

type RawTrade struct {
	Price         float64
	TimeUnixMilli int64
}

type RawDay struct {
	Close float64
}

type RawUnderlying struct {
	Price float64
}

// RawHeadline is one upstream news record.
type RawHeadline struct {
	ID          string
	Title       string
	Teaser      string
	Tickers     []string
	PublishedAt time.Time
}
