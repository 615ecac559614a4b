package fetcher

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Stats24h carries the 24-hour ticker statistics used to enrich alerts.
type Stats24h struct {
	PriceChange        decimal.Decimal
	PriceChangePercent decimal.Decimal
	HighPrice          decimal.Decimal
	LowPrice           decimal.Decimal
	LastPrice          decimal.Decimal
}

// FundingRate carries the current futures funding rate as a percentage plus
// the next settlement time.
type FundingRate struct {
	RatePct         decimal.Decimal
	NextFundingTime time.Time
}

// PriceFetcher retrieves the current spot price. This is the one sample the
// cycle cannot proceed without.
type PriceFetcher interface {
	FetchPrice(ctx context.Context) (decimal.Decimal, error)
}

// StatsFetcher retrieves 24-hour ticker statistics. Best effort.
type StatsFetcher interface {
	FetchStats24h(ctx context.Context) (Stats24h, error)
}

// FuturesFetcher retrieves open interest and funding rate from the futures
// API. Each query is independently best effort.
type FuturesFetcher interface {
	FetchOpenInterest(ctx context.Context) (decimal.Decimal, error)
	FetchFundingRate(ctx context.Context) (FundingRate, error)
}
