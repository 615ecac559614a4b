package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	tickerPricePath  = "/api/v3/ticker/price"
	ticker24hPath    = "/api/v3/ticker/24hr"
	openInterestPath = "/fapi/v1/openInterest"
	premiumIndexPath = "/fapi/v1/premiumIndex"
)

// BinanceOptions parameterise the Binance fetcher.
type BinanceOptions struct {
	BaseURL        string
	FuturesBaseURL string
	Symbol         string
	Timeout        time.Duration
	UserAgent      string
}

// Binance fetches spot and futures market data over the public REST API.
type Binance struct {
	opts       BinanceOptions
	logger     zerolog.Logger
	client     *http.Client
	baseURL    string
	futuresURL string
}

// NewBinance constructs a Binance market data fetcher.
func NewBinance(opts BinanceOptions, logger zerolog.Logger) *Binance {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.binance.com"
	}
	futuresURL := strings.TrimRight(opts.FuturesBaseURL, "/")
	if futuresURL == "" {
		futuresURL = "https://fapi.binance.com"
	}

	return &Binance{
		opts:       opts,
		logger:     logger.With().Str("component", "binance_fetcher").Logger(),
		client:     &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		futuresURL: futuresURL,
	}
}

// FetchPrice retrieves the current spot price for the configured symbol.
func (b *Binance) FetchPrice(ctx context.Context) (decimal.Decimal, error) {
	var res struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := b.getJSON(ctx, b.baseURL+tickerPricePath, &res); err != nil {
		return decimal.Decimal{}, err
	}

	price, err := decimal.NewFromString(res.Price)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse price: %w", err)
	}
	if price.IsZero() {
		return decimal.Decimal{}, errors.New("ticker price returned zero")
	}
	return price, nil
}

// FetchStats24h retrieves the rolling 24-hour ticker statistics.
func (b *Binance) FetchStats24h(ctx context.Context) (Stats24h, error) {
	var res struct {
		PriceChange        string `json:"priceChange"`
		PriceChangePercent string `json:"priceChangePercent"`
		HighPrice          string `json:"highPrice"`
		LowPrice           string `json:"lowPrice"`
		LastPrice          string `json:"lastPrice"`
	}
	if err := b.getJSON(ctx, b.baseURL+ticker24hPath, &res); err != nil {
		return Stats24h{}, err
	}

	var stats Stats24h
	var err error
	if stats.PriceChange, err = decimal.NewFromString(res.PriceChange); err != nil {
		return Stats24h{}, fmt.Errorf("parse priceChange: %w", err)
	}
	if stats.PriceChangePercent, err = decimal.NewFromString(res.PriceChangePercent); err != nil {
		return Stats24h{}, fmt.Errorf("parse priceChangePercent: %w", err)
	}
	if stats.HighPrice, err = decimal.NewFromString(res.HighPrice); err != nil {
		return Stats24h{}, fmt.Errorf("parse highPrice: %w", err)
	}
	if stats.LowPrice, err = decimal.NewFromString(res.LowPrice); err != nil {
		return Stats24h{}, fmt.Errorf("parse lowPrice: %w", err)
	}
	if stats.LastPrice, err = decimal.NewFromString(res.LastPrice); err != nil {
		return Stats24h{}, fmt.Errorf("parse lastPrice: %w", err)
	}
	return stats, nil
}

// FetchOpenInterest retrieves total open interest from the futures API.
func (b *Binance) FetchOpenInterest(ctx context.Context) (decimal.Decimal, error) {
	var res struct {
		OpenInterest string `json:"openInterest"`
		Symbol       string `json:"symbol"`
		Time         int64  `json:"time"`
	}
	if err := b.getJSON(ctx, b.futuresURL+openInterestPath, &res); err != nil {
		return decimal.Decimal{}, err
	}

	oi, err := decimal.NewFromString(res.OpenInterest)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse openInterest: %w", err)
	}
	return oi, nil
}

// FetchFundingRate retrieves the current funding rate via the premium index
// endpoint. Binance reports the rate as a fraction; callers receive a
// percentage so it compares directly against the configured bands.
func (b *Binance) FetchFundingRate(ctx context.Context) (FundingRate, error) {
	var res struct {
		LastFundingRate string `json:"lastFundingRate"`
		NextFundingTime int64  `json:"nextFundingTime"`
	}
	if err := b.getJSON(ctx, b.futuresURL+premiumIndexPath, &res); err != nil {
		return FundingRate{}, err
	}

	rate, err := decimal.NewFromString(res.LastFundingRate)
	if err != nil {
		return FundingRate{}, fmt.Errorf("parse lastFundingRate: %w", err)
	}

	fr := FundingRate{RatePct: rate.Mul(decimal.NewFromInt(100))}
	if res.NextFundingTime > 0 {
		fr.NextFundingTime = time.UnixMilli(res.NextFundingTime)
	}
	return fr, nil
}

func (b *Binance) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	if b.opts.Symbol == "" {
		return errors.New("symbol not configured")
	}

	query := url.Values{}
	query.Set("symbol", b.opts.Symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(b.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return parseHTTPError(resp.StatusCode, payload)
	}

	return json.Unmarshal(payload, out)
}

type errorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Msg != "" {
		return fmt.Errorf("binance api error (%d, code %d): %s", status, apiErr.Code, apiErr.Msg)
	}
	if len(payload) > 0 {
		return fmt.Errorf("binance api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("binance api error (%d)", status)
}

var (
	_ PriceFetcher   = (*Binance)(nil)
	_ StatsFetcher   = (*Binance)(nil)
	_ FuturesFetcher = (*Binance)(nil)
)
