// Package pricefeed quotes token prices from the CoinGecko simple price API.
package pricefeed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/go-petr/convergex-pay/pkg/currencypkg"
	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	quoteKey        = "simple-price"
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 30 * time.Second
)

const coinList = "ethereum,usd-coin,dai"

// coinIDs maps CoinGecko coin ids to token symbols.
var coinIDs = map[string]string{
	"ethereum": currencypkg.ETH,
	"usd-coin": currencypkg.USDC,
	"dai":      currencypkg.DAI,
}

// Config holds the price feed settings.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Source is a CoinGecko backed rate source.
type Source struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	quotes  *cache.Cache
	logger  zerolog.Logger
}

// New returns a Source.
func New(cfg Config, logger zerolog.Logger) *Source {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &Source{
		client:  &fasthttp.Client{Name: "convergex-pay"},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		quotes:  cache.New(ttl, 2*ttl),
		logger:  logger.With().Str("component", "pricefeed").Logger(),
	}
}

type simplePrice map[string]map[string]decimal.Decimal

// Rates returns the latest quote, served from cache while it is fresh.
func (s *Source) Rates(ctx context.Context) (domain.RateQuote, error) {
	if v, ok := s.quotes.Get(quoteKey); ok {
		if q, ok := v.(domain.RateQuote); ok {
			return q, nil
		}
	}

	prices, err := s.fetch(ctx)
	if err != nil {
		return domain.RateQuote{}, err
	}

	quote := toQuote(prices)
	s.quotes.Set(quoteKey, quote, cache.DefaultExpiration)

	return quote, nil
}

func (s *Source) fetch(ctx context.Context) (simplePrice, error) {
	query := url.Values{}
	query.Set("ids", coinList)
	query.Set("vs_currencies", "usd,inr")

	requestURL := s.baseURL + "/simple/price?" + query.Encode()

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = s.client.DoDeadline(req, resp, deadline)
	} else {
		err = s.client.DoTimeout(req, resp, s.timeout)
	}

	if err != nil {
		return nil, fmt.Errorf("request %s: %w", requestURL, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("request %s failed with status %d", requestURL, resp.StatusCode())
	}

	var prices simplePrice
	if err := json.Unmarshal(resp.Body(), &prices); err != nil {
		return nil, fmt.Errorf("decode simple price: %w", err)
	}

	s.logger.Debug().Int("coins", len(prices)).Msg("fetched prices")

	return prices, nil
}

func toQuote(prices simplePrice) domain.RateQuote {
	quote := domain.RateQuote{TokenUSD: make(map[string]decimal.Decimal)}

	for id, vs := range prices {
		token, ok := coinIDs[id]
		if !ok {
			continue
		}

		if usd := vs["usd"]; usd.IsPositive() {
			quote.TokenUSD[token] = usd
		}
	}

	eth := prices["ethereum"]
	if usd, inr := eth["usd"], eth["inr"]; usd.IsPositive() && inr.IsPositive() {
		quote.USDToLocal = inr.Div(usd)
	}

	return quote
}
