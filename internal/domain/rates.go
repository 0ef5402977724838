package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RateQuote is a partial rate update. Zero values mean "not quoted".
type RateQuote struct {
	TokenUSD   map[string]decimal.Decimal
	USDToLocal decimal.Decimal
}

// ExchangeRateTable holds token to USD rates and the USD to local currency rate.
type ExchangeRateTable struct {
	TokenUSD   map[string]decimal.Decimal
	USDToLocal decimal.Decimal
}

// FallbackRates returns the table used until a rate source answers.
func FallbackRates() ExchangeRateTable {
	return ExchangeRateTable{
		TokenUSD: map[string]decimal.Decimal{
			"ETH":  decimal.NewFromInt(2500),
			"USDC": decimal.NewFromInt(1),
			"DAI":  decimal.NewFromInt(1),
		},
		USDToLocal: decimal.NewFromInt(83),
	}
}

// Merge returns a copy of t updated with the positive values of q.
func (t ExchangeRateTable) Merge(q RateQuote) ExchangeRateTable {
	out := ExchangeRateTable{
		TokenUSD:   make(map[string]decimal.Decimal, len(t.TokenUSD)),
		USDToLocal: t.USDToLocal,
	}

	for k, v := range t.TokenUSD {
		out.TokenUSD[k] = v
	}

	for k, v := range q.TokenUSD {
		if v.IsPositive() {
			out.TokenUSD[strings.ToUpper(k)] = v
		}
	}

	if q.USDToLocal.IsPositive() {
		out.USDToLocal = q.USDToLocal
	}

	return out
}

// USDRate returns the USD price of one token, falling back to the built-in
// table so that the result is never zero for a supported token.
func (t ExchangeRateTable) USDRate(token string) decimal.Decimal {
	token = strings.ToUpper(token)

	if rate, ok := t.TokenUSD[token]; ok && rate.IsPositive() {
		return rate
	}

	return FallbackRates().TokenUSD[token]
}

// ToUSD converts amount of token into USD.
func (t ExchangeRateTable) ToUSD(amount decimal.Decimal, token string) decimal.Decimal {
	return amount.Mul(t.USDRate(token))
}

// ToLocal converts amount of token into the local currency.
func (t ExchangeRateTable) ToLocal(amount decimal.Decimal, token string) decimal.Decimal {
	local := t.USDToLocal
	if !local.IsPositive() {
		local = FallbackRates().USDToLocal
	}

	return t.ToUSD(amount, token).Mul(local)
}
