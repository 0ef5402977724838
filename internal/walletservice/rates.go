package walletservice

import (
	"context"

	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/shopspring/decimal"
)

// Rates returns the current exchange rate table.
func (s *Service) Rates() domain.ExchangeRateTable {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.rates.Merge(domain.RateQuote{})
}

// RefreshExchangeRates merges a fresh quote into the table. On failure the
// table is left as it was; the error is returned to the poller, which logs it.
func (s *Service) RefreshExchangeRates(ctx context.Context) error {
	if s.rateSource == nil {
		return nil
	}

	quote, err := s.rateSource.Rates(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rates = s.rates.Merge(quote)

	return nil
}

// StartRateRefresh refreshes the rates now and then on every interval.
func (s *Service) StartRateRefresh(ctx context.Context) {
	s.refresher.Start(ctx)
}

// RunRateRefresh refreshes the rates until ctx is done.
func (s *Service) RunRateRefresh(ctx context.Context) error {
	return s.refresher.Run(ctx)
}

// Stop stops the rate refresh.
func (s *Service) Stop() {
	s.refresher.Stop()
}

// ToUSD converts amount of token into USD.
func (s *Service) ToUSD(amount decimal.Decimal, token string) decimal.Decimal {
	return s.Rates().ToUSD(amount, token)
}

// ToLocal converts amount of token into the local currency.
func (s *Service) ToLocal(amount decimal.Decimal, token string) decimal.Decimal {
	return s.Rates().ToLocal(amount, token)
}
