// Package walletservice is the wallet aggregation store: the internal ledger
// wallet, the external provider wallet, the active wallet selector and the
// exchange rate table.
package walletservice

import (
	"context"
	"sync"
	"time"

	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/go-petr/convergex-pay/internal/poller"
	"github.com/go-petr/convergex-pay/internal/storage"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Backend provides the wallet endpoints needed by the wallet store.
//
//go:generate mockgen -source service.go -destination service_mock.go -package walletservice
type Backend interface {
	InternalWallet(ctx context.Context) (domain.InternalWallet, error)
	BankBalance(ctx context.Context) (domain.BankAccount, error)
	RegisterExternal(ctx context.Context, address string) error
	TransferInternal(ctx context.Context, toAddress string, amount decimal.Decimal, token string) (domain.TransferReceipt, error)
	ConvertFiatToToken(ctx context.Context, amount decimal.Decimal, token string) (domain.ConversionReceipt, error)
	ConvertTokenToFiat(ctx context.Context, amount decimal.Decimal, token string) (domain.ConversionReceipt, error)
}

// Provider is the external wallet provider.
type Provider interface {
	// Available is evaluated on every call; the provider can come and go.
	Available() bool
	RequestAccounts(ctx context.Context) ([]string, error)
}

// BalanceOracle reads best effort balances of an external address.
type BalanceOracle interface {
	Balances(ctx context.Context, address string) (domain.Balances, error)
}

// RateSource quotes exchange rates.
type RateSource interface {
	Rates(ctx context.Context) (domain.RateQuote, error)
}

const defaultRateInterval = 60 * time.Second

// Option configures a Service.
type Option func(*Service)

// WithProvider sets the external wallet provider.
func WithProvider(p Provider) Option {
	return func(s *Service) {
		s.provider = p
	}
}

// WithBalanceOracle sets the external balance source.
func WithBalanceOracle(o BalanceOracle) Option {
	return func(s *Service) {
		s.oracle = o
	}
}

// WithRateSource sets the exchange rate source.
func WithRateSource(r RateSource) Option {
	return func(s *Service) {
		s.rateSource = r
	}
}

// WithRateInterval sets how often rates are refreshed.
func WithRateInterval(d time.Duration) Option {
	return func(s *Service) {
		s.rateInterval = d
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// Service is the wallet store. It is the only writer of the wallets and of
// the rate table.
type Service struct {
	backend      Backend
	store        storage.Store
	provider     Provider
	oracle       BalanceOracle
	rateSource   RateSource
	rateInterval time.Duration
	logger       zerolog.Logger

	refresher *poller.Poller

	mu       sync.RWMutex
	internal domain.InternalWallet
	external domain.ExternalConnection
	active   domain.WalletKind
	rates    domain.ExchangeRateTable
}

// New returns a wallet store. A persisted external address is restored
// without a backend call when the provider is available.
func New(b Backend, store storage.Store, opts ...Option) *Service {
	s := &Service{
		backend:      b,
		store:        store,
		rateInterval: defaultRateInterval,
		logger:       zerolog.Nop(),
		internal:     domain.InternalWallet{Balances: domain.Balances{}},
		external:     domain.ExternalConnection{Balances: domain.Balances{}},
		active:       domain.WalletInternal,
		rates:        domain.FallbackRates(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.refresher = poller.New("exchange-rates", s.rateInterval, s.RefreshExchangeRates, s.logger)
	s.restoreExternal()

	return s
}

// Select switches the active wallet. It makes no network call.
func (s *Service) Select(kind domain.WalletKind) error {
	if kind != domain.WalletInternal && kind != domain.WalletExternal {
		return domain.ErrInvalidWalletKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = kind

	return nil
}

// ActiveKind returns the selected wallet kind.
func (s *Service) ActiveKind() domain.WalletKind {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.active
}

// Active returns a snapshot of the selected wallet.
func (s *Service) Active() domain.WalletView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.viewLocked(s.active)
}

// View returns a snapshot of the wallet of the given kind.
func (s *Service) View(kind domain.WalletKind) domain.WalletView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.viewLocked(kind)
}

func (s *Service) viewLocked(kind domain.WalletKind) domain.WalletView {
	switch kind {
	case domain.WalletExternal:
		external := s.externalLocked()
		return domain.WalletView{Kind: kind, External: &external}
	default:
		internal := s.internalLocked()
		return domain.WalletView{Kind: domain.WalletInternal, Internal: &internal}
	}
}

// ActiveBalance returns the balance of token in the selected wallet.
func (s *Service) ActiveBalance(token string) decimal.Decimal {
	return s.Active().Balances().Get(token)
}

// ActiveAddress returns the address of the selected wallet.
func (s *Service) ActiveAddress() string {
	return s.Active().Address()
}

// Reset forgets the internal wallet snapshot and the active selection. The
// external connection survives because its lifecycle is independent of the
// session.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.internal = domain.InternalWallet{Balances: domain.Balances{}}
	s.active = domain.WalletInternal
}
