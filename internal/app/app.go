// Package app builds the client stores and owns their background work.
package app

import (
	"context"
	"fmt"

	"github.com/go-petr/convergex-pay/internal/apiclient"
	"github.com/go-petr/convergex-pay/internal/backend"
	"github.com/go-petr/convergex-pay/internal/chain"
	"github.com/go-petr/convergex-pay/internal/notify"
	"github.com/go-petr/convergex-pay/internal/paymentservice"
	"github.com/go-petr/convergex-pay/internal/pricefeed"
	"github.com/go-petr/convergex-pay/internal/recipientservice"
	"github.com/go-petr/convergex-pay/internal/requestservice"
	"github.com/go-petr/convergex-pay/internal/sessionservice"
	"github.com/go-petr/convergex-pay/internal/storage"
	"github.com/go-petr/convergex-pay/internal/walletservice"
	"github.com/go-petr/convergex-pay/pkg/configpkg"
	"github.com/go-petr/convergex-pay/pkg/currencypkg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// App holds every client store.
type App struct {
	Config     configpkg.Config
	Logger     zerolog.Logger
	Store      storage.Store
	API        *apiclient.Client
	Backend    *backend.Client
	Session    *sessionservice.Service
	Wallet     *walletservice.Service
	Payments   *paymentservice.Service
	Requests   *requestservice.Service
	Recipients *recipientservice.Resolver
}

type options struct {
	store      storage.Store
	notifier   notify.Notifier
	logger     zerolog.Logger
	navigator  sessionservice.Navigator
	registerer prometheus.Registerer
	provider   walletservice.Provider
	oracle     walletservice.BalanceOracle
	rates      walletservice.RateSource
}

// Option configures New.
type Option func(*options)

// WithStore replaces the file store at config.StoragePath.
func WithStore(s storage.Store) Option {
	return func(o *options) { o.store = s }
}

// WithNotifier sets the user-facing notification surface.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithLogger sets the logger shared by every store.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithNavigator sets where the user is sent when the session expires.
func WithNavigator(n sessionservice.Navigator) Option {
	return func(o *options) { o.navigator = n }
}

// WithRegisterer registers the client metrics.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *options) { o.registerer = r }
}

// WithProvider replaces the JSON-RPC wallet provider.
func WithProvider(p walletservice.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithBalanceOracle replaces the EVM balance oracle.
func WithBalanceOracle(b walletservice.BalanceOracle) Option {
	return func(o *options) { o.oracle = b }
}

// WithRateSource replaces the CoinGecko rate source.
func WithRateSource(r walletservice.RateSource) Option {
	return func(o *options) { o.rates = r }
}

// New builds the stores in dependency order: storage, transport, backend,
// session, then the stores that need a session.
func New(ctx context.Context, config configpkg.Config, opts ...Option) (*App, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.notifier == nil {
		o.notifier = notify.NewLog(o.logger)
	}

	if o.store == nil {
		store, err := storage.Open(config.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}

		o.store = store
	}

	if o.rates == nil && config.PriceFeedURL != "" {
		o.rates = pricefeed.New(pricefeed.Config{
			BaseURL:  config.PriceFeedURL,
			Timeout:  config.PriceFeedTimeout,
			CacheTTL: config.PriceCacheTTL,
		}, o.logger)
	}

	if o.provider == nil {
		o.provider = chain.NewRPCProvider(config.WalletProviderEndpoint)
	}

	if o.oracle == nil && config.EthRPCURL != "" {
		tokens := []chain.Token{
			{Symbol: currencypkg.USDC, Contract: config.USDCContract, Decimals: 6},
			{Symbol: currencypkg.DAI, Contract: config.DAIContract, Decimals: 18},
		}

		oracle, err := chain.DialOracle(ctx, config.EthRPCURL, tokens, o.logger)
		if err != nil {
			o.logger.Warn().Err(err).Msg("external balances disabled")
		} else {
			o.oracle = oracle
		}
	}

	apiOpts := []apiclient.Option{
		apiclient.WithNotifier(o.notifier),
		apiclient.WithLogger(o.logger),
	}

	if o.registerer != nil {
		apiOpts = append(apiOpts, apiclient.WithRegisterer(o.registerer))
	}

	api := apiclient.New(apiclient.Config{
		BaseURL:           config.APIBaseURL,
		Timeout:           config.RequestTimeout,
		RequestsPerSecond: config.RequestsPerSecond,
	}, apiOpts...)

	b := backend.New(api)

	sessionOpts := []sessionservice.Option{sessionservice.WithLogger(o.logger)}
	if o.navigator != nil {
		sessionOpts = append(sessionOpts, sessionservice.WithNavigator(o.navigator))
	}

	session := sessionservice.New(b, o.store, sessionOpts...)
	api.SetAuth(session)

	walletOpts := []walletservice.Option{
		walletservice.WithProvider(o.provider),
		walletservice.WithLogger(o.logger),
	}

	if o.oracle != nil {
		walletOpts = append(walletOpts, walletservice.WithBalanceOracle(o.oracle))
	}

	if o.rates != nil {
		walletOpts = append(walletOpts, walletservice.WithRateSource(o.rates))
	}

	if config.RateRefreshInterval > 0 {
		walletOpts = append(walletOpts, walletservice.WithRateInterval(config.RateRefreshInterval))
	}

	wallet := walletservice.New(b, o.store, walletOpts...)
	session.OnLogout(wallet.Reset)

	requestOpts := []requestservice.Option{requestservice.WithLogger(o.logger)}
	if config.NotificationPollInterval > 0 {
		requestOpts = append(requestOpts, requestservice.WithPollInterval(config.NotificationPollInterval))
	}

	recipientOpts := []recipientservice.Option{recipientservice.WithLogger(o.logger)}
	if config.ResolveDebounce > 0 {
		recipientOpts = append(recipientOpts, recipientservice.WithDebounce(config.ResolveDebounce))
	}

	a := &App{
		Config:     config,
		Logger:     o.logger,
		Store:      o.store,
		API:        api,
		Backend:    b,
		Session:    session,
		Wallet:     wallet,
		Payments:   paymentservice.New(b),
		Requests:   requestservice.New(b, requestOpts...),
		Recipients: recipientservice.New(b, recipientOpts...),
	}

	return a, nil
}

// Run refreshes exchange rates and, with a session, polls the pending
// request count until ctx is done.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Wallet.RunRateRefresh(gctx)
	})

	if a.Session.IsAuthenticated() {
		g.Go(func() error {
			if err := a.Wallet.FetchInternalWallet(apiclient.Silent(gctx)); err != nil {
				a.Logger.Warn().Err(err).Msg("initial wallet fetch")
			}

			return nil
		})

		g.Go(func() error {
			return a.Requests.RunPolling(gctx)
		})
	}

	return g.Wait()
}

// Close stops background work and the resolver.
func (a *App) Close() {
	a.Wallet.Stop()
	a.Requests.Stop()
	a.Recipients.Close()
}
