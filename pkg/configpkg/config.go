// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	Environment string `mapstructure:"GO_ENV"`

	APIBaseURL        string        `mapstructure:"API_BASE_URL"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	RequestsPerSecond float64       `mapstructure:"REQUESTS_PER_SECOND"`
	StoragePath       string        `mapstructure:"STORAGE_PATH"`

	RateRefreshInterval      time.Duration `mapstructure:"RATE_REFRESH_INTERVAL"`
	NotificationPollInterval time.Duration `mapstructure:"NOTIFICATION_POLL_INTERVAL"`
	ResolveDebounce          time.Duration `mapstructure:"RESOLVE_DEBOUNCE"`

	PriceFeedURL     string        `mapstructure:"PRICE_FEED_URL"`
	PriceFeedTimeout time.Duration `mapstructure:"PRICE_FEED_TIMEOUT"`
	PriceCacheTTL    time.Duration `mapstructure:"PRICE_CACHE_TTL"`

	WalletProviderEndpoint string `mapstructure:"WALLET_PROVIDER_ENDPOINT"`
	EthRPCURL              string `mapstructure:"ETH_RPC_URL"`
	USDCContract           string `mapstructure:"USDC_CONTRACT"`
	DAIContract            string `mapstructure:"DAI_CONTRACT"`

	SandboxAddress        string        `mapstructure:"SANDBOX_ADDRESS"`
	SandboxOpeningBalance string        `mapstructure:"SANDBOX_OPENING_BALANCE"`
	TokenSymmetricKey     string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	TokenKind             string        `mapstructure:"TOKEN_KIND"`
	AccessTokenDuration   time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GO_ENV", "production")
	v.SetDefault("API_BASE_URL", "http://localhost:5000")
	v.SetDefault("REQUEST_TIMEOUT", 10*time.Second)
	v.SetDefault("REQUESTS_PER_SECOND", 20)
	v.SetDefault("STORAGE_PATH", ".convergex/storage.yaml")
	v.SetDefault("RATE_REFRESH_INTERVAL", time.Minute)
	v.SetDefault("NOTIFICATION_POLL_INTERVAL", 30*time.Second)
	v.SetDefault("RESOLVE_DEBOUNCE", 500*time.Millisecond)
	v.SetDefault("PRICE_FEED_URL", "https://api.coingecko.com/api/v3")
	v.SetDefault("PRICE_FEED_TIMEOUT", 10*time.Second)
	v.SetDefault("PRICE_CACHE_TTL", 30*time.Second)
	v.SetDefault("WALLET_PROVIDER_ENDPOINT", "")
	v.SetDefault("ETH_RPC_URL", "")
	v.SetDefault("USDC_CONTRACT", "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238")
	v.SetDefault("DAI_CONTRACT", "")
	v.SetDefault("SANDBOX_ADDRESS", "0.0.0.0:5000")
	v.SetDefault("SANDBOX_OPENING_BALANCE", "10000")
	v.SetDefault("TOKEN_SYMMETRIC_KEY", "")
	v.SetDefault("TOKEN_KIND", "jwt")
	v.SetDefault("ACCESS_TOKEN_DURATION", 24*time.Hour)
}

// Load reads configuration from the app.env file in path and overrides it with
// environment variables. A missing file is not an error: defaults and the
// environment are enough to run the client.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
