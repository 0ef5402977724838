package pricefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/go-petr/convergex-pay/pkg/currencypkg"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func fakeCoinGecko(t *testing.T, status int, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/api/v3/simple/price", func(ctx *gin.Context) {
		hits.Add(1)

		if ctx.Query("ids") != "ethereum,usd-coin,dai" || ctx.Query("vs_currencies") != "usd,inr" {
			ctx.Status(http.StatusBadRequest)
			return
		}

		ctx.Data(status, "application/json", []byte(body))
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return server
}

func TestRates(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	server := fakeCoinGecko(t, http.StatusOK, `{
		"ethereum": {"usd": 3000, "inr": 252000},
		"usd-coin": {"usd": 1.0001, "inr": 84},
		"dai": {"usd": 0.9998}
	}`, &hits)

	s := New(Config{BaseURL: server.URL + "/api/v3", CacheTTL: time.Minute}, zerolog.Nop())

	got, err := s.Rates(context.Background())
	require.NoError(t, err)

	want := domain.RateQuote{
		TokenUSD: map[string]decimal.Decimal{
			currencypkg.ETH:  decimal.RequireFromString("3000"),
			currencypkg.USDC: decimal.RequireFromString("1.0001"),
			currencypkg.DAI:  decimal.RequireFromString("0.9998"),
		},
		USDToLocal: decimal.RequireFromString("84"),
	}

	if diff := cmp.Diff(want, got, cmp.Comparer(decimal.Decimal.Equal)); diff != "" {
		t.Errorf("Rates() mismatch (-want +got):\n%s", diff)
	}

	_, err = s.Rates(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(1), hits.Load())
}

func TestRatesPartialQuote(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	server := fakeCoinGecko(t, http.StatusOK, `{"usd-coin": {"usd": 1}}`, &hits)
	s := New(Config{BaseURL: server.URL + "/api/v3"}, zerolog.Nop())

	got, err := s.Rates(context.Background())
	require.NoError(t, err)
	require.True(t, got.USDToLocal.IsZero())
	require.Len(t, got.TokenUSD, 1)
}

func TestRatesFailure(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "RateLimited", status: http.StatusTooManyRequests, body: `{"status":{"error_code":429}}`},
		{name: "Garbage", status: http.StatusOK, body: `<html>`},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var hits atomic.Int32

			server := fakeCoinGecko(t, tc.status, tc.body, &hits)
			s := New(Config{BaseURL: server.URL + "/api/v3"}, zerolog.Nop())

			_, err := s.Rates(context.Background())
			require.Error(t, err)

			// Failures are not cached.
			_, err = s.Rates(context.Background())
			require.Error(t, err)
			require.Equal(t, int32(2), hits.Load())
		})
	}
}
