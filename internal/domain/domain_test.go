package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	t.Parallel()

	base := FallbackRates()

	got := base.Merge(RateQuote{
		TokenUSD: map[string]decimal.Decimal{
			"eth":  decimal.NewFromInt(3100),
			"USDC": decimal.Zero,
			"DAI":  decimal.NewFromInt(-1),
		},
		USDToLocal: decimal.Zero,
	})

	want := ExchangeRateTable{
		TokenUSD: map[string]decimal.Decimal{
			"ETH":  decimal.NewFromInt(3100),
			"USDC": decimal.NewFromInt(1),
			"DAI":  decimal.NewFromInt(1),
		},
		USDToLocal: decimal.NewFromInt(83),
	}

	if diff := cmp.Diff(want, got, cmp.Comparer(decimal.Decimal.Equal)); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}

	// The receiver is untouched.
	require.True(t, base.TokenUSD["ETH"].Equal(decimal.NewFromInt(2500)))
}

func TestConversions(t *testing.T) {
	t.Parallel()

	empty := ExchangeRateTable{}

	testCases := []struct {
		name      string
		table     ExchangeRateTable
		amount    string
		token     string
		wantUSD   string
		wantLocal string
	}{
		{name: "Fallback", table: empty, amount: "2", token: "eth", wantUSD: "5000", wantLocal: "415000"},
		{name: "Quoted", table: empty.Merge(RateQuote{USDToLocal: decimal.NewFromInt(84)}), amount: "10", token: "USDC", wantUSD: "10", wantLocal: "840"},
		{name: "Unknown", table: FallbackRates(), amount: "10", token: "BTC", wantUSD: "0", wantLocal: "0"},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			amount := decimal.RequireFromString(tc.amount)

			require.Equal(t, tc.wantUSD, tc.table.ToUSD(amount, tc.token).String())
			require.Equal(t, tc.wantLocal, tc.table.ToLocal(amount, tc.token).String())
		})
	}
}

func TestWalletView(t *testing.T) {
	t.Parallel()

	internal := &InternalWallet{Address: "cx_0123456789abcdef01234567", Balances: Balances{"USDC": decimal.NewFromInt(5)}}
	external := &ExternalConnection{Address: "0xabc", State: Connecting, Balances: Balances{"ETH": decimal.NewFromInt(1)}}

	testCases := []struct {
		name        string
		view        WalletView
		wantAddress string
		wantTokens  []string
	}{
		{name: "Internal", view: WalletView{Kind: WalletInternal, Internal: internal}, wantAddress: internal.Address, wantTokens: []string{"USDC"}},
		{name: "ExternalNotConnected", view: WalletView{Kind: WalletExternal, External: external}, wantAddress: "", wantTokens: []string{}},
		{name: "Nil", view: WalletView{Kind: WalletInternal}, wantAddress: "", wantTokens: []string{}},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.wantAddress, tc.view.Address())
			require.Equal(t, tc.wantTokens, tc.view.Balances().Tokens())
		})
	}

	connected := *external
	connected.State = Connected

	view := WalletView{Kind: WalletExternal, External: &connected}
	require.Equal(t, "0xabc", view.Address())
	require.True(t, view.Balances().Get("eth").Equal(decimal.NewFromInt(1)))
}

func TestParse(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]WalletKind{"internal": WalletInternal, "ConvergeX": WalletInternal, "METAMASK": WalletExternal} {
		got, err := ParseWalletKind(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseWalletKind("ledger")
	require.ErrorIs(t, err, ErrInvalidWalletKind)

	for in, want := range map[string]Direction{"upi-to-crypto": FiatToToken, "token-to-fiat": TokenToFiat} {
		got, err := ParseDirection(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err = ParseDirection("sideways")
	require.ErrorIs(t, err, ErrInvalidDirection)
}

func TestIsInternalAddress(t *testing.T) {
	t.Parallel()

	require.True(t, IsInternalAddress("cx_0123456789abcdef01234567"))
	require.False(t, IsInternalAddress("cx_short"))
	require.False(t, IsInternalAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72"))
}

func TestIsValidation(t *testing.T) {
	t.Parallel()

	require.True(t, IsValidation(ErrInvalidAmount))
	require.True(t, IsValidation(fmt.Errorf("pay: %w", ErrInsufficientBalance)))
	require.False(t, IsValidation(ErrAuthExpired))
	require.False(t, IsValidation(errors.New("boom")))
}
