package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/go-petr/convergex-pay/pkg/randompkg"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()

	l := NewLedger(decimal.NewFromInt(1000))
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	return l
}

func register(t *testing.T, l *Ledger, name string) (domain.User, domain.BankAccount, domain.InternalWallet) {
	t.Helper()

	ctx := context.Background()

	u, err := l.Register(ctx, name, randompkg.Email(), randompkg.Password())
	require.NoError(t, err)

	bank, err := l.BankBalance(ctx, u.ID)
	require.NoError(t, err)

	w, err := l.Wallet(ctx, u.ID)
	require.NoError(t, err)

	return u, bank, w
}

func TestRegister(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newTestLedger(t)

	email, password := randompkg.Email(), randompkg.Password()

	u, err := l.Register(ctx, "Asha Rao", email, password)
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	_, err = l.Register(ctx, "Other", email, randompkg.Password())
	require.ErrorIs(t, err, ErrEmailTaken)

	bank, err := l.BankBalance(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "asharao@convergex", bank.UPIID)
	require.True(t, bank.Balance.Equal(decimal.NewFromInt(1000)))

	w, err := l.Wallet(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, domain.IsInternalAddress(w.Address))
	require.Len(t, w.Address, len(domain.InternalAddressPrefix)+addressHexLength)
	require.Equal(t, []string{"DAI", "ETH", "USDC"}, w.Balances.Tokens())

	// Same display name gets a distinct UPI id.
	u2, err := l.Register(ctx, "Asha Rao", randompkg.Email(), password)
	require.NoError(t, err)

	bank2, err := l.BankBalance(ctx, u2.ID)
	require.NoError(t, err)
	require.Equal(t, "asharao1@convergex", bank2.UPIID)

	got, err := l.Authenticate(ctx, email, password)
	require.NoError(t, err)
	require.Equal(t, u, got)

	_, err = l.Authenticate(ctx, email, "wrong-password")
	require.ErrorIs(t, err, ErrWrongCredentials)

	_, err = l.Authenticate(ctx, randompkg.Email(), password)
	require.ErrorIs(t, err, ErrWrongCredentials)
}

func TestPayUPI(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newTestLedger(t)

	alice, aliceBank, _ := register(t, l, "alice")
	bob, bobBank, _ := register(t, l, "bob")

	testCases := []struct {
		name    string
		to      string
		amount  string
		wantErr error
	}{
		{name: "Zero", to: bobBank.UPIID, amount: "0", wantErr: domain.ErrInvalidAmount},
		{name: "UnknownUPI", to: "nobody@convergex", amount: "1", wantErr: ErrUPINotFound},
		{name: "Self", to: aliceBank.UPIID, amount: "1", wantErr: ErrSelfPayment},
		{name: "Insufficient", to: bobBank.UPIID, amount: "1000.01", wantErr: domain.ErrInsufficientBalance},
	}

	for i := range testCases {
		tc := testCases[i]

		_, _, err := l.PayUPI(ctx, alice.ID, tc.to, decimal.RequireFromString(tc.amount))
		require.ErrorIs(t, err, tc.wantErr, tc.name)
	}

	tx, balance, err := l.PayUPI(ctx, alice.ID, "  BOB@convergex ", decimal.RequireFromString("250.50"))
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.RequireFromString("749.5")))
	require.True(t, tx.IsSent)

	want := domain.Transaction{
		FromUserID:   alice.ID,
		ToUserID:     bob.ID,
		FromUserName: "alice",
		ToUserName:   "bob",
		FromUPI:      aliceBank.UPIID,
		ToUPI:        bobBank.UPIID,
		Amount:       decimal.RequireFromString("250.50"),
		Status:       statusCompleted,
		IsSent:       false,
	}

	got, err := l.Transactions(ctx, bob.ID, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	if diff := cmp.Diff(want, got[0], cmpopts.IgnoreFields(domain.Transaction{}, "ID", "Date"),
		cmp.Comparer(decimal.Decimal.Equal)); diff != "" {
		t.Errorf("Transactions() mismatch (-want +got):\n%s", diff)
	}
}

func TestTransactionsLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newTestLedger(t)

	alice, _, _ := register(t, l, "alice")
	_, bobBank, _ := register(t, l, "bob")

	for i := 1; i <= 3; i++ {
		_, _, err := l.PayUPI(ctx, alice.ID, bobBank.UPIID, decimal.NewFromInt(int64(i)))
		require.NoError(t, err)
	}

	got, err := l.Transactions(ctx, alice.ID, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.True(t, got[0].Amount.Equal(decimal.NewFromInt(3)))
	require.True(t, got[1].Amount.Equal(decimal.NewFromInt(2)))
}

func TestRequests(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newTestLedger(t)

	alice, aliceBank, _ := register(t, l, "alice")
	bob, bobBank, _ := register(t, l, "bob")

	_, err := l.CreateRequest(ctx, alice.ID, aliceBank.UPIID, decimal.NewFromInt(1))
	require.ErrorIs(t, err, ErrSelfPayment)

	first, err := l.CreateRequest(ctx, alice.ID, bobBank.UPIID, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.Equal(t, domain.RequestPending, first.Status)

	second, err := l.CreateRequest(ctx, alice.ID, bobBank.UPIID, decimal.NewFromInt(5))
	require.NoError(t, err)

	require.Equal(t, 2, l.PendingCount(ctx, bob.ID))
	require.Equal(t, 0, l.PendingCount(ctx, alice.ID))

	incoming := l.IncomingRequests(ctx, bob.ID)
	require.Len(t, incoming, 2)
	require.Equal(t, second.ID, incoming[0].ID)
	require.Len(t, l.OutgoingRequests(ctx, alice.ID), 2)

	// Only the addressee can act on a request.
	require.ErrorIs(t, l.AcceptRequest(ctx, alice.ID, first.ID), ErrRequestNotFound)

	require.NoError(t, l.AcceptRequest(ctx, bob.ID, first.ID))
	require.ErrorIs(t, l.AcceptRequest(ctx, bob.ID, first.ID), ErrRequestClosed)
	require.NoError(t, l.RejectRequest(ctx, bob.ID, second.ID))
	require.ErrorIs(t, l.RejectRequest(ctx, bob.ID, second.ID), ErrRequestClosed)

	require.Equal(t, 0, l.PendingCount(ctx, bob.ID))

	aliceAfter, err := l.BankBalance(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, aliceAfter.Balance.Equal(decimal.NewFromInt(1100)))

	statuses := map[string]string{}
	for _, r := range l.OutgoingRequests(ctx, alice.ID) {
		statuses[r.ID] = r.Status
	}

	require.Equal(t, map[string]string{
		first.ID:  domain.RequestAccepted,
		second.ID: domain.RequestRejected,
	}, statuses)
}

func TestAcceptRequestInsufficient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newTestLedger(t)

	alice, _, _ := register(t, l, "alice")
	bob, bobBank, _ := register(t, l, "bob")

	r, err := l.CreateRequest(ctx, alice.ID, bobBank.UPIID, decimal.NewFromInt(5000))
	require.NoError(t, err)

	require.ErrorIs(t, l.AcceptRequest(ctx, bob.ID, r.ID), domain.ErrInsufficientBalance)
	require.Equal(t, 1, l.PendingCount(ctx, bob.ID))
}

func TestConvertAndTransfer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newTestLedger(t)

	alice, _, aliceWallet := register(t, l, "alice")
	bob, _, bobWallet := register(t, l, "bob")

	// 830 INR buys 10 USDC at 1 USD and 83 INR per USD.
	balances, bank, err := l.ConvertFiatToToken(ctx, alice.ID, decimal.NewFromInt(830), "usdc")
	require.NoError(t, err)
	require.True(t, balances.Get("USDC").Equal(decimal.NewFromInt(10)))
	require.True(t, bank.Equal(decimal.NewFromInt(170)))

	_, _, err = l.ConvertFiatToToken(ctx, alice.ID, decimal.NewFromInt(171), "USDC")
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	_, _, err = l.ConvertFiatToToken(ctx, alice.ID, decimal.NewFromInt(1), "BTC")
	require.ErrorIs(t, err, domain.ErrUnsupportedToken)

	testCases := []struct {
		name    string
		to      string
		amount  string
		token   string
		wantErr error
	}{
		{name: "External", to: "0x8ba1f109551bD432803012645Ac136ddd64DBA72", amount: "1", token: "USDC", wantErr: domain.ErrInvalidAddress},
		{name: "Unknown", to: "cx_000000000000000000000000", amount: "1", token: "USDC", wantErr: ErrWalletNotFound},
		{name: "Self", to: aliceWallet.Address, amount: "1", token: "USDC", wantErr: ErrSelfTransfer},
		{name: "Insufficient", to: bobWallet.Address, amount: "10.01", token: "USDC", wantErr: domain.ErrInsufficientBalance},
		{name: "Negative", to: bobWallet.Address, amount: "-1", token: "USDC", wantErr: domain.ErrInvalidAmount},
		{name: "Token", to: bobWallet.Address, amount: "1", token: "DOGE", wantErr: domain.ErrUnsupportedToken},
	}

	for i := range testCases {
		tc := testCases[i]

		_, _, err := l.Transfer(ctx, alice.ID, tc.to, decimal.RequireFromString(tc.amount), tc.token)
		require.ErrorIs(t, err, tc.wantErr, tc.name)
	}

	balances, txHash, err := l.Transfer(ctx, alice.ID, bobWallet.Address, decimal.RequireFromString("4"), "usdc")
	require.NoError(t, err)
	require.NotEmpty(t, txHash)
	require.True(t, balances.Get("USDC").Equal(decimal.NewFromInt(6)))

	bobAfter, err := l.Wallet(ctx, bob.ID)
	require.NoError(t, err)
	require.True(t, bobAfter.Balances.Get("USDC").Equal(decimal.NewFromInt(4)))

	// 4 USDC sells for 332 INR.
	balances, bank, err = l.ConvertTokenToFiat(ctx, bob.ID, decimal.NewFromInt(4), "USDC")
	require.NoError(t, err)
	require.True(t, balances.Get("USDC").IsZero())
	require.True(t, bank.Equal(decimal.NewFromInt(1332)))

	_, _, err = l.ConvertTokenToFiat(ctx, bob.ID, decimal.NewFromInt(1), "USDC")
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestLinkExternalAndFind(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newTestLedger(t)

	alice, _, aliceWallet := register(t, l, "alice")
	bob, _, _ := register(t, l, "bob")

	const external = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"

	require.NoError(t, l.LinkExternal(ctx, alice.ID, external))
	require.NoError(t, l.LinkExternal(ctx, alice.ID, external))
	require.ErrorIs(t, l.LinkExternal(ctx, bob.ID, external), ErrAddressTaken)

	got, err := l.FindByAddress(ctx, aliceWallet.Address)
	require.NoError(t, err)
	require.Equal(t, alice, got)

	// External addresses are not internal wallets.
	_, err = l.FindByAddress(ctx, external)
	require.ErrorIs(t, err, ErrWalletNotFound)
}

func TestLinkExternalKeepsInternalIndex(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newTestLedger(t)

	alice, _, aliceWallet := register(t, l, "alice")
	bob, _, _ := register(t, l, "bob")

	testCases := []struct {
		name    string
		address string
		wantErr error
	}{
		{name: "OwnInternalAddress", address: aliceWallet.Address, wantErr: domain.ErrInvalidAddress},
		{name: "NotAnAddress", address: "metamask", wantErr: domain.ErrInvalidAddress},
		{name: "External", address: "0x1111111111111111111111111111111111111111"},
		{name: "Relink", address: "0x2222222222222222222222222222222222222222"},
	}

	for i := range testCases {
		tc := testCases[i]

		err := l.LinkExternal(ctx, alice.ID, tc.address)
		require.ErrorIs(t, err, tc.wantErr, tc.name)
	}

	got, err := l.FindByAddress(ctx, aliceWallet.Address)
	require.NoError(t, err)
	require.Equal(t, alice, got)

	_, _, err = l.ConvertFiatToToken(ctx, bob.ID, decimal.NewFromInt(166), "USDC")
	require.NoError(t, err)

	_, _, err = l.Transfer(ctx, bob.ID, aliceWallet.Address, decimal.NewFromInt(1), "USDC")
	require.NoError(t, err)

	// The released address can be linked by someone else.
	require.NoError(t, l.LinkExternal(ctx, bob.ID, "0x1111111111111111111111111111111111111111"))
}
