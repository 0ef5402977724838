package paymentservice

import (
	"context"
	"testing"

	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/go-petr/convergex-pay/pkg/errorspkg"
	"github.com/go-petr/convergex-pay/pkg/randompkg"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var equateDecimal = cmp.Comparer(decimal.Decimal.Equal)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPayUPI(t *testing.T) {
	t.Parallel()

	upi := randompkg.UPIID()
	amount := randompkg.MoneyAmountBetween(1, 1000)

	testCases := []struct {
		name       string
		upi        string
		amount     decimal.Decimal
		buildStubs func(backend *MockBackend)
		wantError  error
	}{
		{
			name:   "OK",
			upi:    upi,
			amount: amount,
			buildStubs: func(backend *MockBackend) {
				backend.EXPECT().PayUPI(gomock.Any(), upi, amount).
					Times(1).
					Return(domain.PaymentReceipt{Message: "Payment successful"}, nil)
			},
		},
		{
			name:   "EmptyRecipient",
			upi:    "  ",
			amount: amount,
			buildStubs: func(backend *MockBackend) {
				backend.EXPECT().PayUPI(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrInvalidRecipient,
		},
		{
			name:   "ZeroAmount",
			upi:    upi,
			amount: decimal.Zero,
			buildStubs: func(backend *MockBackend) {
				backend.EXPECT().PayUPI(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrInvalidAmount,
		},
		{
			name:   "BackendError",
			upi:    upi,
			amount: amount,
			buildStubs: func(backend *MockBackend) {
				backend.EXPECT().PayUPI(gomock.Any(), upi, amount).
					Times(1).
					Return(domain.PaymentReceipt{}, errorspkg.ErrInternal)
			},
			wantError: errorspkg.ErrInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			backend := NewMockBackend(ctrl)
			tc.buildStubs(backend)

			_, err := New(backend).PayUPI(context.Background(), tc.upi, tc.amount)
			if tc.wantError != nil {
				require.ErrorIs(t, err, tc.wantError)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestRecentDefaultsLimit(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := NewMockBackend(ctrl)
	backend.EXPECT().Transactions(gomock.Any(), DefaultRecentLimit).Times(1).Return(nil, nil)

	_, err := New(backend).Recent(context.Background(), 0)
	require.NoError(t, err)
}

func testHistory() []domain.Transaction {
	return []domain.Transaction{
		{ID: "1", FromUserName: "Alice", ToUserName: "Bob", FromUPI: "alice@convergex", ToUPI: "bob@convergex", Amount: dec("120"), IsSent: true},
		{ID: "2", FromUserName: "Carol", ToUserName: "Alice", FromUPI: "carol@convergex", ToUPI: "alice@convergex", Amount: dec("75.5")},
		{ID: "3", FromUserName: "Alice", ToUserName: "Dave", FromUPI: "alice@convergex", ToUPI: "dave@convergex", Amount: dec("9"), IsSent: true},
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		filter  FilterType
		query   string
		wantIDs []string
	}{
		{name: "All", filter: FilterAll, wantIDs: []string{"1", "2", "3"}},
		{name: "Sent", filter: FilterSent, wantIDs: []string{"1", "3"}},
		{name: "Received", filter: FilterReceived, wantIDs: []string{"2"}},
		{name: "SearchName", filter: FilterAll, query: "BOB", wantIDs: []string{"1"}},
		{name: "SearchUPI", filter: FilterAll, query: "carol@", wantIDs: []string{"2"}},
		{name: "SearchAmount", filter: FilterAll, query: "75", wantIDs: []string{"2"}},
		{name: "SentAndSearch", filter: FilterSent, query: "dave", wantIDs: []string{"3"}},
		{name: "NoMatch", filter: FilterReceived, query: "dave", wantIDs: []string{}},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := []string{}
			for _, tx := range Filter(testHistory(), tc.filter, tc.query) {
				got = append(got, tx.ID)
			}

			if diff := cmp.Diff(tc.wantIDs, got); diff != "" {
				t.Errorf("Filter(%v, %q) mismatch (-want +got):\n%s", tc.filter, tc.query, diff)
			}
		})
	}
}

func TestAnalytics(t *testing.T) {
	t.Parallel()

	userID := randompkg.UserID()

	transactions := []domain.Transaction{
		{ToUserID: userID, Amount: dec("500")},
		{ToUserID: randompkg.UserID(), Amount: dec("120.25")},
		{ToUserID: userID, Amount: dec("20")},
		{ToUserID: randompkg.UserID(), Amount: dec("600")},
	}

	want := Stats{Income: dec("520"), Expense: dec("720.25"), Net: dec("-200.25")}

	if diff := cmp.Diff(want, Analytics(transactions, userID), equateDecimal); diff != "" {
		t.Errorf("Analytics() mismatch (-want +got):\n%s", diff)
	}

	sent, received := Totals(testHistory())
	require.True(t, sent.Equal(dec("129")))
	require.True(t, received.Equal(dec("75.5")))
}
