package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/convergex-pay/internal/apiclient"
	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/go-petr/convergex-pay/internal/notify"
	"github.com/go-petr/convergex-pay/pkg/web"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// legacyBackend answers with the document-store shaped payloads: _id keys,
// embedded user objects, numeric amounts and lower-case token keys.
func legacyBackend(t *testing.T) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.POST("/auth/register", func(ctx *gin.Context) {
		var in map[string]string
		if err := ctx.ShouldBindJSON(&in); err != nil {
			ctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		ctx.JSON(http.StatusCreated, gin.H{
			"token": "tkn",
			"user":  gin.H{"_id": "u1", "name": in["name"], "email": in["email"]},
		})
	})
	r.GET("/transactions", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"transactions": []gin.H{
			{
				"_id":       "t1",
				"fromUser":  gin.H{"_id": "u2", "name": "bob"},
				"toUser":    "u1",
				"amount":    250.5,
				"status":    "COMPLETED",
				"createdAt": "2024-03-01T10:00:00Z",
			},
		}})
	})
	r.GET("/pay/history", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, []gin.H{
			{
				"_id":          "t2",
				"fromUserName": "alice",
				"toUserName":   "bob",
				"fromUpi":      "alice@convergex",
				"toUpi":        "bob@convergex",
				"amount":       "12.25",
				"status":       "COMPLETED",
				"date":         "2024-03-02T10:00:00Z",
				"isSent":       true,
			},
		})
	})
	r.GET("/request/incoming", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"requests": []gin.H{
			{
				"_id":       "r1",
				"fromUser":  gin.H{"_id": "u2", "name": "bob", "email": "bob@email.com"},
				"toUser":    "u1",
				"fromUpi":   "bob@convergex",
				"amount":    99,
				"status":    "pending",
				"createdAt": "2024-03-03T10:00:00Z",
			},
		}})
	})
	r.GET("/wallet/convergex", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"wallet": gin.H{
			"address":  "cx_0123456789abcdef01234567",
			"balances": gin.H{"usdc": 150.75, "dai": "89.5", "eth": 0.5},
		}})
	})
	r.GET("/wallet/find-by-address/:addr", func(ctx *gin.Context) {
		if ctx.Param("addr") != "cx_0123456789abcdef01234567" {
			ctx.JSON(http.StatusNotFound, web.Message("Wallet not found"))
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"user": gin.H{"_id": "u2", "name": "bob", "email": "bob@email.com"}})
	})
	r.POST("/wallet/convergex/transfer", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "Transfer successful", "txHash": "0xabc"})
	})
	r.POST("/wallet/convert/upi-to-crypto", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"balances":    gin.H{"USDC": "160.75", "DAI": "89.5", "ETH": "0.5"},
			"bankBalance": 9170,
		})
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return server
}

func newClient(t *testing.T, notifier notify.Notifier) *Client {
	t.Helper()

	server := legacyBackend(t)

	return New(apiclient.New(apiclient.Config{BaseURL: server.URL}, apiclient.WithNotifier(notifier)))
}

func TestRegisterSendsName(t *testing.T) {
	t.Parallel()

	c := newClient(t, &notify.Recorder{})

	got, err := c.Register(context.Background(), "alice", "alice@email.com", "secret1")
	require.NoError(t, err)

	want := domain.AuthResponse{
		Token: "tkn",
		User:  domain.User{ID: "u1", Name: "alice", Email: "alice@email.com"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Register() mismatch (-want +got):\n%s", diff)
	}
}

func TestTransactionShapes(t *testing.T) {
	t.Parallel()

	c := newClient(t, &notify.Recorder{})
	ctx := context.Background()

	recent, err := c.Transactions(ctx, 5)
	require.NoError(t, err)

	history, err := c.History(ctx)
	require.NoError(t, err)

	want := []domain.Transaction{
		{
			ID:           "t1",
			FromUserID:   "u2",
			ToUserID:     "u1",
			FromUserName: "bob",
			Amount:       decimal.RequireFromString("250.5"),
			Status:       "COMPLETED",
			Date:         time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:           "t2",
			FromUserName: "alice",
			ToUserName:   "bob",
			FromUPI:      "alice@convergex",
			ToUPI:        "bob@convergex",
			Amount:       decimal.RequireFromString("12.25"),
			Status:       "COMPLETED",
			Date:         time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
			IsSent:       true,
		},
	}

	got := append(recent, history...)

	if diff := cmp.Diff(want, got, cmp.Comparer(decimal.Decimal.Equal)); diff != "" {
		t.Errorf("transactions mismatch (-want +got):\n%s", diff)
	}
}

func TestIncomingRequests(t *testing.T) {
	t.Parallel()

	c := newClient(t, &notify.Recorder{})

	got, err := c.IncomingRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.Equal(t, "r1", got[0].ID)
	require.Equal(t, domain.RequestPending, got[0].Status)
	require.Equal(t, "bob", got[0].FromUser.Name)
	require.Equal(t, "u1", got[0].ToUser.ID)
	require.True(t, got[0].Amount.Equal(decimal.NewFromInt(99)))
}

func TestInternalWalletNormalizesTokens(t *testing.T) {
	t.Parallel()

	c := newClient(t, &notify.Recorder{})

	got, err := c.InternalWallet(context.Background())
	require.NoError(t, err)

	require.Equal(t, "cx_0123456789abcdef01234567", got.Address)
	require.Equal(t, []string{"DAI", "ETH", "USDC"}, got.Balances.Tokens())
	require.True(t, got.Balances.Get("usdc").Equal(decimal.RequireFromString("150.75")))
}

func TestFindByAddress(t *testing.T) {
	t.Parallel()

	notifier := &notify.Recorder{}
	c := newClient(t, notifier)
	ctx := context.Background()

	user, err := c.FindByAddress(ctx, "cx_0123456789abcdef01234567")
	require.NoError(t, err)
	require.Equal(t, "bob", user.Name)

	_, err = c.FindByAddress(ctx, "cx_ffffffffffffffffffffffff")
	require.ErrorIs(t, err, domain.ErrRecipientNotFound)

	require.Empty(t, notifier.Errors())
}

func TestTransferWithoutSnapshot(t *testing.T) {
	t.Parallel()

	c := newClient(t, &notify.Recorder{})

	got, err := c.TransferInternal(context.Background(), "cx_0123456789abcdef01234567", decimal.NewFromInt(1), "USDC")
	require.NoError(t, err)
	require.Equal(t, "0xabc", got.TxHash)
	require.Nil(t, got.Balances)
}

func TestConvertFiatToToken(t *testing.T) {
	t.Parallel()

	c := newClient(t, &notify.Recorder{})

	got, err := c.ConvertFiatToToken(context.Background(), decimal.NewFromInt(830), "USDC")
	require.NoError(t, err)
	require.True(t, got.HasBank)
	require.True(t, got.BankBalance.Equal(decimal.NewFromInt(9170)))
	require.True(t, got.Balances.Get("USDC").Equal(decimal.RequireFromString("160.75")))
}

func TestAmountsAreSentAsNumbers(t *testing.T) {
	t.Parallel()

	bodies := make(chan string, 1)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.POST("/*path", func(ctx *gin.Context) {
		body, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		bodies <- string(body)
		ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	c := New(apiclient.New(apiclient.Config{BaseURL: server.URL}, apiclient.WithNotifier(&notify.Recorder{})))
	ctx := context.Background()

	testCases := []struct {
		name     string
		call     func() error
		wantBody string
	}{
		{
			name: "PayUPI",
			call: func() error {
				_, err := c.PayUPI(ctx, "bob@convergex", decimal.NewFromInt(100))
				return err
			},
			wantBody: `{"toUpiId":"bob@convergex","amount":100}`,
		},
		{
			name: "CreateRequest",
			call: func() error {
				_, err := c.CreateRequest(ctx, "bob@convergex", decimal.RequireFromString("30.5"))
				return err
			},
			wantBody: `{"toUpiId":"bob@convergex","amount":30.5}`,
		},
		{
			name: "TransferInternal",
			call: func() error {
				_, err := c.TransferInternal(ctx, "cx_0123456789abcdef01234567", decimal.RequireFromString("2.5"), "USDC")
				return err
			},
			wantBody: `{"toAddress":"cx_0123456789abcdef01234567","amount":2.5,"token":"USDC"}`,
		},
		{
			name: "ConvertTokenToFiat",
			call: func() error {
				_, err := c.ConvertTokenToFiat(ctx, decimal.RequireFromString("0.125"), "ETH")
				return err
			},
			wantBody: `{"amount":0.125,"token":"ETH"}`,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		require.NoError(t, tc.call(), tc.name)
		require.JSONEq(t, tc.wantBody, <-bodies, tc.name)
	}
}
