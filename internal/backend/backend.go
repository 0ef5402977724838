// Package backend binds the ConvergeX Pay REST surface to domain types.
package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-petr/convergex-pay/internal/apiclient"
	"github.com/go-petr/convergex-pay/internal/domain"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Transport performs classified backend calls.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, in, out any) error
}

// Client is the typed backend.
type Client struct {
	t Transport
}

// New returns a Client over t.
func New(t Transport) *Client {
	return &Client{t: t}
}

// Login exchanges credentials for a token and identity.
func (c *Client) Login(ctx context.Context, email, password string) (domain.AuthResponse, error) {
	var res authResponse
	if err := c.t.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &res); err != nil {
		return domain.AuthResponse{}, err
	}

	return domain.AuthResponse{Token: res.Token, User: res.User.domain()}, nil
}

// Register creates an account. The display name is sent as "name".
func (c *Client) Register(ctx context.Context, displayName, email, password string) (domain.AuthResponse, error) {
	req := registerRequest{Name: displayName, Email: email, Password: password}

	var res authResponse
	if err := c.t.Post(ctx, "/auth/register", req, &res); err != nil {
		return domain.AuthResponse{}, err
	}

	return domain.AuthResponse{Token: res.Token, User: res.User.domain()}, nil
}

// BankBalance returns the fiat balance and UPI id.
func (c *Client) BankBalance(ctx context.Context) (domain.BankAccount, error) {
	var res bankBalanceResponse
	if err := c.t.Get(ctx, "/bank/balance", nil, &res); err != nil {
		return domain.BankAccount{}, err
	}

	return domain.BankAccount{Balance: res.Balance, UPIID: res.UPIID}, nil
}

// Transactions returns the latest transactions, at most limit when limit > 0.
func (c *Client) Transactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var res transactionsResponse
	if err := c.t.Get(ctx, "/transactions", query, &res); err != nil {
		return nil, err
	}

	return transactions(res.Transactions), nil
}

// History returns the full fiat history seen from the current user.
func (c *Client) History(ctx context.Context) ([]domain.Transaction, error) {
	var res []wireTransaction
	if err := c.t.Get(ctx, "/pay/history", nil, &res); err != nil {
		return nil, err
	}

	return transactions(res), nil
}

// PayUPI sends amount to a UPI id.
func (c *Client) PayUPI(ctx context.Context, toUPIID string, amount decimal.Decimal) (domain.PaymentReceipt, error) {
	var res payResponse
	if err := c.t.Post(ctx, "/pay/upi", payRequest{ToUPIID: toUPIID, Amount: wireAmount(amount)}, &res); err != nil {
		return domain.PaymentReceipt{}, err
	}

	receipt := domain.PaymentReceipt{Message: res.Message, Balance: res.Balance}
	if res.Transaction != nil {
		receipt.Transaction = res.Transaction.domain()
	}

	return receipt, nil
}

// IncomingRequests lists requests other users sent to the current user.
func (c *Client) IncomingRequests(ctx context.Context) ([]domain.PaymentRequest, error) {
	return c.requests(ctx, "/request/incoming")
}

// OutgoingRequests lists requests the current user sent.
func (c *Client) OutgoingRequests(ctx context.Context) ([]domain.PaymentRequest, error) {
	return c.requests(ctx, "/request/outgoing")
}

func (c *Client) requests(ctx context.Context, path string) ([]domain.PaymentRequest, error) {
	var res requestsResponse
	if err := c.t.Get(ctx, path, nil, &res); err != nil {
		return nil, err
	}

	out := make([]domain.PaymentRequest, 0, len(res.Requests))
	for _, r := range res.Requests {
		out = append(out, r.domain())
	}

	return out, nil
}

// CreateRequest asks the owner of toUPIID for amount.
func (c *Client) CreateRequest(ctx context.Context, toUPIID string, amount decimal.Decimal) (domain.PaymentRequest, error) {
	var res createRequestResponse
	if err := c.t.Post(ctx, "/request", payRequest{ToUPIID: toUPIID, Amount: wireAmount(amount)}, &res); err != nil {
		return domain.PaymentRequest{}, err
	}

	if res.Request == nil {
		return domain.PaymentRequest{ToUPI: toUPIID, Amount: amount, Status: domain.RequestPending}, nil
	}

	return res.Request.domain(), nil
}

// AcceptRequest pays a pending incoming request.
func (c *Client) AcceptRequest(ctx context.Context, id string) (string, error) {
	return c.resolveRequest(ctx, id, "accept")
}

// RejectRequest declines a pending incoming request.
func (c *Client) RejectRequest(ctx context.Context, id string) (string, error) {
	return c.resolveRequest(ctx, id, "reject")
}

func (c *Client) resolveRequest(ctx context.Context, id, action string) (string, error) {
	var res messageResponse
	if err := c.t.Post(ctx, "/request/"+url.PathEscape(id)+"/"+action, nil, &res); err != nil {
		return "", err
	}

	return res.Message, nil
}

// NotificationCount returns the number of pending incoming requests.
func (c *Client) NotificationCount(ctx context.Context) (int, error) {
	var res countResponse
	if err := c.t.Get(ctx, "/notification/count", nil, &res); err != nil {
		return 0, err
	}

	return res.Count, nil
}

// InternalWallet returns the custodial wallet address and balances.
func (c *Client) InternalWallet(ctx context.Context) (domain.InternalWallet, error) {
	var res walletResponse
	if err := c.t.Get(ctx, "/wallet/convergex", nil, &res); err != nil {
		return domain.InternalWallet{}, err
	}

	balances := res.Wallet.Balances.domain()
	if balances == nil {
		balances = domain.Balances{}
	}

	return domain.InternalWallet{Address: res.Wallet.Address, Balances: balances}, nil
}

// RegisterExternal ties an external address to the current user.
func (c *Client) RegisterExternal(ctx context.Context, address string) error {
	return c.t.Post(ctx, "/wallet/metamask/connect", connectRequest{Address: address}, nil)
}

// FindByAddress resolves the owner of an internal address. The call is
// always silent; a miss is domain.ErrRecipientNotFound.
func (c *Client) FindByAddress(ctx context.Context, address string) (domain.User, error) {
	var res findByAddressResponse

	err := c.t.Get(apiclient.Silent(ctx), "/wallet/find-by-address/"+url.PathEscape(address), nil, &res)
	if err != nil {
		if errors.Is(err, domain.ErrClientRequest) && apiclient.StatusOf(err) == http.StatusNotFound {
			return domain.User{}, domain.ErrRecipientNotFound
		}

		return domain.User{}, err
	}

	user := res.User.domain()
	if user.IsZero() {
		return domain.User{}, domain.ErrRecipientNotFound
	}

	return user, nil
}

// TransferInternal moves amount of token to another internal wallet.
func (c *Client) TransferInternal(ctx context.Context, toAddress string, amount decimal.Decimal, token string) (domain.TransferReceipt, error) {
	req := transferRequest{ToAddress: toAddress, Amount: wireAmount(amount), Token: token}

	var res transferResponse
	if err := c.t.Post(ctx, "/wallet/convergex/transfer", req, &res); err != nil {
		return domain.TransferReceipt{}, err
	}

	return domain.TransferReceipt{
		Message:  res.Message,
		TxHash:   res.TxHash,
		Balances: res.Balances.domain(),
	}, nil
}

// ConvertFiatToToken buys amount worth of token with the bank balance.
func (c *Client) ConvertFiatToToken(ctx context.Context, amount decimal.Decimal, token string) (domain.ConversionReceipt, error) {
	return c.convert(ctx, "/wallet/convert/upi-to-crypto", amount, token)
}

// ConvertTokenToFiat sells amount of token into the bank balance.
func (c *Client) ConvertTokenToFiat(ctx context.Context, amount decimal.Decimal, token string) (domain.ConversionReceipt, error) {
	return c.convert(ctx, "/wallet/convert/crypto-to-upi", amount, token)
}

func (c *Client) convert(ctx context.Context, path string, amount decimal.Decimal, token string) (domain.ConversionReceipt, error) {
	var res convertResponse
	if err := c.t.Post(ctx, path, convertRequest{Amount: wireAmount(amount), Token: token}, &res); err != nil {
		return domain.ConversionReceipt{}, err
	}

	receipt := domain.ConversionReceipt{
		Message:  res.Message,
		Balances: res.Balances.domain(),
	}

	if res.BankBalance != nil {
		receipt.BankBalance = *res.BankBalance
		receipt.HasBank = true
	}

	return receipt, nil
}
