package backend

import (
	"strings"
	"time"

	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/shopspring/decimal"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type wireUser struct {
	ID       string `json:"id"`
	MongoID  string `json:"_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u wireUser) domain() domain.User {
	id := u.ID
	if id == "" {
		id = u.MongoID
	}

	name := u.Name
	if name == "" {
		name = u.Username
	}

	return domain.User{ID: id, Name: name, Email: u.Email}
}

// userRef is a user given either as a bare id or as an embedded object.
type userRef struct {
	wireUser
}

func (r *userRef) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}

		r.ID = id

		return nil
	}

	return json.Unmarshal(data, &r.wireUser)
}

type authResponse struct {
	Token string   `json:"token"`
	User  wireUser `json:"user"`
}

type bankBalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
	UPIID   string          `json:"upiId"`
}

type wireTransaction struct {
	ID           string          `json:"id"`
	MongoID      string          `json:"_id"`
	FromUser     userRef         `json:"fromUser"`
	ToUser       userRef         `json:"toUser"`
	FromUserName string          `json:"fromUserName"`
	ToUserName   string          `json:"toUserName"`
	FromUPI      string          `json:"fromUpi"`
	ToUPI        string          `json:"toUpi"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	Date         time.Time       `json:"date"`
	CreatedAt    time.Time       `json:"createdAt"`
	IsSent       bool            `json:"isSent"`
}

func (t wireTransaction) domain() domain.Transaction {
	id := t.ID
	if id == "" {
		id = t.MongoID
	}

	date := t.Date
	if date.IsZero() {
		date = t.CreatedAt
	}

	fromName := t.FromUserName
	if fromName == "" {
		fromName = t.FromUser.domain().Name
	}

	toName := t.ToUserName
	if toName == "" {
		toName = t.ToUser.domain().Name
	}

	return domain.Transaction{
		ID:           id,
		FromUserID:   t.FromUser.domain().ID,
		ToUserID:     t.ToUser.domain().ID,
		FromUserName: fromName,
		ToUserName:   toName,
		FromUPI:      t.FromUPI,
		ToUPI:        t.ToUPI,
		Amount:       t.Amount,
		Status:       t.Status,
		Date:         date,
		IsSent:       t.IsSent,
	}
}

func transactions(in []wireTransaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(in))
	for _, t := range in {
		out = append(out, t.domain())
	}

	return out
}

type transactionsResponse struct {
	Transactions []wireTransaction `json:"transactions"`
}

// wireAmount is sent as a JSON number, e.g. {"amount":100}.
type wireAmount decimal.Decimal

func (a wireAmount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

type payRequest struct {
	ToUPIID string     `json:"toUpiId"`
	Amount  wireAmount `json:"amount"`
}

type payResponse struct {
	Message     string           `json:"message"`
	Transaction *wireTransaction `json:"transaction"`
	Balance     decimal.Decimal  `json:"balance"`
}

type wireRequest struct {
	ID        string          `json:"id"`
	MongoID   string          `json:"_id"`
	FromUser  userRef         `json:"fromUser"`
	ToUser    userRef         `json:"toUser"`
	FromUPI   string          `json:"fromUpi"`
	ToUPI     string          `json:"toUpi"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (r wireRequest) domain() domain.PaymentRequest {
	id := r.ID
	if id == "" {
		id = r.MongoID
	}

	return domain.PaymentRequest{
		ID:        id,
		FromUser:  r.FromUser.domain(),
		ToUser:    r.ToUser.domain(),
		FromUPI:   r.FromUPI,
		ToUPI:     r.ToUPI,
		Amount:    r.Amount,
		Status:    strings.ToUpper(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

type requestsResponse struct {
	Requests []wireRequest `json:"requests"`
}

type createRequestResponse struct {
	Message string       `json:"message"`
	Request *wireRequest `json:"request"`
}

type countResponse struct {
	Count int `json:"count"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// wireBalances accepts any key case, e.g. {"usdc": 1} or {"USDC": "1"}.
type wireBalances map[string]decimal.Decimal

func (b wireBalances) domain() domain.Balances {
	if b == nil {
		return nil
	}

	out := make(domain.Balances, len(b))
	for k, v := range b {
		out[strings.ToUpper(k)] = v
	}

	return out
}

type walletResponse struct {
	Wallet struct {
		Address  string       `json:"address"`
		Balances wireBalances `json:"balances"`
	} `json:"wallet"`
}

type connectRequest struct {
	Address string `json:"address"`
}

type findByAddressResponse struct {
	User wireUser `json:"user"`
}

type transferRequest struct {
	ToAddress string     `json:"toAddress"`
	Amount    wireAmount `json:"amount"`
	Token     string     `json:"token"`
}

type transferResponse struct {
	Message  string       `json:"message"`
	Balances wireBalances `json:"balances"`
	TxHash   string       `json:"txHash"`
}

type convertRequest struct {
	Amount wireAmount `json:"amount"`
	Token  string     `json:"token"`
}

type convertResponse struct {
	Message     string           `json:"message"`
	Balances    wireBalances     `json:"balances"`
	BankBalance *decimal.Decimal `json:"bankBalance"`
}
