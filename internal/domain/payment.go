package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount is the fiat side of the user.
type BankAccount struct {
	Balance decimal.Decimal
	UPIID   string
}

// Transaction is a fiat ledger movement.
type Transaction struct {
	ID           string
	FromUserID   string
	ToUserID     string
	FromUserName string
	ToUserName   string
	FromUPI      string
	ToUPI        string
	Amount       decimal.Decimal
	Status       string
	Date         time.Time
	IsSent       bool
}

// PaymentReceipt is the backend confirmation of a UPI payment.
type PaymentReceipt struct {
	Message     string
	Transaction Transaction
	Balance     decimal.Decimal
}

// Request statuses.
const (
	RequestPending  = "PENDING"
	RequestAccepted = "ACCEPTED"
	RequestRejected = "REJECTED"
)

// PaymentRequest asks ToUser to pay FromUser.
type PaymentRequest struct {
	ID        string
	FromUser  User
	ToUser    User
	FromUPI   string
	ToUPI     string
	Amount    decimal.Decimal
	Status    string
	CreatedAt time.Time
}
