package domain

import (
	"github.com/shopspring/decimal"
)

// TransferIntent is the state of a send wizard between review and confirm.
type TransferIntent struct {
	Source      WalletKind
	Destination string
	Amount      decimal.Decimal
	Token       string
}

// TransferReview is what the review step shows before confirmation.
type TransferReview struct {
	Intent     TransferIntent
	Recipient  User
	LocalValue decimal.Decimal
	Remaining  decimal.Decimal
}

// TransferReceipt is the backend confirmation of an internal transfer.
type TransferReceipt struct {
	Message  string
	TxHash   string
	Balances Balances
}

// Direction is the side a conversion moves value to.
type Direction string

const (
	// FiatToToken debits the bank balance and credits the internal wallet.
	FiatToToken Direction = "fiat-to-token"
	// TokenToFiat debits the internal wallet and credits the bank balance.
	TokenToFiat Direction = "token-to-fiat"
)

// ParseDirection converts user input into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case FiatToToken, "upi-to-crypto":
		return FiatToToken, nil
	case TokenToFiat, "crypto-to-upi":
		return TokenToFiat, nil
	}

	return "", ErrInvalidDirection
}

// ConversionReceipt is the backend confirmation of a conversion.
type ConversionReceipt struct {
	Message     string
	Balances    Balances
	BankBalance decimal.Decimal
	HasBank     bool
}
