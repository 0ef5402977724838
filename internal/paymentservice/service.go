// Package paymentservice manages the fiat (UPI) side: balance, payments,
// history and the derived analytics.
package paymentservice

import (
	"context"
	"strings"

	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultRecentLimit is the number of transactions shown on the dashboard.
const DefaultRecentLimit = 5

// Backend provides the fiat endpoints.
//
//go:generate mockgen -source service.go -destination service_mock.go -package paymentservice
type Backend interface {
	BankBalance(ctx context.Context) (domain.BankAccount, error)
	Transactions(ctx context.Context, limit int) ([]domain.Transaction, error)
	History(ctx context.Context) ([]domain.Transaction, error)
	PayUPI(ctx context.Context, toUPIID string, amount decimal.Decimal) (domain.PaymentReceipt, error)
}

// Service facilitates the fiat flows.
type Service struct {
	backend Backend
}

// New returns a payment service.
func New(b Backend) *Service {
	return &Service{backend: b}
}

// Balance returns the bank balance and the UPI id of the user.
func (s *Service) Balance(ctx context.Context) (domain.BankAccount, error) {
	return s.backend.BankBalance(ctx)
}

// Recent returns the latest transactions.
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	return s.backend.Transactions(ctx, limit)
}

// History returns every transaction of the user.
func (s *Service) History(ctx context.Context) ([]domain.Transaction, error) {
	return s.backend.History(ctx)
}

// PayUPI sends amount to the owner of toUPIID.
func (s *Service) PayUPI(ctx context.Context, toUPIID string, amount decimal.Decimal) (domain.PaymentReceipt, error) {
	l := zerolog.Ctx(ctx)

	toUPIID = strings.TrimSpace(toUPIID)
	if toUPIID == "" {
		return domain.PaymentReceipt{}, domain.ErrInvalidRecipient
	}

	if !amount.IsPositive() {
		return domain.PaymentReceipt{}, domain.ErrInvalidAmount
	}

	receipt, err := s.backend.PayUPI(ctx, toUPIID, amount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.PaymentReceipt{}, err
	}

	return receipt, nil
}

// FilterType selects transactions by direction.
type FilterType string

// Filters.
const (
	FilterAll      FilterType = "all"
	FilterSent     FilterType = "sent"
	FilterReceived FilterType = "received"
)

// Filter returns the transactions matching filter whose names, UPI ids or
// amount contain query. Matching is case-insensitive.
func Filter(history []domain.Transaction, filter FilterType, query string) []domain.Transaction {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]domain.Transaction, 0, len(history))

	for _, tx := range history {
		switch filter {
		case FilterSent:
			if !tx.IsSent {
				continue
			}
		case FilterReceived:
			if tx.IsSent {
				continue
			}
		}

		if query != "" && !matches(tx, query) {
			continue
		}

		out = append(out, tx)
	}

	return out
}

func matches(tx domain.Transaction, query string) bool {
	fields := []string{tx.FromUserName, tx.ToUserName, tx.FromUPI, tx.ToUPI, tx.Amount.String()}

	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}

	return false
}

// Stats is the income and expense summary of a set of transactions.
type Stats struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// Analytics sums transactions received by userID as income and everything
// else as expense.
func Analytics(transactions []domain.Transaction, userID string) Stats {
	var stats Stats

	for _, tx := range transactions {
		if userID != "" && tx.ToUserID == userID {
			stats.Income = stats.Income.Add(tx.Amount)
		} else {
			stats.Expense = stats.Expense.Add(tx.Amount)
		}
	}

	stats.Net = stats.Income.Sub(stats.Expense)

	return stats
}

// Totals sums the sent and received amounts of a history.
func Totals(history []domain.Transaction) (sent, received decimal.Decimal) {
	for _, tx := range history {
		if tx.IsSent {
			sent = sent.Add(tx.Amount)
		} else {
			received = received.Add(tx.Amount)
		}
	}

	return sent, received
}
