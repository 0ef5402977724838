package walletservice

import (
	"context"

	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/go-petr/convergex-pay/pkg/currencypkg"
	"github.com/shopspring/decimal"
)

func validToken(token string) (string, error) {
	token = currencypkg.Normalize(token)
	if !currencypkg.IsSupportedToken(token) {
		return "", domain.ErrUnsupportedToken
	}

	return token, nil
}

// ReviewTransfer checks intent against the internal wallet, the only wallet
// transfers are sent from, and returns what the review step shows. It makes
// no network call.
func (s *Service) ReviewTransfer(intent domain.TransferIntent) (domain.TransferReview, error) {
	token, err := validToken(intent.Token)
	if err != nil {
		return domain.TransferReview{}, err
	}

	intent.Token = token

	if !intent.Amount.IsPositive() {
		return domain.TransferReview{}, domain.ErrInvalidAmount
	}

	if !domain.IsInternalAddress(intent.Destination) {
		return domain.TransferReview{}, domain.ErrInvalidAddress
	}

	if intent.Source == "" {
		intent.Source = s.ActiveKind()
	}

	if intent.Source != domain.WalletInternal {
		return domain.TransferReview{}, domain.ErrWrongSourceWallet
	}

	balance := s.InternalWallet().Balances.Get(token)
	if intent.Amount.GreaterThan(balance) {
		return domain.TransferReview{}, domain.ErrInsufficientBalance
	}

	return domain.TransferReview{
		Intent:     intent,
		LocalValue: s.ToLocal(intent.Amount, token),
		Remaining:  balance.Sub(intent.Amount),
	}, nil
}

// TransferInternal sends amount of token to another internal wallet. The
// internal wallet must be the active one and the amount is checked against
// it. The new balances are the ones confirmed by the backend; they are never
// computed locally.
func (s *Service) TransferInternal(ctx context.Context, destination string, amount decimal.Decimal, token string) (domain.TransferReceipt, error) {
	token, err := validToken(token)
	if err != nil {
		return domain.TransferReceipt{}, err
	}

	if !amount.IsPositive() {
		return domain.TransferReceipt{}, domain.ErrInvalidAmount
	}

	if !domain.IsInternalAddress(destination) {
		return domain.TransferReceipt{}, domain.ErrInvalidAddress
	}

	if s.ActiveKind() != domain.WalletInternal {
		return domain.TransferReceipt{}, domain.ErrWrongSourceWallet
	}

	if amount.GreaterThan(s.InternalWallet().Balances.Get(token)) {
		return domain.TransferReceipt{}, domain.ErrInsufficientBalance
	}

	receipt, err := s.backend.TransferInternal(ctx, destination, amount, token)
	if err != nil {
		s.logger.Info().Err(err).Str("token", token).Msg("internal transfer")
		return domain.TransferReceipt{}, err
	}

	if receipt.Balances != nil {
		s.replaceInternalBalances(receipt.Balances)
	} else {
		s.resync(ctx)
	}

	return receipt, nil
}

// Convert moves value between the bank balance and the internal wallet.
// For FiatToToken amount is in local currency and is checked against the
// bank balance; for TokenToFiat it is in token units and is checked against
// the internal wallet.
func (s *Service) Convert(ctx context.Context, direction domain.Direction, amount decimal.Decimal, token string) (domain.ConversionReceipt, error) {
	token, err := validToken(token)
	if err != nil {
		return domain.ConversionReceipt{}, err
	}

	if !amount.IsPositive() {
		return domain.ConversionReceipt{}, domain.ErrInvalidAmount
	}

	wallet := s.InternalWallet()

	var convert func(context.Context, decimal.Decimal, string) (domain.ConversionReceipt, error)

	switch direction {
	case domain.FiatToToken:
		if amount.GreaterThan(wallet.BankBalance) {
			return domain.ConversionReceipt{}, domain.ErrInsufficientBalance
		}

		convert = s.backend.ConvertFiatToToken
	case domain.TokenToFiat:
		if amount.GreaterThan(wallet.Balances.Get(token)) {
			return domain.ConversionReceipt{}, domain.ErrInsufficientBalance
		}

		convert = s.backend.ConvertTokenToFiat
	default:
		return domain.ConversionReceipt{}, domain.ErrInvalidDirection
	}

	receipt, err := convert(ctx, amount, token)
	if err != nil {
		s.logger.Info().Err(err).Str("direction", string(direction)).Msg("conversion")
		return domain.ConversionReceipt{}, err
	}

	if receipt.Balances == nil {
		s.resync(ctx)
		return receipt, nil
	}

	s.mu.Lock()
	s.internal.Balances = receipt.Balances.Clone()
	s.internal.State = domain.InternalReady

	if receipt.HasBank {
		s.internal.BankBalance = receipt.BankBalance
	}
	s.mu.Unlock()

	return receipt, nil
}
