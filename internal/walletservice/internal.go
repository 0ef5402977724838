package walletservice

import (
	"context"

	"github.com/go-petr/convergex-pay/internal/apiclient"
	"github.com/go-petr/convergex-pay/internal/domain"
	"golang.org/x/sync/errgroup"
)

// InternalWallet returns a snapshot of the internal wallet.
func (s *Service) InternalWallet() domain.InternalWallet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.internalLocked()
}

func (s *Service) internalLocked() domain.InternalWallet {
	w := s.internal
	w.Balances = s.internal.Balances.Clone()

	return w
}

// FetchInternalWallet loads the internal wallet together with the fiat bank
// balance. On failure the previous balances are kept, the state becomes
// error and the error is returned for callers that want to branch on it.
func (s *Service) FetchInternalWallet(ctx context.Context) error {
	s.setInternalState(domain.InternalLoading)

	var (
		wallet  domain.InternalWallet
		bank    domain.BankAccount
		bankErr error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		wallet, err = s.backend.InternalWallet(gctx)

		return err
	})

	g.Go(func() error {
		bank, bankErr = s.backend.BankBalance(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn().Err(err).Msg("fetch internal wallet")
		s.setInternalState(domain.InternalError)

		return err
	}

	if bankErr != nil {
		s.logger.Warn().Err(bankErr).Msg("fetch bank balance")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.internal.Address = wallet.Address
	s.internal.Balances = wallet.Balances.Clone()
	s.internal.State = domain.InternalReady

	if bankErr == nil {
		s.internal.BankBalance = bank.Balance
		s.internal.UPIID = bank.UPIID
	}

	return nil
}

// resync refreshes the internal wallet after a mutation whose response
// carried no balance snapshot. Failures are logged only.
func (s *Service) resync(ctx context.Context) {
	if err := s.FetchInternalWallet(apiclient.Silent(ctx)); err != nil {
		s.logger.Warn().Err(err).Msg("resync internal wallet")
	}
}

func (s *Service) setInternalState(state domain.InternalWalletState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.internal.State = state
}

func (s *Service) replaceInternalBalances(b domain.Balances) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.internal.Balances = b.Clone()
	s.internal.State = domain.InternalReady
}
