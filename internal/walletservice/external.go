package walletservice

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/go-petr/convergex-pay/internal/storage"
)

// External returns a snapshot of the external connection.
func (s *Service) External() domain.ExternalConnection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.externalLocked()
}

func (s *Service) externalLocked() domain.ExternalConnection {
	c := s.external
	c.Balances = s.external.Balances.Clone()

	return c
}

// ProviderAvailable asks the provider now; the answer is never cached.
func (s *Service) ProviderAvailable() bool {
	return s.provider != nil && s.provider.Available()
}

func (s *Service) restoreExternal() {
	addr, ok := s.store.Get(storage.KeyCryptoWallet)
	if !ok || addr == "" {
		return
	}

	if !common.IsHexAddress(addr) {
		s.logger.Warn().Str("address", addr).Msg("dropping invalid persisted external address")

		if err := s.store.Remove(storage.KeyCryptoWallet); err != nil {
			s.logger.Error().Err(err).Send()
		}

		return
	}

	if !s.ProviderAvailable() {
		return
	}

	s.external = domain.ExternalConnection{
		Address:  addr,
		State:    domain.Connected,
		Balances: domain.Balances{},
	}
}

// ConnectExternalWallet asks the provider for an account, registers it with
// the backend and only then marks the connection as connected. A failure
// leaves the connection as it was before the call: disconnected, or still
// connected to the previous address.
func (s *Service) ConnectExternalWallet(ctx context.Context) error {
	if !s.ProviderAvailable() {
		return domain.ErrProviderUnavailable
	}

	s.mu.Lock()
	prev := s.externalLocked()
	if prev.State != domain.Connected {
		s.external = domain.ExternalConnection{State: domain.Connecting, Balances: domain.Balances{}}
	}
	s.mu.Unlock()

	addr, err := s.requestAccount(ctx)
	if err != nil {
		s.abortConnect(prev)
		return err
	}

	if err := s.backend.RegisterExternal(ctx, addr); err != nil {
		s.logger.Info().Err(err).Str("address", addr).Msg("register external wallet")
		s.abortConnect(prev)

		return err
	}

	s.mu.Lock()
	s.external = domain.ExternalConnection{Address: addr, State: domain.Connected, Balances: domain.Balances{}}
	s.mu.Unlock()

	if err := s.store.Set(storage.KeyCryptoWallet, addr); err != nil {
		s.logger.Error().Err(err).Msg("persist external address")
	}

	if err := s.RefreshExternalBalances(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("read external balances")
	}

	return nil
}

func (s *Service) requestAccount(ctx context.Context) (string, error) {
	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProviderRejected, err)
	}

	if len(accounts) == 0 {
		return "", domain.ErrProviderRejected
	}

	if !common.IsHexAddress(accounts[0]) {
		return "", domain.ErrInvalidAddress
	}

	return accounts[0], nil
}

func (s *Service) abortConnect(prev domain.ExternalConnection) {
	if prev.State != domain.Connected {
		s.disconnect()
		return
	}

	s.mu.Lock()
	s.external = prev
	s.mu.Unlock()
}

func (s *Service) disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.external = domain.ExternalConnection{State: domain.Disconnected, Balances: domain.Balances{}}

	if s.active == domain.WalletExternal {
		s.active = domain.WalletInternal
	}
}

// DisconnectExternalWallet forgets the external wallet. The session and the
// internal wallet are untouched.
func (s *Service) DisconnectExternalWallet() error {
	s.disconnect()
	return s.store.Remove(storage.KeyCryptoWallet)
}

// RefreshExternalBalances reads the external balances from the oracle. The
// values are display only.
func (s *Service) RefreshExternalBalances(ctx context.Context) error {
	s.mu.RLock()
	addr, state := s.external.Address, s.external.State
	s.mu.RUnlock()

	if state != domain.Connected {
		return domain.ErrWalletNotConnected
	}

	if s.oracle == nil {
		return nil
	}

	balances, err := s.oracle.Balances(ctx, addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.external.State == domain.Connected && s.external.Address == addr {
		s.external.Balances = balances.Clone()
	}

	return nil
}
