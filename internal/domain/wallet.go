package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Balances maps an upper-case token symbol to its amount.
type Balances map[string]decimal.Decimal

// Get returns the balance of token, zero when absent.
func (b Balances) Get(token string) decimal.Decimal {
	return b[strings.ToUpper(token)]
}

// Clone returns a copy that shares nothing with b.
func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for k, v := range b {
		out[k] = v
	}

	return out
}

// Tokens returns the symbols held, sorted.
func (b Balances) Tokens() []string {
	tokens := make([]string, 0, len(b))
	for k := range b {
		tokens = append(tokens, k)
	}

	sort.Strings(tokens)

	return tokens
}

// WalletKind selects one of the two wallets.
type WalletKind string

const (
	// WalletInternal is the custodial ConvergeX wallet.
	WalletInternal WalletKind = "internal"
	// WalletExternal is the browser or RPC provided blockchain wallet.
	WalletExternal WalletKind = "external"
)

// ParseWalletKind converts user input into a WalletKind.
func ParseWalletKind(s string) (WalletKind, error) {
	switch WalletKind(strings.ToLower(s)) {
	case WalletInternal, "convergex":
		return WalletInternal, nil
	case WalletExternal, "metamask":
		return WalletExternal, nil
	}

	return "", ErrInvalidWalletKind
}

// InternalWalletState is the lifecycle of the internal wallet snapshot.
type InternalWalletState int

// Internal wallet states.
const (
	InternalUninitialized InternalWalletState = iota
	InternalLoading
	InternalReady
	InternalError
)

func (s InternalWalletState) String() string {
	switch s {
	case InternalLoading:
		return "loading"
	case InternalReady:
		return "ready"
	case InternalError:
		return "error"
	}

	return "uninitialized"
}

// InternalWallet is the custodial ledger wallet with the fiat bank balance
// it converts against.
type InternalWallet struct {
	Address     string
	Balances    Balances
	BankBalance decimal.Decimal
	UPIID       string
	State       InternalWalletState
}

// ConnectionState is the lifecycle of the external wallet connection.
type ConnectionState int

// External connection states.
const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}

	return "disconnected"
}

// ExternalConnection is the link to a provider wallet. Balances are best
// effort and never used for settlement.
type ExternalConnection struct {
	Address  string
	State    ConnectionState
	Balances Balances
}

// WalletView is the active wallet. Exactly one of Internal and External is
// set, according to Kind.
type WalletView struct {
	Kind     WalletKind
	Internal *InternalWallet
	External *ExternalConnection
}

// Address returns the address of the selected wallet.
func (v WalletView) Address() string {
	switch v.Kind {
	case WalletInternal:
		if v.Internal != nil {
			return v.Internal.Address
		}
	case WalletExternal:
		if v.External != nil && v.External.State == Connected {
			return v.External.Address
		}
	}

	return ""
}

// Balances returns the balances of the selected wallet.
func (v WalletView) Balances() Balances {
	switch v.Kind {
	case WalletInternal:
		if v.Internal != nil {
			return v.Internal.Balances
		}
	case WalletExternal:
		if v.External != nil && v.External.State == Connected {
			return v.External.Balances
		}
	}

	return Balances{}
}

// Internal address format.
const (
	InternalAddressPrefix    = "cx_"
	MinInternalAddressLength = 20
)

// IsInternalAddress reports whether addr has the internal wallet format.
func IsInternalAddress(addr string) bool {
	return strings.HasPrefix(addr, InternalAddressPrefix) && len(addr) >= MinInternalAddressLength
}
