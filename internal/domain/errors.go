// Package domain provides definitions of all entities.
package domain

import "errors"

var (
	// ErrAuthExpired indicates that the backend rejected the bearer token.
	ErrAuthExpired = errors.New("session expired")
	// ErrNetworkUnavailable indicates that no response was received.
	ErrNetworkUnavailable = errors.New("network unavailable")
	// ErrClientRequest indicates a 4xx response.
	ErrClientRequest = errors.New("client request error")
	// ErrServer indicates a 5xx response.
	ErrServer = errors.New("server error")

	// ErrInvalidAmount indicates a missing, malformed or non-positive amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientBalance indicates that the wallet does not hold enough of the token.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidAddress indicates a destination that is not a wallet address.
	ErrInvalidAddress = errors.New("invalid wallet address")
	// ErrInvalidRecipient indicates an empty or malformed UPI recipient.
	ErrInvalidRecipient = errors.New("invalid recipient")
	// ErrUnsupportedToken indicates a token outside of currencypkg.SupportedTokens.
	ErrUnsupportedToken = errors.New("unsupported token")
	// ErrInvalidDirection indicates an unknown conversion direction.
	ErrInvalidDirection = errors.New("invalid conversion direction")
	// ErrInvalidCredentials indicates credentials rejected before reaching the backend.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidWalletKind indicates an unknown wallet selector.
	ErrInvalidWalletKind = errors.New("invalid wallet kind")
	// ErrInvalidRequestID indicates an empty payment request id.
	ErrInvalidRequestID = errors.New("invalid payment request id")
	// ErrWrongSourceWallet indicates a transfer attempted from the external wallet.
	ErrWrongSourceWallet = errors.New("transfers are sent from the ConvergeX wallet")

	// ErrProviderUnavailable indicates that no external wallet provider is installed.
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
	// ErrProviderRejected indicates that the provider returned no usable account.
	ErrProviderRejected = errors.New("wallet provider rejected the request")
	// ErrWalletNotConnected indicates an operation on a disconnected external wallet.
	ErrWalletNotConnected = errors.New("external wallet not connected")
	// ErrRecipientNotFound indicates that no user owns the looked up address.
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrNotAuthenticated indicates a call that requires a session made without one.
	ErrNotAuthenticated = errors.New("not authenticated")
)

var validationErrors = []error{
	ErrInvalidAmount,
	ErrInsufficientBalance,
	ErrInvalidAddress,
	ErrInvalidRecipient,
	ErrUnsupportedToken,
	ErrInvalidDirection,
	ErrInvalidCredentials,
	ErrInvalidWalletKind,
	ErrInvalidRequestID,
	ErrWrongSourceWallet,
}

// IsValidation reports whether err was raised by a client side check.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
