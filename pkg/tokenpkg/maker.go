// Package tokenpkg issues and verifies the bearer tokens of the backend.
package tokenpkg

import "time"

// Maker is an interface for managing tokens.
type Maker interface {
	// CreateToken creates a new token for a specific user and duration.
	CreateToken(userID string, duration time.Duration) (string, *Payload, error)
	// VerifyToken checks if the token is valid or not.
	VerifyToken(token string) (*Payload, error)
}

const (
	// KindJWT selects JWTMaker.
	KindJWT = "jwt"
	// KindPaseto selects PasetoMaker.
	KindPaseto = "paseto"
)

// NewMaker returns the maker of the given kind.
func NewMaker(kind, symmetricKey string) (Maker, error) {
	if kind == KindPaseto {
		return NewPasetoMaker(symmetricKey)
	}

	return NewJWTMaker(symmetricKey)
}
