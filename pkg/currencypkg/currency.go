// Package currencypkg provides common currency related functionality for apps.
package currencypkg

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Constants for all supported tokens.
const (
	USDC = "USDC"
	DAI  = "DAI"
	ETH  = "ETH"
)

// INR is the local fiat currency of the UPI ledger.
const INR = "INR"

// SupportedTokens holds all the supported tokens.
var SupportedTokens = []string{
	USDC,
	DAI,
	ETH,
}

// Normalize returns the canonical upper-case symbol for s.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsSupportedToken returns true if the token is supported. Matching is case-insensitive.
func IsSupportedToken(token string) bool {
	token = Normalize(token)

	for _, t := range SupportedTokens {
		if t == token {
			return true
		}
	}

	return false
}

// ValidToken is a validator.Func for the "token" binding tag.
var ValidToken validator.Func = func(fl validator.FieldLevel) bool {
	if token, ok := fl.Field().Interface().(string); ok {
		return IsSupportedToken(token)
	}

	return false
}
