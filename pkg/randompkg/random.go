// Package randompkg provides functionality for generating random application items.
package randompkg

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// Float64 is a shortcut for generating a random float between 0 and 1 using crypto/rand.
func Float64() float64 {
	return float64(Intn(1<<32)) / (1 << 32)
}

// FloatBetween generates a random decimal number between min and max rounded to 4 decimals.
func FloatBetween(min, max float64) float64 {
	numInRange := min + Float64()*(max-min)
	return math.Floor(numInRange*10_000) / 10_000
}

// String generates a random string of length n.
func String(n int) string {
	var sb strings.Builder

	k := len(alphabet)

	for i := 0; i < n; i++ {
		c := alphabet[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// Hex generates n random bytes encoded as hex.
func Hex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}

	return hex.EncodeToString(b)
}

// Name generates a random display name.
func Name() string {
	return String(6)
}

// UserID generates a random backend user id.
func UserID() string {
	return Hex(12)
}

// Email generates a random email.
func Email() string {
	return fmt.Sprintf("%s@email.com", String(10))
}

// Password generates a random password long enough for the backend rules.
func Password() string {
	return String(12)
}

// UPIID generates a random UPI handle.
func UPIID() string {
	return fmt.Sprintf("%s@convergex", String(8))
}

// InternalAddress generates a random ConvergeX wallet address.
func InternalAddress() string {
	return "cx_" + Hex(12)
}

// ExternalAddress generates a random EVM address.
func ExternalAddress() string {
	return "0x" + Hex(20)
}

// MoneyAmountBetween generates a random amount of money between min and max rounded to 4 decimals.
func MoneyAmountBetween(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(FloatBetween(min, max))
}

// Token generates a random supported token symbol.
func Token() string {
	tokens := []string{"USDC", "DAI", "ETH"}
	return tokens[Intn(len(tokens))]
}
