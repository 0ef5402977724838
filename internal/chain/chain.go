// Package chain reads external wallet state from an EVM node and talks to a
// JSON-RPC wallet provider.
package chain

import "github.com/ethereum/go-ethereum/common"

// NativeDecimals is the number of decimals of ETH.
const NativeDecimals = 18

// IsAddress reports whether addr is a hex encoded 20 byte address.
func IsAddress(addr string) bool {
	return common.IsHexAddress(addr)
}

// Token is an ERC-20 contract watched by the Oracle.
type Token struct {
	Symbol   string
	Contract string
	Decimals int32
}
