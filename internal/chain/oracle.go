package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/go-petr/convergex-pay/pkg/currencypkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}]`

const defaultCallTimeout = 10 * time.Second

var (
	parsedERC20     abi.ABI
	parsedERC20Once sync.Once
)

func erc20() abi.ABI {
	parsedERC20Once.Do(func() {
		var err error

		parsedERC20, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			panic(fmt.Sprintf("parse erc20 abi: %v", err))
		}
	})

	return parsedERC20
}

// BatchCaller sends JSON-RPC batches. *rpc.Client implements it.
type BatchCaller interface {
	BatchCallContext(ctx context.Context, b []rpc.BatchElem) error
}

// Oracle reads native and ERC-20 balances of an address.
type Oracle struct {
	client      BatchCaller
	tokens      []Token
	callTimeout time.Duration
	logger      zerolog.Logger
}

// DialOracle connects to the node at url.
func DialOracle(ctx context.Context, url string, tokens []Token, logger zerolog.Logger) (*Oracle, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	return NewOracle(client.Client(), tokens, logger), nil
}

// NewOracle returns an Oracle. Tokens without a contract address are skipped.
func NewOracle(client BatchCaller, tokens []Token, logger zerolog.Logger) *Oracle {
	watched := make([]Token, 0, len(tokens))

	for _, t := range tokens {
		if t.Contract == "" {
			continue
		}

		if !common.IsHexAddress(t.Contract) {
			logger.Warn().Str("token", t.Symbol).Str("contract", t.Contract).Msg("skipping invalid contract")
			continue
		}

		watched = append(watched, t)
	}

	return &Oracle{
		client:      client,
		tokens:      watched,
		callTimeout: defaultCallTimeout,
		logger:      logger.With().Str("component", "oracle").Logger(),
	}
}

// Balances returns the balances of address. A token whose call fails is left
// out of the result; only a failed batch is an error.
func (o *Oracle) Balances(ctx context.Context, address string) (domain.Balances, error) {
	if !common.IsHexAddress(address) {
		return nil, domain.ErrInvalidAddress
	}

	owner := common.HexToAddress(address)

	batch := make([]rpc.BatchElem, 0, len(o.tokens)+1)
	batch = append(batch, rpc.BatchElem{
		Method: "eth_getBalance",
		Args:   []interface{}{owner, "latest"},
		Result: new(hexutil.Big),
	})

	for _, t := range o.tokens {
		data, err := erc20().Pack("balanceOf", owner)
		if err != nil {
			return nil, fmt.Errorf("pack balanceOf: %w", err)
		}

		batch = append(batch, rpc.BatchElem{
			Method: "eth_call",
			Args: []interface{}{
				map[string]interface{}{
					"to":   common.HexToAddress(t.Contract),
					"data": hexutil.Bytes(data),
				},
				"latest",
			},
			Result: new(hexutil.Bytes),
		})
	}

	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	if err := o.client.BatchCallContext(callCtx, batch); err != nil {
		return nil, fmt.Errorf("batch call: %w", err)
	}

	balances := domain.Balances{}

	if batch[0].Error != nil {
		o.logger.Warn().Err(batch[0].Error).Str("address", address).Msg("native balance")
	} else if v, ok := batch[0].Result.(*hexutil.Big); ok {
		balances[currencypkg.ETH] = fromBig((*big.Int)(v), NativeDecimals)
	}

	for i, t := range o.tokens {
		elem := batch[i+1]
		if elem.Error != nil {
			o.logger.Warn().Err(elem.Error).Str("token", t.Symbol).Msg("token balance")
			continue
		}

		raw, ok := elem.Result.(*hexutil.Bytes)
		if !ok || raw == nil {
			continue
		}

		amount, err := unpackBalance(*raw)
		if err != nil {
			o.logger.Warn().Err(err).Str("token", t.Symbol).Msg("token balance")
			continue
		}

		balances[strings.ToUpper(t.Symbol)] = fromBig(amount, t.Decimals)
	}

	return balances, nil
}

func unpackBalance(raw []byte) (*big.Int, error) {
	if len(raw) == 0 {
		return big.NewInt(0), nil
	}

	out, err := erc20().Unpack("balanceOf", raw)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("balanceOf returned no data")
	}

	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf returned %T", out[0])
	}

	return v, nil
}

func fromBig(v *big.Int, decimals int32) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(v, -decimals)
}
