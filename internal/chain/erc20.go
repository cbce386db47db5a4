package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"
)

const erc20ABIJSON = `[
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

// MaxUint256 is used for unlimited approvals
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// TokenMetadata holds the immutable ERC20 descriptor fields
type TokenMetadata struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

// ERC20 provides read access and transaction preparation for ERC20 tokens
// across all configured chains
type ERC20 struct {
	manager *Manager
	cache   *metadataCache
	logger  *logrus.Logger
	abi     abi.ABI
}

// NewERC20 creates the ERC20 helper backed by the chain manager
func NewERC20(manager *Manager, logger *logrus.Logger) (*ERC20, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	return &ERC20{
		manager: manager,
		cache:   newMetadataCache(500, 10*time.Minute),
		logger:  logger,
		abi:     parsed,
	}, nil
}

func (e *ERC20) bound(ctx context.Context, chainID int64, token common.Address) (*bind.BoundContract, error) {
	client, err := e.manager.Client(ctx, chainID)
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(token, e.abi, client, client, client), nil
}

// Metadata fetches symbol, name and decimals for a token, with caching
func (e *ERC20) Metadata(ctx context.Context, chainID int64, token common.Address) (TokenMetadata, error) {
	cacheKey := fmt.Sprintf("%d:%s", chainID, token.Hex())
	if meta, ok := e.cache.get(cacheKey); ok {
		return meta, nil
	}

	contract, err := e.bound(ctx, chainID, token)
	if err != nil {
		return TokenMetadata{}, err
	}
	call := &bind.CallOpts{Context: ctx}

	var symbolOut []interface{}
	if err := contract.Call(call, &symbolOut, "symbol"); err != nil {
		return TokenMetadata{}, fmt.Errorf("failed to fetch symbol for %s: %w", token.Hex(), err)
	}
	var nameOut []interface{}
	if err := contract.Call(call, &nameOut, "name"); err != nil {
		return TokenMetadata{}, fmt.Errorf("failed to fetch name for %s: %w", token.Hex(), err)
	}
	var decimalsOut []interface{}
	if err := contract.Call(call, &decimalsOut, "decimals"); err != nil {
		return TokenMetadata{}, fmt.Errorf("failed to fetch decimals for %s: %w", token.Hex(), err)
	}

	meta := TokenMetadata{
		Symbol:   symbolOut[0].(string),
		Name:     nameOut[0].(string),
		Decimals: decimalsOut[0].(uint8),
	}
	e.cache.set(cacheKey, meta)
	return meta, nil
}

// BalanceOf returns the token balance of an owner in base units
func (e *ERC20) BalanceOf(ctx context.Context, chainID int64, token, owner common.Address) (*big.Int, error) {
	contract, err := e.bound(ctx, chainID, token)
	if err != nil {
		return nil, err
	}

	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", owner); err != nil {
		return nil, fmt.Errorf("failed to fetch token balance: %w", err)
	}
	return out[0].(*big.Int), nil
}

// Allowance returns the spender allowance granted by owner in base units
func (e *ERC20) Allowance(ctx context.Context, chainID int64, token, owner, spender common.Address) (*big.Int, error) {
	contract, err := e.bound(ctx, chainID, token)
	if err != nil {
		return nil, err
	}

	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "allowance", owner, spender); err != nil {
		return nil, fmt.Errorf("failed to fetch allowance: %w", err)
	}
	return out[0].(*big.Int), nil
}

// PrepareTransfer builds an unsigned ERC20 transfer transaction
func (e *ERC20) PrepareTransfer(chainID int64, token, to common.Address, amount *big.Int, description string) (*TxData, error) {
	data, err := e.abi.Pack("transfer", to, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transfer: %w", err)
	}

	return &TxData{
		To:          token.Hex(),
		Data:        hexutil.Encode(data),
		Value:       "0",
		ChainID:     chainID,
		Description: description,
	}, nil
}

// PrepareApprove builds an unsigned ERC20 approve transaction.
// A nil amount approves MaxUint256.
func (e *ERC20) PrepareApprove(chainID int64, token, spender common.Address, amount *big.Int, description string) (*TxData, error) {
	if amount == nil {
		amount = MaxUint256
	}

	data, err := e.abi.Pack("approve", spender, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to encode approve: %w", err)
	}

	return &TxData{
		To:          token.Hex(),
		Data:        hexutil.Encode(data),
		Value:       "0",
		ChainID:     chainID,
		Description: description,
	}, nil
}

// PrepareNativeTransfer builds an unsigned native coin transfer
func PrepareNativeTransfer(chainID int64, to common.Address, amountWei *big.Int, description string) *TxData {
	return &TxData{
		To:          to.Hex(),
		Data:        "0x",
		Value:       amountWei.String(),
		ChainID:     chainID,
		Description: description,
	}
}
