package bridge

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"

	"github.com/lilikoi/lilikoi-go/internal/chain"
	"github.com/lilikoi/lilikoi-go/internal/config"
	"github.com/lilikoi/lilikoi-go/internal/tokens"
)

const arbBridgeABIJSON = `[
	{"type":"function","name":"depositERC20","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]}
]`

// ArbSide prepares the Arbitrum leg of the EDU bridge: approving the
// bridge contract and depositing EDU for transfer to EDU Chain.
type ArbSide struct {
	erc20     *chain.ERC20
	logger    *logrus.Logger
	token     common.Address
	deposit   common.Address
	bridgeABI abi.ABI
}

// NewArbSide creates the Arbitrum-side bridge helper
func NewArbSide(erc20 *chain.ERC20, cfg config.BridgeConfig, logger *logrus.Logger) (*ArbSide, error) {
	if !common.IsHexAddress(cfg.EDUTokenArb) || !common.IsHexAddress(cfg.DepositContract) {
		return nil, fmt.Errorf("bridge contract addresses are not valid hex addresses")
	}

	parsed, err := abi.JSON(strings.NewReader(arbBridgeABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse bridge ABI: %w", err)
	}

	return &ArbSide{
		erc20:     erc20,
		logger:    logger,
		token:     common.HexToAddress(cfg.EDUTokenArb),
		deposit:   common.HexToAddress(cfg.DepositContract),
		bridgeABI: parsed,
	}, nil
}

// tokenDecimals fetches the EDU token decimals, falling back to 18 when the
// RPC lookup fails
func (a *ArbSide) tokenDecimals(ctx context.Context) uint8 {
	meta, err := a.erc20.Metadata(ctx, tokens.ArbitrumID, a.token)
	if err != nil {
		a.logger.Warnf("Failed to fetch EDU decimals on Arbitrum, assuming 18: %v", err)
		return 18
	}
	return meta.Decimals
}

// EDUBalance returns the EDU token balance of an address on Arbitrum
func (a *ArbSide) EDUBalance(ctx context.Context, owner common.Address) (*big.Int, string, error) {
	balance, err := a.erc20.BalanceOf(ctx, tokens.ArbitrumID, a.token, owner)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch EDU balance on Arbitrum: %w", err)
	}
	return balance, chain.FormatUnits(balance, a.tokenDecimals(ctx)), nil
}

// HasAllowance reports whether the owner has approved at least amount EDU
// for the bridge deposit contract
func (a *ArbSide) HasAllowance(ctx context.Context, owner common.Address, amount string) (bool, *big.Int, error) {
	decimals := a.tokenDecimals(ctx)
	required, err := chain.ParseUnits(amount, decimals)
	if err != nil {
		return false, nil, err
	}

	allowance, err := a.erc20.Allowance(ctx, tokens.ArbitrumID, a.token, owner, a.deposit)
	if err != nil {
		return false, nil, fmt.Errorf("failed to fetch bridge allowance: %w", err)
	}

	return allowance.Cmp(required) >= 0, allowance, nil
}

// PrepareApprove builds an unlimited EDU approval for the bridge deposit
// contract on Arbitrum
func (a *ArbSide) PrepareApprove() (*chain.TxData, error) {
	return a.erc20.PrepareApprove(tokens.ArbitrumID, a.token, a.deposit, nil,
		"Approve EDU tokens on Arbitrum for bridging to EDU Chain")
}

// PrepareDeposit builds a depositERC20 call that moves EDU from Arbitrum
// to EDU Chain
func (a *ArbSide) PrepareDeposit(ctx context.Context, amount string) (*chain.TxData, error) {
	decimals := a.tokenDecimals(ctx)
	amountWei, err := chain.ParseUnits(amount, decimals)
	if err != nil {
		return nil, err
	}

	data, err := a.bridgeABI.Pack("depositERC20", amountWei)
	if err != nil {
		return nil, fmt.Errorf("failed to encode depositERC20: %w", err)
	}

	return &chain.TxData{
		To:          a.deposit.Hex(),
		Data:        hexutil.Encode(data),
		Value:       "0",
		ChainID:     tokens.ArbitrumID,
		Description: fmt.Sprintf("Bridge %s EDU from Arbitrum to EDU Chain", amount),
	}, nil
}
