package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/lilikoi/lilikoi-go/internal/chain"
	"github.com/lilikoi/lilikoi-go/internal/tokens"
)

type exactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

// PrepareSwapTokensTx prepares an ERC20-to-ERC20 single-hop swap.
// The caller must have approved the router for tokenIn beforehand.
func (s *Service) PrepareSwapTokensTx(ctx context.Context, tokenIn, tokenOut common.Address, amountIn string, recipient common.Address) (*chain.TxData, *Quote, error) {
	inMeta, err := s.erc20.Metadata(ctx, tokens.EDUChainID, tokenIn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch input token metadata: %w", err)
	}
	amountInWei, err := chain.ParseUnits(amountIn, inMeta.Decimals)
	if err != nil {
		return nil, nil, err
	}

	quote, err := s.QuoteExactInputSingle(ctx, tokenIn, tokenOut, amountInWei)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.routerABI.Pack("exactInputSingle", exactInputSingleParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		Fee:               big.NewInt(quote.Fee),
		Recipient:         recipient,
		Deadline:          s.deadline(),
		AmountIn:          amountInWei,
		AmountOutMinimum:  quote.AmountOutMin,
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode swap: %w", err)
	}

	return &chain.TxData{
		To:          s.router.Hex(),
		Data:        hexutil.Encode(data),
		Value:       "0",
		ChainID:     tokens.EDUChainID,
		Description: fmt.Sprintf("Swap %s %s for %s", amountIn, inMeta.Symbol, tokenOut.Hex()),
	}, quote, nil
}

// PrepareSwapEduForTokensTx prepares a native-EDU-to-ERC20 swap. The EDU
// amount rides in the transaction value and the router wraps it to WEDU.
func (s *Service) PrepareSwapEduForTokensTx(ctx context.Context, tokenOut common.Address, amountIn string, recipient common.Address) (*chain.TxData, *Quote, error) {
	amountInWei, err := chain.ParseUnits(amountIn, tokens.NativeDecimals)
	if err != nil {
		return nil, nil, err
	}

	quote, err := s.QuoteExactInputSingle(ctx, s.wedu, tokenOut, amountInWei)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.routerABI.Pack("exactInputSingle", exactInputSingleParams{
		TokenIn:           s.wedu,
		TokenOut:          tokenOut,
		Fee:               big.NewInt(quote.Fee),
		Recipient:         recipient,
		Deadline:          s.deadline(),
		AmountIn:          amountInWei,
		AmountOutMinimum:  quote.AmountOutMin,
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode swap: %w", err)
	}

	return &chain.TxData{
		To:          s.router.Hex(),
		Data:        hexutil.Encode(data),
		Value:       amountInWei.String(),
		ChainID:     tokens.EDUChainID,
		Description: fmt.Sprintf("Swap %s EDU for %s", amountIn, tokenOut.Hex()),
	}, quote, nil
}

// PrepareSwapTokensForEduTx prepares an ERC20-to-native-EDU swap. The swap
// outputs WEDU to the router, then unwrapWETH9 pays out native EDU to the
// recipient; both calls are batched in a single multicall.
func (s *Service) PrepareSwapTokensForEduTx(ctx context.Context, tokenIn common.Address, amountIn string, recipient common.Address) (*chain.TxData, *Quote, error) {
	inMeta, err := s.erc20.Metadata(ctx, tokens.EDUChainID, tokenIn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch input token metadata: %w", err)
	}
	amountInWei, err := chain.ParseUnits(amountIn, inMeta.Decimals)
	if err != nil {
		return nil, nil, err
	}

	quote, err := s.QuoteExactInputSingle(ctx, tokenIn, s.wedu, amountInWei)
	if err != nil {
		return nil, nil, err
	}

	// Intermediate WEDU stays with the router until it is unwrapped
	swapCalldata, err := s.routerABI.Pack("exactInputSingle", exactInputSingleParams{
		TokenIn:           tokenIn,
		TokenOut:          s.wedu,
		Fee:               big.NewInt(quote.Fee),
		Recipient:         s.router,
		Deadline:          s.deadline(),
		AmountIn:          amountInWei,
		AmountOutMinimum:  quote.AmountOutMin,
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode swap: %w", err)
	}

	unwrapCalldata, err := s.routerABI.Pack("unwrapWETH9", quote.AmountOutMin, recipient)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode unwrap: %w", err)
	}

	multicallData, err := s.routerABI.Pack("multicall", [][]byte{swapCalldata, unwrapCalldata})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode multicall: %w", err)
	}

	return &chain.TxData{
		To:          s.router.Hex(),
		Data:        hexutil.Encode(multicallData),
		Value:       "0",
		ChainID:     tokens.EDUChainID,
		Description: fmt.Sprintf("Swap %s %s for EDU", amountIn, inMeta.Symbol),
	}, quote, nil
}

// PrepareWrapTx prepares a native EDU deposit into the WEDU contract
func (s *Service) PrepareWrapTx(amountIn string) (*chain.TxData, error) {
	amountInWei, err := chain.ParseUnits(amountIn, tokens.NativeDecimals)
	if err != nil {
		return nil, err
	}

	data, err := s.weduABI.Pack("deposit")
	if err != nil {
		return nil, fmt.Errorf("failed to encode deposit: %w", err)
	}

	return &chain.TxData{
		To:          s.wedu.Hex(),
		Data:        hexutil.Encode(data),
		Value:       amountInWei.String(),
		ChainID:     tokens.EDUChainID,
		Description: fmt.Sprintf("Wrap %s EDU into WEDU", amountIn),
	}, nil
}

// PrepareUnwrapTx prepares a WEDU withdrawal back to native EDU
func (s *Service) PrepareUnwrapTx(amountIn string) (*chain.TxData, error) {
	amountInWei, err := chain.ParseUnits(amountIn, tokens.NativeDecimals)
	if err != nil {
		return nil, err
	}

	data, err := s.weduABI.Pack("withdraw", amountInWei)
	if err != nil {
		return nil, fmt.Errorf("failed to encode withdraw: %w", err)
	}

	return &chain.TxData{
		To:          s.wedu.Hex(),
		Data:        hexutil.Encode(data),
		Value:       "0",
		ChainID:     tokens.EDUChainID,
		Description: fmt.Sprintf("Unwrap %s WEDU into EDU", amountIn),
	}, nil
}

// PrepareApproveRouterTx prepares an unlimited router approval for tokenIn
func (s *Service) PrepareApproveRouterTx(tokenIn common.Address) (*chain.TxData, error) {
	return s.erc20.PrepareApprove(tokens.EDUChainID, tokenIn, s.router, nil,
		"Approve SailFish router to spend tokens")
}
