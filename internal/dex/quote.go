package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lilikoi/lilikoi-go/internal/chain"
	"github.com/lilikoi/lilikoi-go/internal/tokens"
)

type quoteExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	AmountIn          *big.Int
	Fee               *big.Int
	SqrtPriceLimitX96 *big.Int
}

// Quote is the result of probing the QuoterV2 across fee tiers
type Quote struct {
	TokenIn      common.Address `json:"tokenIn"`
	TokenOut     common.Address `json:"tokenOut"`
	AmountIn     *big.Int       `json:"-"`
	AmountOut    *big.Int       `json:"-"`
	AmountOutMin *big.Int       `json:"-"`
	Fee          int64          `json:"fee"`
}

// QuoteExactInputSingle asks the QuoterV2 for the output of a single-hop
// swap, probing every configured fee tier and keeping the best one.
// The quoter is invoked through eth_call so no transaction is sent.
func (s *Service) QuoteExactInputSingle(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) (*Quote, error) {
	client, err := s.manager.Client(ctx, tokens.EDUChainID)
	if err != nil {
		return nil, err
	}

	feeTiers := s.cfg.FeeTiers
	if len(feeTiers) == 0 {
		feeTiers = []int64{100, 500, 3000, 10000}
	}

	var best *Quote
	for _, fee := range feeTiers {
		calldata, err := s.quoterABI.Pack("quoteExactInputSingle", quoteExactInputSingleParams{
			TokenIn:           tokenIn,
			TokenOut:          tokenOut,
			AmountIn:          amountIn,
			Fee:               big.NewInt(fee),
			SqrtPriceLimitX96: big.NewInt(0),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode quote call: %w", err)
		}

		result, err := client.CallContract(ctx, ethereum.CallMsg{
			To:   &s.quoter,
			Data: calldata,
		}, nil)
		if err != nil {
			// Pools don't exist for every fee tier, keep probing
			s.logger.Debugf("No pool for %s/%s at fee %d: %v", tokenIn.Hex(), tokenOut.Hex(), fee, err)
			continue
		}

		outputs, err := s.quoterABI.Unpack("quoteExactInputSingle", result)
		if err != nil {
			s.logger.Debugf("Failed to decode quote at fee %d: %v", fee, err)
			continue
		}
		amountOut := outputs[0].(*big.Int)
		if amountOut.Sign() <= 0 {
			continue
		}

		if best == nil || amountOut.Cmp(best.AmountOut) > 0 {
			best = &Quote{
				TokenIn:   tokenIn,
				TokenOut:  tokenOut,
				AmountIn:  amountIn,
				AmountOut: amountOut,
				Fee:       fee,
			}
		}
	}

	if best == nil {
		return nil, fmt.Errorf("no liquidity pool found for %s/%s", tokenIn.Hex(), tokenOut.Hex())
	}

	best.AmountOutMin = s.applySlippage(best.AmountOut, s.cfg.SlippagePercent)
	return best, nil
}

// FormattedQuote resolves token decimals and returns a display-ready view
// of a quote for tool results
type FormattedQuote struct {
	TokenIn            string `json:"tokenIn"`
	TokenOut           string `json:"tokenOut"`
	AmountIn           string `json:"amountIn"`
	AmountOut          string `json:"amountOut"`
	MinimumAmountOut   string `json:"minimumAmountOut"`
	Fee                int64  `json:"fee"`
	TokenInSymbol      string `json:"tokenInSymbol,omitempty"`
	TokenOutSymbol     string `json:"tokenOutSymbol,omitempty"`
	SlippagePercentage string `json:"slippagePercentage"`
}

// FormatQuote renders a quote using on-chain token metadata
func (s *Service) FormatQuote(ctx context.Context, quote *Quote) (*FormattedQuote, error) {
	inMeta, err := s.erc20.Metadata(ctx, tokens.EDUChainID, quote.TokenIn)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch input token metadata: %w", err)
	}
	outMeta, err := s.erc20.Metadata(ctx, tokens.EDUChainID, quote.TokenOut)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch output token metadata: %w", err)
	}

	return &FormattedQuote{
		TokenIn:            quote.TokenIn.Hex(),
		TokenOut:           quote.TokenOut.Hex(),
		AmountIn:           chain.FormatUnits(quote.AmountIn, inMeta.Decimals),
		AmountOut:          chain.FormatUnits(quote.AmountOut, outMeta.Decimals),
		MinimumAmountOut:   chain.FormatUnits(quote.AmountOutMin, outMeta.Decimals),
		Fee:                quote.Fee,
		TokenInSymbol:      inMeta.Symbol,
		TokenOutSymbol:     outMeta.Symbol,
		SlippagePercentage: fmt.Sprintf("%.2f%%", s.cfg.SlippagePercent),
	}, nil
}
