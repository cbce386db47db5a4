package tools

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/lilikoi/lilikoi-go/internal/bridge"
	"github.com/lilikoi/lilikoi-go/internal/chain"
	"github.com/lilikoi/lilikoi-go/internal/dex"
	"github.com/lilikoi/lilikoi-go/internal/tokens"
)

// Deps carries the services the builtin tools are wired to
type Deps struct {
	Chains       *chain.Manager
	ERC20        *chain.ERC20
	Dex          *dex.Service
	BridgeClient *bridge.Client
	BridgeArb    *bridge.ArbSide
	Tokens       *tokens.Registry
	Logger       *logrus.Logger
}

func argString(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func argAddress(args map[string]interface{}, key string) (common.Address, error) {
	s := argString(args, key)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("parameter %q is not a valid address: %q", key, s)
	}
	return common.HexToAddress(s), nil
}

// RegisterBuiltins registers the full tool set against the given services
func RegisterBuiltins(reg *Registry, deps Deps) error {
	builders := []func(*Registry, Deps) error{
		registerBalanceTools,
		registerPriceTools,
		registerTransferTools,
		registerSwapTools,
		registerBridgeTools,
	}
	for _, build := range builders {
		if err := build(reg, deps); err != nil {
			return err
		}
	}
	return nil
}

func registerBalanceTools(reg *Registry, deps Deps) error {
	if err := reg.Register(Definition{
		Name:        "get_edu_balance",
		Description: "Get the native EDU balance of a wallet on EDU Chain.",
		Category:    CategoryInfo,
		ChainID:     tokens.EDUChainID,
		Params: []ParamSpec{
			{Name: "wallet_address", Type: "address", Description: "Wallet to check. Defaults to the connected wallet.", Required: true, Address: true, Injected: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		owner, err := argAddress(args, "wallet_address")
		if err != nil {
			return nil, err
		}
		balance, err := deps.Chains.NativeBalance(ctx, tokens.EDUChainID, owner)
		if err != nil {
			return nil, err
		}
		formatted := chain.FormatUnits(balance, tokens.NativeDecimals)
		return &Result{
			Content: fmt.Sprintf("Wallet %s holds %s EDU on EDU Chain.", owner.Hex(), formatted),
			Data: map[string]interface{}{
				"address":      owner.Hex(),
				"balance":      balance.String(),
				"balanceInEdu": formatted,
			},
		}, nil
	}); err != nil {
		return err
	}

	if err := reg.Register(Definition{
		Name:        "get_token_balance",
		Description: "Get the balance of an ERC20 token for a wallet on EDU Chain. Accepts a token symbol or contract address.",
		Category:    CategoryInfo,
		ChainID:     tokens.EDUChainID,
		Params: []ParamSpec{
			{Name: "token", Type: "token", Description: "Token symbol (e.g. WEDU) or contract address.", Required: true, Token: true},
			{Name: "wallet_address", Type: "address", Description: "Wallet to check. Defaults to the connected wallet.", Required: true, Address: true, Injected: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		owner, err := argAddress(args, "wallet_address")
		if err != nil {
			return nil, err
		}
		tokenArg := argString(args, "token")
		if tokens.IsNative(tokenArg) {
			balance, err := deps.Chains.NativeBalance(ctx, tokens.EDUChainID, owner)
			if err != nil {
				return nil, err
			}
			return &Result{
				Content: fmt.Sprintf("Wallet %s holds %s EDU (native).", owner.Hex(), chain.FormatUnits(balance, tokens.NativeDecimals)),
			}, nil
		}

		token, err := argAddress(args, "token")
		if err != nil {
			return nil, err
		}
		meta, err := deps.ERC20.Metadata(ctx, tokens.EDUChainID, token)
		if err != nil {
			return nil, err
		}
		balance, err := deps.ERC20.BalanceOf(ctx, tokens.EDUChainID, token, owner)
		if err != nil {
			return nil, err
		}
		formatted := chain.FormatUnits(balance, meta.Decimals)
		return &Result{
			Content: fmt.Sprintf("Wallet %s holds %s %s (%s).", owner.Hex(), formatted, meta.Symbol, meta.Name),
			Data: map[string]interface{}{
				"token":            token.Hex(),
				"symbol":           meta.Symbol,
				"balance":          balance.String(),
				"formattedBalance": formatted,
				"decimals":         meta.Decimals,
			},
		}, nil
	}); err != nil {
		return err
	}

	if err := reg.Register(Definition{
		Name:        "get_wallet_overview",
		Description: "Get the native EDU balance plus balances of all well-known tokens for a wallet on EDU Chain.",
		Category:    CategoryInfo,
		ChainID:     tokens.EDUChainID,
		Params: []ParamSpec{
			{Name: "wallet_address", Type: "address", Description: "Wallet to check. Defaults to the connected wallet.", Required: true, Address: true, Injected: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		owner, err := argAddress(args, "wallet_address")
		if err != nil {
			return nil, err
		}

		native, err := deps.Chains.NativeBalance(ctx, tokens.EDUChainID, owner)
		if err != nil {
			return nil, err
		}

		overview := map[string]interface{}{
			"address": owner.Hex(),
			"edu":     chain.FormatUnits(native, tokens.NativeDecimals),
		}
		tokenBalances := make(map[string]string)
		for _, tok := range deps.Tokens.List(tokens.EDUChainID) {
			if tok.Native {
				continue
			}
			balance, err := deps.ERC20.BalanceOf(ctx, tokens.EDUChainID, tok.Address, owner)
			if err != nil {
				deps.Logger.Warnf("Skipping %s in wallet overview: %v", tok.Symbol, err)
				continue
			}
			tokenBalances[tok.Symbol] = chain.FormatUnits(balance, tok.Decimals)
		}
		overview["tokens"] = tokenBalances

		return &Result{Data: overview}, nil
	}); err != nil {
		return err
	}

	return reg.Register(Definition{
		Name:        "check_edu_balance_on_arbitrum",
		Description: "Get the EDU token balance of a wallet on Arbitrum, where EDU must sit before bridging to EDU Chain.",
		Category:    CategoryInfo,
		ChainID:     tokens.ArbitrumID,
		Params: []ParamSpec{
			{Name: "wallet_address", Type: "address", Description: "Wallet to check. Defaults to the connected wallet.", Required: true, Address: true, Injected: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		owner, err := argAddress(args, "wallet_address")
		if err != nil {
			return nil, err
		}
		balance, formatted, err := deps.BridgeArb.EDUBalance(ctx, owner)
		if err != nil {
			return nil, err
		}
		return &Result{
			Content: fmt.Sprintf("Wallet %s holds %s EDU on Arbitrum.", owner.Hex(), formatted),
			Data: map[string]interface{}{
				"address":   owner.Hex(),
				"balance":   balance.String(),
				"formatted": formatted,
				"chainId":   tokens.ArbitrumID,
			},
		}, nil
	})
}

func registerPriceTools(reg *Registry, deps Deps) error {
	if err := reg.Register(Definition{
		Name:        "get_token_price",
		Description: "Get the USD price of a token on EDU Chain from the SailFish subgraph.",
		Category:    CategoryInfo,
		ChainID:     tokens.EDUChainID,
		Params: []ParamSpec{
			{Name: "token", Type: "token", Description: "Token symbol or contract address.", Required: true, Token: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		tokenArg := argString(args, "token")
		var token common.Address
		if tokens.IsNative(tokenArg) {
			token = deps.Dex.WEDU()
		} else {
			var err error
			token, err = argAddress(args, "token")
			if err != nil {
				return nil, err
			}
		}
		price, err := deps.Dex.TokenPrice(ctx, token)
		if err != nil {
			return nil, err
		}
		return &Result{
			Content: fmt.Sprintf("Token %s is trading at $%.6f.", token.Hex(), price),
			Data: map[string]interface{}{
				"token":    token.Hex(),
				"priceUsd": price,
			},
		}, nil
	}); err != nil {
		return err
	}

	return reg.Register(Definition{
		Name:        "get_swap_quote",
		Description: "Quote a token swap on SailFish DEX without executing it. Use EDU for the native coin.",
		Category:    CategoryInfo,
		ChainID:     tokens.EDUChainID,
		Params: []ParamSpec{
			{Name: "token_in", Type: "token", Description: "Input token symbol or address. Use EDU for the native coin.", Required: true, Token: true},
			{Name: "token_out", Type: "token", Description: "Output token symbol or address. Use EDU for the native coin.", Required: true, Token: true},
			{Name: "amount", Type: "amount", Description: "Human-readable input amount, e.g. \"1.5\".", Required: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		tokenIn, err := swapLeg(deps, args, "token_in")
		if err != nil {
			return nil, err
		}
		tokenOut, err := swapLeg(deps, args, "token_out")
		if err != nil {
			return nil, err
		}
		amount := argString(args, "amount")

		inDecimals := tokens.NativeDecimals
		if !tokens.IsNative(argString(args, "token_in")) {
			meta, err := deps.ERC20.Metadata(ctx, tokens.EDUChainID, tokenIn)
			if err != nil {
				return nil, err
			}
			inDecimals = meta.Decimals
		}
		amountIn, err := chain.ParseUnits(amount, inDecimals)
		if err != nil {
			return nil, err
		}

		quote, err := deps.Dex.QuoteExactInputSingle(ctx, tokenIn, tokenOut, amountIn)
		if err != nil {
			return nil, err
		}
		formatted, err := deps.Dex.FormatQuote(ctx, quote)
		if err != nil {
			return nil, err
		}
		return &Result{
			Content: fmt.Sprintf("Swapping %s %s yields about %s %s (minimum %s after slippage, fee tier %d).",
				formatted.AmountIn, formatted.TokenInSymbol, formatted.AmountOut, formatted.TokenOutSymbol,
				formatted.MinimumAmountOut, formatted.Fee),
			Data: formatted,
		}, nil
	})
}

// swapLeg maps a token argument to the address used for routing; the
// native coin routes through WEDU
func swapLeg(deps Deps, args map[string]interface{}, key string) (common.Address, error) {
	raw := argString(args, key)
	if tokens.IsNative(raw) {
		return deps.Dex.WEDU(), nil
	}
	return argAddress(args, key)
}

func registerTransferTools(reg *Registry, deps Deps) error {
	if err := reg.Register(Definition{
		Name:        "send_edu",
		Description: "Prepare a native EDU transfer on EDU Chain for the user to sign.",
		Category:    CategoryAction,
		Action:      "send",
		ChainID:     tokens.EDUChainID,
		Params: []ParamSpec{
			{Name: "recipient", Type: "address", Description: "Recipient wallet address.", Required: true, Address: true, Injected: true},
			{Name: "amount", Type: "amount", Description: "Amount of EDU to send, e.g. \"1.5\".", Required: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		to, err := argAddress(args, "recipient")
		if err != nil {
			return nil, err
		}
		amount := argString(args, "amount")
		amountWei, err := chain.ParseUnits(amount, tokens.NativeDecimals)
		if err != nil {
			return nil, err
		}
		tx := chain.PrepareNativeTransfer(tokens.EDUChainID, to, amountWei,
			fmt.Sprintf("Send %s EDU to %s", amount, to.Hex()))
		return &Result{
			Content:         fmt.Sprintf("Prepared a transfer of %s EDU to %s. Please sign the transaction.", amount, to.Hex()),
			TransactionData: tx,
			TargetChainID:   tokens.EDUChainID,
		}, nil
	}); err != nil {
		return err
	}

	if err := reg.Register(Definition{
		Name:        "send_erc20_token",
		Description: "Prepare an ERC20 token transfer on EDU Chain for the user to sign.",
		Category:    CategoryAction,
		Action:      "send",
		ChainID:     tokens.EDUChainID,
		Params: []ParamSpec{
			{Name: "token", Type: "token", Description: "Token symbol or contract address.", Required: true, Token: true},
			{Name: "recipient", Type: "address", Description: "Recipient wallet address.", Required: true, Address: true, Injected: true},
			{Name: "amount", Type: "amount", Description: "Human-readable token amount.", Required: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		token, err := argAddress(args, "token")
		if err != nil {
			return nil, err
		}
		to, err := argAddress(args, "recipient")
		if err != nil {
			return nil, err
		}
		amount := argString(args, "amount")

		meta, err := deps.ERC20.Metadata(ctx, tokens.EDUChainID, token)
		if err != nil {
			return nil, err
		}
		amountWei, err := chain.ParseUnits(amount, meta.Decimals)
		if err != nil {
			return nil, err
		}

		tx, err := deps.ERC20.PrepareTransfer(tokens.EDUChainID, token, to, amountWei,
			fmt.Sprintf("Send %s %s to %s", amount, meta.Symbol, to.Hex()))
		if err != nil {
			return nil, err
		}
		return &Result{
			Content:         fmt.Sprintf("Prepared a transfer of %s %s to %s. Please sign the transaction.", amount, meta.Symbol, to.Hex()),
			TransactionData: tx,
			TargetChainID:   tokens.EDUChainID,
		}, nil
	}); err != nil {
		return err
	}

	return reg.Register(Definition{
		Name:        "approve_token",
		Description: "Prepare an ERC20 approval on EDU Chain. Omit the amount for an unlimited approval.",
		Category:    CategoryAction,
		Action:      "approve",
		ChainID:     tokens.EDUChainID,
		Params: []ParamSpec{
			{Name: "token", Type: "token", Description: "Token symbol or contract address.", Required: true, Token: true},
			{Name: "spender", Type: "address", Description: "Contract allowed to spend the tokens.", Required: true, Address: true},
			{Name: "amount", Type: "amount", Description: "Amount to approve. Omit for unlimited.", Required: false},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		token, err := argAddress(args, "token")
		if err != nil {
			return nil, err
		}
		spender, err := argAddress(args, "spender")
		if err != nil {
			return nil, err
		}

		amountArg := argString(args, "amount")
		var tx *chain.TxData
		if amountArg == "" {
			tx, err = deps.ERC20.PrepareApprove(tokens.EDUChainID, token, spender, nil,
				fmt.Sprintf("Approve unlimited spending of %s for %s", token.Hex(), spender.Hex()))
		} else {
			meta, metaErr := deps.ERC20.Metadata(ctx, tokens.EDUChainID, token)
			if metaErr != nil {
				return nil, metaErr
			}
			amountWei, parseErr := chain.ParseUnits(amountArg, meta.Decimals)
			if parseErr != nil {
				return nil, parseErr
			}
			tx, err = deps.ERC20.PrepareApprove(tokens.EDUChainID, token, spender, amountWei,
				fmt.Sprintf("Approve %s %s for %s", amountArg, meta.Symbol, spender.Hex()))
		}
		if err != nil {
			return nil, err
		}
		return &Result{
			Content:         fmt.Sprintf("Prepared an approval of %s for spender %s. Please sign the transaction.", token.Hex(), spender.Hex()),
			TransactionData: tx,
			TargetChainID:   tokens.EDUChainID,
		}, nil
	})
}

func registerSwapTools(reg *Registry, deps Deps) error {
	if err := reg.Register(Definition{
		Name:        "swap_tokens",
		Description: "Prepare an ERC20-to-ERC20 swap on SailFish DEX. The router must already be approved for the input token.",
		Category:    CategoryAction,
		Action:      "swap",
		ChainID:     tokens.EDUChainID,
		Params: []ParamSpec{
			{Name: "token_in", Type: "token", Description: "Input token symbol or address.", Required: true, Token: true},
			{Name: "token_out", Type: "token", Description: "Output token symbol or address.", Required: true, Token: true},
			{Name: "amount", Type: "amount", Description: "Human-readable input amount.", Required: true},
			{Name: "recipient", Type: "address", Description: "Recipient of the output tokens. Defaults to the connected wallet.", Required: true, Address: true, Injected: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		tokenIn, err := argAddress(args, "token_in")
		if err != nil {
			return nil, err
		}
		tokenOut, err := argAddress(args, "token_out")
		if err != nil {
			return nil, err
		}
		recipient, err := argAddress(args, "recipient")
		if err != nil {
			return nil, err
		}

		tx, quote, err := deps.Dex.PrepareSwapTokensTx(ctx, tokenIn, tokenOut, argString(args, "amount"), recipient)
		if err != nil {
			return nil, err
		}
		return &Result{
			Content:         fmt.Sprintf("Prepared a swap via SailFish with fee tier %d. Please sign the transaction.", quote.Fee),
			TransactionData: tx,
			TargetChainID:   tokens.EDUChainID,
		}, nil
	}); err != nil {
		return err
	}

	if err := reg.Register(Definition{
		Name:        "swap_edu_for_tokens",
		Description: "Prepare a swap of native EDU into an ERC20 token on SailFish DEX.",
		Category:    CategoryAction,
		Action:      "swap",
		ChainID:     tokens.EDUChainID,
		Params: []ParamSpec{
			{Name: "token_out", Type: "token", Description: "Output token symbol or address.", Required: true, Token: true},
			{Name: "amount", Type: "amount", Description: "Amount of EDU to swap.", Required: true},
			{Name: "recipient", Type: "address", Description: "Recipient of the output tokens. Defaults to the connected wallet.", Required: true, Address: true, Injected: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		tokenOut, err := argAddress(args, "token_out")
		if err != nil {
			return nil, err
		}
		recipient, err := argAddress(args, "recipient")
		if err != nil {
			return nil, err
		}

		tx, quote, err := deps.Dex.PrepareSwapEduForTokensTx(ctx, tokenOut, argString(args, "amount"), recipient)
		if err != nil {
			return nil, err
		}
		return &Result{
			Content:         fmt.Sprintf("Prepared an EDU swap via SailFish with fee tier %d. Please sign the transaction.", quote.Fee),
			TransactionData: tx,
			TargetChainID:   tokens.EDUChainID,
		}, nil
	}); err != nil {
		return err
	}

	if err := reg.Register(Definition{
		Name:        "swap_tokens_for_edu",
		Description: "Prepare a swap of an ERC20 token into native EDU on SailFish DEX. The router must already be approved for the input token.",
		Category:    CategoryAction,
		Action:      "swap",
		ChainID:     tokens.EDUChainID,
		Params: []ParamSpec{
			{Name: "token_in", Type: "token", Description: "Input token symbol or address.", Required: true, Token: true},
			{Name: "amount", Type: "amount", Description: "Human-readable input amount.", Required: true},
			{Name: "recipient", Type: "address", Description: "Recipient of the EDU. Defaults to the connected wallet.", Required: true, Address: true, Injected: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		tokenIn, err := argAddress(args, "token_in")
		if err != nil {
			return nil, err
		}
		recipient, err := argAddress(args, "recipient")
		if err != nil {
			return nil, err
		}

		tx, quote, err := deps.Dex.PrepareSwapTokensForEduTx(ctx, tokenIn, argString(args, "amount"), recipient)
		if err != nil {
			return nil, err
		}
		return &Result{
			Content:         fmt.Sprintf("Prepared a swap into native EDU with fee tier %d. Please sign the transaction.", quote.Fee),
			TransactionData: tx,
			TargetChainID:   tokens.EDUChainID,
		}, nil
	}); err != nil {
		return err
	}

	if err := reg.Register(Definition{
		Name:        "wrap_edu",
		Description: "Prepare a deposit of native EDU into the wrapped WEDU token.",
		Category:    CategoryAction,
		Action:      "wrap",
		ChainID:     tokens.EDUChainID,
		Params: []ParamSpec{
			{Name: "amount", Type: "amount", Description: "Amount of EDU to wrap.", Required: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		tx, err := deps.Dex.PrepareWrapTx(argString(args, "amount"))
		if err != nil {
			return nil, err
		}
		return &Result{
			Content:         "Prepared a wrap of EDU into WEDU. Please sign the transaction.",
			TransactionData: tx,
			TargetChainID:   tokens.EDUChainID,
		}, nil
	}); err != nil {
		return err
	}

	return reg.Register(Definition{
		Name:        "unwrap_wedu",
		Description: "Prepare a withdrawal of WEDU back into native EDU.",
		Category:    CategoryAction,
		Action:      "unwrap",
		ChainID:     tokens.EDUChainID,
		Params: []ParamSpec{
			{Name: "amount", Type: "amount", Description: "Amount of WEDU to unwrap.", Required: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		tx, err := deps.Dex.PrepareUnwrapTx(argString(args, "amount"))
		if err != nil {
			return nil, err
		}
		return &Result{
			Content:         "Prepared an unwrap of WEDU into EDU. Please sign the transaction.",
			TransactionData: tx,
			TargetChainID:   tokens.EDUChainID,
		}, nil
	})
}

func registerBridgeTools(reg *Registry, deps Deps) error {
	backendTool := func(name string, action bridge.Action, description string) error {
		return reg.Register(Definition{
			Name:        name,
			Description: description,
			Category:    CategoryBridge,
			Action:      string(action),
			ChainID:     tokens.ArbitrumID,
			Params: []ParamSpec{
				{Name: "wallet_address", Type: "address", Description: "Wallet performing the bridge operation. Defaults to the connected wallet.", Required: true, Address: true, Injected: true},
				{Name: "amount", Type: "amount", Description: "Amount of EDU.", Required: true},
			},
		}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
			owner, err := argAddress(args, "wallet_address")
			if err != nil {
				return nil, err
			}
			amount := argString(args, "amount")

			tx, err := deps.BridgeClient.Prepare(ctx, action, owner.Hex(), amount)
			if err != nil {
				return nil, err
			}
			return &Result{
				Content:         fmt.Sprintf("Prepared a bridge %s of %s EDU. Please sign the transaction.", action, amount),
				TransactionData: tx,
				TargetChainID:   tx.ChainID,
			}, nil
		})
	}

	if err := backendTool("bridge_approve", bridge.ActionApprove,
		"Approve EDU tokens for bridging via the bridge backend. Required before deposit or withdraw."); err != nil {
		return err
	}
	if err := backendTool("bridge_deposit", bridge.ActionDeposit,
		"Deposit EDU tokens from Arbitrum to EDU Chain via the bridge backend."); err != nil {
		return err
	}
	if err := backendTool("bridge_withdraw", bridge.ActionWithdraw,
		"Withdraw EDU tokens from EDU Chain back to Arbitrum via the bridge backend."); err != nil {
		return err
	}

	if err := reg.Register(Definition{
		Name:        "check_bridge_allowance",
		Description: "Check whether the wallet has approved enough EDU on Arbitrum for the bridge deposit contract.",
		Category:    CategoryInfo,
		ChainID:     tokens.ArbitrumID,
		Params: []ParamSpec{
			{Name: "wallet_address", Type: "address", Description: "Wallet to check. Defaults to the connected wallet.", Required: true, Address: true, Injected: true},
			{Name: "amount", Type: "amount", Description: "Amount of EDU to bridge.", Required: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		owner, err := argAddress(args, "wallet_address")
		if err != nil {
			return nil, err
		}
		amount := argString(args, "amount")

		enough, allowance, err := deps.BridgeArb.HasAllowance(ctx, owner, amount)
		if err != nil {
			return nil, err
		}
		verdict := "is sufficient"
		if !enough {
			verdict = "is NOT sufficient; an approval is needed first"
		}
		return &Result{
			Content: fmt.Sprintf("Bridge allowance for %s %s to move %s EDU.", owner.Hex(), verdict, amount),
			Data: map[string]interface{}{
				"address":   owner.Hex(),
				"allowance": allowance.String(),
				"enough":    enough,
			},
		}, nil
	}); err != nil {
		return err
	}

	if err := reg.Register(Definition{
		Name:        "approve_edu_on_arbitrum",
		Description: "Prepare an unlimited approval of EDU on Arbitrum for the bridge deposit contract.",
		Category:    CategoryBridge,
		Action:      "approve",
		ChainID:     tokens.ArbitrumID,
		Params:      []ParamSpec{},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		tx, err := deps.BridgeArb.PrepareApprove()
		if err != nil {
			return nil, err
		}
		return &Result{
			Content:         "Prepared an EDU approval on Arbitrum for the bridge. Please sign the transaction on Arbitrum.",
			TransactionData: tx,
			TargetChainID:   tokens.ArbitrumID,
		}, nil
	}); err != nil {
		return err
	}

	return reg.Register(Definition{
		Name:        "bridge_edu_to_educhain",
		Description: "Prepare a deposit that bridges EDU from Arbitrum to EDU Chain. EDU must be approved on Arbitrum first.",
		Category:    CategoryBridge,
		Action:      "deposit",
		ChainID:     tokens.ArbitrumID,
		Params: []ParamSpec{
			{Name: "amount", Type: "amount", Description: "Amount of EDU to bridge.", Required: true},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		amount := argString(args, "amount")
		tx, err := deps.BridgeArb.PrepareDeposit(ctx, amount)
		if err != nil {
			return nil, err
		}
		return &Result{
			Content:         fmt.Sprintf("Prepared a bridge deposit of %s EDU from Arbitrum to EDU Chain. Please sign the transaction on Arbitrum.", amount),
			TransactionData: tx,
			TargetChainID:   tokens.ArbitrumID,
		}, nil
	})
}
