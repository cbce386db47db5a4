package dex

import (
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/lilikoi/lilikoi-go/internal/chain"
	"github.com/lilikoi/lilikoi-go/internal/config"
)

// SailFish V3 periphery ABIs, trimmed to the entry points the service uses
const swapRouterABIJSON = `[
	{"type":"function","name":"exactInputSingle","stateMutability":"payable","inputs":[{"name":"params","type":"tuple","components":[{"name":"tokenIn","type":"address"},{"name":"tokenOut","type":"address"},{"name":"fee","type":"uint24"},{"name":"recipient","type":"address"},{"name":"deadline","type":"uint256"},{"name":"amountIn","type":"uint256"},{"name":"amountOutMinimum","type":"uint256"},{"name":"sqrtPriceLimitX96","type":"uint160"}]}],"outputs":[{"name":"amountOut","type":"uint256"}]},
	{"type":"function","name":"exactInput","stateMutability":"payable","inputs":[{"name":"params","type":"tuple","components":[{"name":"path","type":"bytes"},{"name":"recipient","type":"address"},{"name":"deadline","type":"uint256"},{"name":"amountIn","type":"uint256"},{"name":"amountOutMinimum","type":"uint256"}]}],"outputs":[{"name":"amountOut","type":"uint256"}]},
	{"type":"function","name":"unwrapWETH9","stateMutability":"payable","inputs":[{"name":"amountMinimum","type":"uint256"},{"name":"recipient","type":"address"}],"outputs":[]},
	{"type":"function","name":"multicall","stateMutability":"payable","inputs":[{"name":"data","type":"bytes[]"}],"outputs":[{"name":"results","type":"bytes[]"}]}
]`

const quoterABIJSON = `[
	{"type":"function","name":"quoteExactInputSingle","stateMutability":"nonpayable","inputs":[{"name":"params","type":"tuple","components":[{"name":"tokenIn","type":"address"},{"name":"tokenOut","type":"address"},{"name":"amountIn","type":"uint256"},{"name":"fee","type":"uint24"},{"name":"sqrtPriceLimitX96","type":"uint160"}]}],"outputs":[{"name":"amountOut","type":"uint256"},{"name":"sqrtPriceX96After","type":"uint160"},{"name":"initializedTicksCrossed","type":"uint32"},{"name":"gasEstimate","type":"uint256"}]}
]`

const weduABIJSON = `[
	{"type":"function","name":"deposit","stateMutability":"payable","inputs":[],"outputs":[]},
	{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"wad","type":"uint256"}],"outputs":[]}
]`

// Service prepares SailFish DEX quotes and swap transactions on EDU Chain
type Service struct {
	manager *chain.Manager
	erc20   *chain.ERC20
	cfg     config.DexConfig
	logger  *logrus.Logger

	routerABI abi.ABI
	quoterABI abi.ABI
	weduABI   abi.ABI

	router common.Address
	quoter common.Address
	wedu   common.Address

	httpClient *http.Client
}

// NewService creates the DEX service from the dex configuration section
func NewService(manager *chain.Manager, erc20 *chain.ERC20, cfg config.DexConfig, logger *logrus.Logger) (*Service, error) {
	routerABI, err := abi.JSON(strings.NewReader(swapRouterABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse swap router ABI: %w", err)
	}
	quoterABI, err := abi.JSON(strings.NewReader(quoterABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse quoter ABI: %w", err)
	}
	weduABI, err := abi.JSON(strings.NewReader(weduABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse WEDU ABI: %w", err)
	}

	if !common.IsHexAddress(cfg.SwapRouter) || !common.IsHexAddress(cfg.QuoterV2) || !common.IsHexAddress(cfg.WEDU) {
		return nil, fmt.Errorf("dex contract addresses are not valid hex addresses")
	}

	return &Service{
		manager:    manager,
		erc20:      erc20,
		cfg:        cfg,
		logger:     logger,
		routerABI:  routerABI,
		quoterABI:  quoterABI,
		weduABI:    weduABI,
		router:     common.HexToAddress(cfg.SwapRouter),
		quoter:     common.HexToAddress(cfg.QuoterV2),
		wedu:       common.HexToAddress(cfg.WEDU),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// WEDU returns the wrapped EDU token address
func (s *Service) WEDU() common.Address {
	return s.wedu
}

// applySlippage reduces the quoted output by the configured slippage
// tolerance: amountOut * (10000 - bps) / 10000
func (s *Service) applySlippage(amountOut *big.Int, slippagePercent float64) *big.Int {
	bps := int64(slippagePercent * 100)
	if bps < 0 {
		bps = 0
	}
	if bps > 10000 {
		bps = 10000
	}
	factor := big.NewInt(10000 - bps)
	out := new(big.Int).Mul(amountOut, factor)
	return out.Div(out, big.NewInt(10000))
}

func (s *Service) deadline() *big.Int {
	minutes := s.cfg.DeadlineMinutes
	if minutes <= 0 {
		minutes = 20
	}
	return big.NewInt(time.Now().Unix() + int64(minutes)*60)
}
