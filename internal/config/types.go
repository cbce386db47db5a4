package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/lilikoi/lilikoi-go/pkg/utils"
)

// AppConfig is the main configuration structure for the application
type AppConfig struct {
	Agent   AgentConfig                   `yaml:"agent" json:"agent"`
	HTTP    HTTPConfig                    `yaml:"http" json:"http"`
	LLM     LLMConfig                     `yaml:"llm" json:"llm"`
	Chains  ChainsConfig                  `yaml:"chains" json:"chains"`
	Dex     DexConfig                     `yaml:"dex" json:"dex"`
	Bridge  BridgeConfig                  `yaml:"bridge" json:"bridge"`
	Agents  map[string]AgentProfileConfig `yaml:"agents" json:"agents"`
	Logging utils.LogConfig               `yaml:"logging" json:"logging"`
}

// AgentConfig contains basic service information
type AgentConfig struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// HTTPConfig contains HTTP server configuration
type HTTPConfig struct {
	Enabled        bool     `yaml:"enabled" json:"enabled"`
	Host           string   `yaml:"host" json:"host"`
	Port           int      `yaml:"port" json:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}

// LLMConfig contains model provider configuration for the orchestration loop
type LLMConfig struct {
	Provider      string  `yaml:"provider" json:"provider"`
	Model         string  `yaml:"model" json:"model"`
	APIKey        string  `yaml:"api_key" json:"api_key"`
	BaseURL       string  `yaml:"base_url" json:"base_url"`
	MaxTokens     int     `yaml:"max_tokens" json:"max_tokens"`
	Temperature   float32 `yaml:"temperature" json:"temperature"`
	MaxIterations int     `yaml:"max_iterations" json:"max_iterations"`
	TimeoutSec    int     `yaml:"timeout_sec" json:"timeout_sec"`
}

// ChainConfig describes a single EVM chain endpoint
type ChainConfig struct {
	Name    string `yaml:"name" json:"name"`
	ChainID int64  `yaml:"chain_id" json:"chain_id"`
	RPCURL  string `yaml:"rpc_url" json:"rpc_url"`
}

// ChainsConfig lists the chains the service can reach
type ChainsConfig struct {
	Default   int64         `yaml:"default" json:"default"`
	Endpoints []ChainConfig `yaml:"endpoints" json:"endpoints"`
}

// DexConfig contains SailFish V3 contract addresses and swap defaults
type DexConfig struct {
	SwapRouter      string  `yaml:"swap_router" json:"swap_router"`
	QuoterV2        string  `yaml:"quoter_v2" json:"quoter_v2"`
	Factory         string  `yaml:"factory" json:"factory"`
	WEDU            string  `yaml:"wedu" json:"wedu"`
	SubgraphURL     string  `yaml:"subgraph_url" json:"subgraph_url"`
	SlippagePercent float64 `yaml:"slippage_percent" json:"slippage_percent"`
	FeeTiers        []int64 `yaml:"fee_tiers" json:"fee_tiers"`
	DeadlineMinutes int     `yaml:"deadline_minutes" json:"deadline_minutes"`
}

// BridgeConfig contains the bridge backend endpoint and the Arbitrum-side contracts
type BridgeConfig struct {
	BaseURL         string `yaml:"base_url" json:"base_url"`
	EDUTokenArb     string `yaml:"edu_token_arb" json:"edu_token_arb"`
	DepositContract string `yaml:"deposit_contract" json:"deposit_contract"`
	TimeoutSec      int    `yaml:"timeout_sec" json:"timeout_sec"`
}

// AgentProfileConfig maps an agent id to a behaviour profile. Supports either a
// plain string (profile name) or full object via custom YAML unmarshalling.
type AgentProfileConfig struct {
	Profile      string `yaml:"profile" json:"profile"`
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt"`
	AutoProgress bool   `yaml:"auto_progress" json:"auto_progress"`
}

// UnmarshalYAML allows AgentProfileConfig to accept scalar (profile name) or mapping values.
func (c *AgentProfileConfig) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*c = AgentProfileConfig{Profile: value.Value}
		return nil
	case yaml.MappingNode:
		type raw AgentProfileConfig
		var r raw
		if err := value.Decode(&r); err != nil {
			return err
		}
		*c = AgentProfileConfig(r)
		return nil
	default:
		return fmt.Errorf("invalid agent profile entry: kind %d", value.Kind)
	}
}

// DefaultConfig returns a configuration wired for EDU Chain mainnet
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Agent: AgentConfig{
			Name:        "lilikoi-agent",
			Version:     "1.0.0",
			Description: "DeFi chat agent for EDU Chain",
		},
		HTTP: HTTPConfig{
			Enabled:        true,
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		LLM: LLMConfig{
			Provider:      "openai",
			Model:         "gpt-4o",
			MaxTokens:     4096,
			Temperature:   0.2,
			MaxIterations: 5,
			TimeoutSec:    90,
		},
		Chains: ChainsConfig{
			Default: 41923,
			Endpoints: []ChainConfig{
				{Name: "educhain", ChainID: 41923, RPCURL: "https://rpc.edu-chain.raas.gelato.cloud"},
				{Name: "arbitrum", ChainID: 42161, RPCURL: "https://arb1.arbitrum.io/rpc"},
			},
		},
		Dex: DexConfig{
			SwapRouter:      "0x1a1e967e523435CeF20642e3D7811F7d0da9a704",
			QuoterV2:        "0x83EE12582E3448Ab69E664A2ba69b6AedE112205",
			Factory:         "0x963A7f4eB46967A9fd3dFbabD354fC294FA2BF5C",
			WEDU:            "0xd02E8c38a8E3db71f8b2ae30B8186d7874934e12",
			SlippagePercent: 0.5,
			FeeTiers:        []int64{100, 500, 3000, 10000},
			DeadlineMinutes: 20,
		},
		Bridge: BridgeConfig{
			BaseURL:         "https://yuzu-api-production.r8edev.xyz/bridge/arbMainnet/eduMainnet",
			EDUTokenArb:     "0xf8173a39c56a554837C4C7f104153A005D284D11",
			DepositContract: "0x590044e628ea1B9C10a86738Cf7a7eeF52D031B8",
			TimeoutSec:      30,
		},
		Agents: map[string]AgentProfileConfig{
			"bridging":    {Profile: "bridging"},
			"transaction": {Profile: "transaction"},
			"dex":         {Profile: "dex"},
			"utility":     {Profile: "utility"},
		},
		Logging: utils.DefaultLogConfig(),
	}
}
