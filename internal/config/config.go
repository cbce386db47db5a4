package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/lilikoi/lilikoi-go/pkg/utils"
)

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(path string, logger *logrus.Logger) (*AppConfig, error) {
	// Start with default configuration
	config := DefaultConfig()

	// Check if the config file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warnf("Configuration file %s not found, using defaults", path)
		// Still apply environment overrides even with defaults
		applyEnvironmentOverrides(config)
		return config, nil
	}

	// Read the configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration
	configString := utils.ExpandEnvVars(string(data))

	// Parse YAML
	if err := yaml.Unmarshal([]byte(configString), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables before validating so that keys
	// supplied only through the environment pass validation
	applyEnvironmentOverrides(config)

	// Validate the configuration
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// validateConfig checks if the configuration is valid
func validateConfig(config *AppConfig) error {
	// Basic validation
	if config.Agent.Name == "" {
		return fmt.Errorf("agent name cannot be empty")
	}

	// HTTP validation
	if config.HTTP.Enabled && (config.HTTP.Port <= 0 || config.HTTP.Port > 65535) {
		return fmt.Errorf("http.port must be between 1 and 65535")
	}

	// LLM validation
	if config.LLM.Provider == "" {
		return fmt.Errorf("LLM provider cannot be empty")
	}
	if config.LLM.Provider == "openai" && config.LLM.APIKey == "" {
		return fmt.Errorf("OpenAI API key cannot be empty when using OpenAI provider")
	}
	if config.LLM.MaxIterations <= 0 {
		return fmt.Errorf("llm.max_iterations must be positive")
	}

	// Chain validation
	if len(config.Chains.Endpoints) == 0 {
		return fmt.Errorf("at least one chain endpoint must be configured")
	}
	defaultFound := false
	for _, chain := range config.Chains.Endpoints {
		if chain.ChainID <= 0 {
			return fmt.Errorf("chain %q has invalid chain id %d", chain.Name, chain.ChainID)
		}
		if chain.RPCURL == "" {
			return fmt.Errorf("chain %q has no RPC URL", chain.Name)
		}
		if chain.ChainID == config.Chains.Default {
			defaultFound = true
		}
	}
	if !defaultFound {
		return fmt.Errorf("default chain id %d is not among the configured endpoints", config.Chains.Default)
	}

	// Dex validation
	if config.Dex.SwapRouter == "" || config.Dex.QuoterV2 == "" || config.Dex.WEDU == "" {
		return fmt.Errorf("dex contract addresses must be configured")
	}
	if config.Dex.SlippagePercent < 0 || config.Dex.SlippagePercent >= 100 {
		return fmt.Errorf("dex.slippage_percent must be in [0, 100)")
	}

	// Bridge validation
	if config.Bridge.BaseURL == "" {
		return fmt.Errorf("bridge.base_url cannot be empty")
	}

	// Agent profile validation
	for agentID, profile := range config.Agents {
		switch profile.Profile {
		case "bridging", "transaction", "dex", "utility":
		default:
			return fmt.Errorf("agent %q has unknown profile %q", agentID, profile.Profile)
		}
	}

	return nil
}

// applyEnvironmentOverrides applies environment variable overrides to the configuration
func applyEnvironmentOverrides(config *AppConfig) {
	// Agent overrides
	if name := os.Getenv("AGENT_NAME"); name != "" {
		config.Agent.Name = name
	}

	// HTTP overrides
	config.HTTP.Enabled = utils.BoolFromEnv("HTTP_ENABLED", config.HTTP.Enabled)
	if portStr := os.Getenv("HTTP_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.HTTP.Port = port
		} else {
			logrus.Warnf("Invalid HTTP_PORT: %s", portStr)
		}
	}

	// LLM overrides
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.LLM.APIKey = key
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		config.LLM.Model = model
	}
	if baseURL := os.Getenv("LLM_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}

	// Chain overrides
	if rpc := os.Getenv("EDUCHAIN_RPC_URL"); rpc != "" {
		setChainRPC(config, 41923, rpc)
	}
	if rpc := os.Getenv("ARBITRUM_RPC_URL"); rpc != "" {
		setChainRPC(config, 42161, rpc)
	}

	// Dex overrides
	if url := os.Getenv("SAILFISH_SUBGRAPH_URL"); url != "" {
		config.Dex.SubgraphURL = url
	}

	// Bridge overrides
	if url := os.Getenv("BRIDGE_API_URL"); url != "" {
		config.Bridge.BaseURL = url
	}

	// Logging overrides
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

func setChainRPC(config *AppConfig, chainID int64, rpcURL string) {
	for i := range config.Chains.Endpoints {
		if config.Chains.Endpoints[i].ChainID == chainID {
			config.Chains.Endpoints[i].RPCURL = rpcURL
			return
		}
	}
	config.Chains.Endpoints = append(config.Chains.Endpoints, ChainConfig{
		Name:    fmt.Sprintf("chain-%d", chainID),
		ChainID: chainID,
		RPCURL:  rpcURL,
	})
}
