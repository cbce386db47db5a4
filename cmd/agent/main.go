package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/lilikoi/lilikoi-go/internal/agents"
	"github.com/lilikoi/lilikoi-go/internal/api"
	"github.com/lilikoi/lilikoi-go/internal/bridge"
	"github.com/lilikoi/lilikoi-go/internal/bus"
	"github.com/lilikoi/lilikoi-go/internal/chain"
	"github.com/lilikoi/lilikoi-go/internal/config"
	"github.com/lilikoi/lilikoi-go/internal/dex"
	"github.com/lilikoi/lilikoi-go/internal/llm"
	applog "github.com/lilikoi/lilikoi-go/internal/logger"
	"github.com/lilikoi/lilikoi-go/internal/orchestrator"
	"github.com/lilikoi/lilikoi-go/internal/tokens"
	"github.com/lilikoi/lilikoi-go/internal/tools"
	"github.com/lilikoi/lilikoi-go/pkg/utils"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	// Bootstrap logger until the configured one is available
	logger := utils.ConfigureLogger(utils.DefaultLogConfig())
	logger.Info("Starting Lilikoi agent...")

	// Load configuration
	logger.Infof("Loading configuration from %s", *configPath)
	appConfig, err := config.LoadConfig(*configPath, logger)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logger = utils.ConfigureLogger(appConfig.Logging)

	// Flag and environment override the configured log level
	level := *logLevel
	if level == "" {
		level = utils.GetEnv("LOG_LEVEL", "")
	}
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			logger.Warnf("Invalid log level: %s, keeping %s", level, logger.GetLevel())
		} else {
			logger.SetLevel(parsed)
		}
	}

	// Event bus feeds the WebSocket gateway and the log hook
	eventBus := bus.NewEventBus(logger)
	defer eventBus.Stop()
	logger.AddHook(applog.NewWebSocketLogHook(eventBus, appConfig.Agent.Name))

	// Chain gateway
	chainManager, err := chain.NewManager(appConfig.Chains, logger)
	if err != nil {
		logger.Fatalf("Failed to create chain manager: %v", err)
	}
	defer chainManager.Close()

	erc20, err := chain.NewERC20(chainManager, logger)
	if err != nil {
		logger.Fatalf("Failed to create ERC20 service: %v", err)
	}

	// DEX and bridge services
	dexService, err := dex.NewService(chainManager, erc20, appConfig.Dex, logger)
	if err != nil {
		logger.Fatalf("Failed to create DEX service: %v", err)
	}

	bridgeClient := bridge.NewClient(appConfig.Bridge, logger)
	bridgeArb, err := bridge.NewArbSide(erc20, appConfig.Bridge, logger)
	if err != nil {
		logger.Fatalf("Failed to create bridge service: %v", err)
	}

	// Tool registry
	tokenRegistry := tokens.NewRegistry()
	toolRegistry := tools.NewRegistry(logger)
	err = tools.RegisterBuiltins(toolRegistry, tools.Deps{
		Chains:       chainManager,
		ERC20:        erc20,
		Dex:          dexService,
		BridgeClient: bridgeClient,
		BridgeArb:    bridgeArb,
		Tokens:       tokenRegistry,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatalf("Failed to register tools: %v", err)
	}
	logger.Infof("Registered %d tools", len(toolRegistry.List()))

	// Agent profiles and orchestration engine
	agentResolver, err := agents.NewResolver(appConfig.Agents, logger)
	if err != nil {
		logger.Fatalf("Failed to load agent profiles: %v", err)
	}

	oracle := llm.NewOpenAIClient(appConfig.LLM, logger)
	executor := orchestrator.NewExecutor(toolRegistry, orchestrator.NewArgumentResolver(tokenRegistry), eventBus, logger)
	engine := orchestrator.NewEngine(oracle, toolRegistry, agentResolver, executor,
		tokenRegistry, eventBus, appConfig.LLM, logger)

	// HTTP and WebSocket surface
	gateway := api.NewGateway(eventBus, engine, logger)
	server := api.NewServer(engine, bridgeClient, gateway, &appConfig.HTTP, logger)
	if err := server.Start(); err != nil {
		logger.Fatalf("Failed to start API server: %v", err)
	}

	logger.Infof("Lilikoi agent %s is ready", appConfig.Agent.Version)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Infof("Received signal %v, shutting down...", sig)

	if err := server.Shutdown(); err != nil {
		logger.Errorf("API server shutdown failed: %v", err)
	}
	logger.Info("Shutdown complete")
}
