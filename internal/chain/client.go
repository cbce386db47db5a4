package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"

	"github.com/lilikoi/lilikoi-go/internal/config"
)

// Manager holds one RPC client per configured chain. Clients are dialed
// lazily on first use and cached for the lifetime of the manager.
type Manager struct {
	mu        sync.Mutex
	endpoints map[int64]string
	clients   map[int64]*ethclient.Client
	defaultID int64
	logger    *logrus.Logger
}

// NewManager creates a chain manager from the chains configuration
func NewManager(cfg config.ChainsConfig, logger *logrus.Logger) (*Manager, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("no chain endpoints configured")
	}

	endpoints := make(map[int64]string, len(cfg.Endpoints))
	for _, chain := range cfg.Endpoints {
		endpoints[chain.ChainID] = chain.RPCURL
	}
	if _, ok := endpoints[cfg.Default]; !ok {
		return nil, fmt.Errorf("default chain %d has no endpoint", cfg.Default)
	}

	return &Manager{
		endpoints: endpoints,
		clients:   make(map[int64]*ethclient.Client),
		defaultID: cfg.Default,
		logger:    logger,
	}, nil
}

// DefaultChainID returns the chain used when a tool does not name one
func (m *Manager) DefaultChainID() int64 {
	return m.defaultID
}

// Client returns the RPC client for a chain, dialing it if necessary
func (m *Manager) Client(ctx context.Context, chainID int64) (*ethclient.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client, ok := m.clients[chainID]; ok {
		return client, nil
	}

	url, ok := m.endpoints[chainID]
	if !ok {
		return nil, fmt.Errorf("no RPC endpoint configured for chain %d", chainID)
	}

	rpcClient, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial chain %d at %s: %w", chainID, url, err)
	}

	client := ethclient.NewClient(rpcClient)
	m.clients[chainID] = client
	m.logger.Infof("Connected to chain %d at %s", chainID, url)
	return client, nil
}

// NativeBalance returns the native coin balance of an address in wei
func (m *Manager) NativeBalance(ctx context.Context, chainID int64, addr common.Address) (*big.Int, error) {
	client, err := m.Client(ctx, chainID)
	if err != nil {
		return nil, err
	}

	balance, err := client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance for %s on chain %d: %w", addr.Hex(), chainID, err)
	}
	return balance, nil
}

// Close releases all dialed clients
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for chainID, client := range m.clients {
		client.Close()
		delete(m.clients, chainID)
	}
}
