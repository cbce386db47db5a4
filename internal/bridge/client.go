package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/lilikoi/lilikoi-go/internal/chain"
	"github.com/lilikoi/lilikoi-go/internal/config"
)

// Action is a bridge backend operation
type Action string

const (
	ActionApprove  Action = "approve"
	ActionDeposit  Action = "deposit"
	ActionWithdraw Action = "withdraw"
)

// ValidAction reports whether the string names a supported bridge action
func ValidAction(s string) bool {
	switch Action(s) {
	case ActionApprove, ActionDeposit, ActionWithdraw:
		return true
	}
	return false
}

// backendResponse is the envelope the bridge backend wraps transactions in.
// The backend signals failure through the error field even on 200 responses,
// so both the status code and the field have to be checked.
type backendResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

type backendTx struct {
	To          string          `json:"to"`
	Data        string          `json:"data"`
	Value       json.RawMessage `json:"value"`
	ChainID     int64           `json:"chainId"`
	Description string          `json:"description"`
}

// Client talks to the bridge backend that prepares EDU bridge transactions
// between Arbitrum and EDU Chain
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a bridge backend client
func NewClient(cfg config.BridgeConfig, logger *logrus.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Prepare asks the backend for an unsigned bridge transaction.
// The endpoint shape is GET {base}/{address}/{action}/edu/{amount}.
func (c *Client) Prepare(ctx context.Context, action Action, address, amount string) (*chain.TxData, error) {
	if !ValidAction(string(action)) {
		return nil, fmt.Errorf("invalid bridge action: %s", action)
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid wallet address: %s", address)
	}
	if strings.TrimSpace(amount) == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	url := fmt.Sprintf("%s/%s/%s/edu/%s", c.baseURL, address, action, amount)
	c.logger.Infof("Requesting bridge %s of %s EDU for %s", action, amount, address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build bridge request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bridge backend request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read bridge response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bridge backend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope backendResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		// Some endpoints return the transaction object directly
		envelope.Data = body
	}
	if envelope.Error != "" {
		return nil, fmt.Errorf("bridge backend error: %s", envelope.Error)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil, fmt.Errorf("bridge backend returned no transaction data")
	}

	var tx backendTx
	if err := json.Unmarshal(envelope.Data, &tx); err != nil {
		return nil, fmt.Errorf("failed to decode bridge transaction: %w", err)
	}
	if tx.To == "" {
		return nil, fmt.Errorf("bridge transaction is missing destination address")
	}

	return &chain.TxData{
		To:          tx.To,
		Data:        tx.Data,
		Value:       normalizeValue(tx.Value),
		ChainID:     tx.ChainID,
		Description: tx.Description,
	}, nil
}

// normalizeValue accepts the value field as a JSON string or number and
// returns it as a decimal string
func normalizeValue(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		return "0"
	}
	return s
}
