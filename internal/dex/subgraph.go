package dex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type graphqlRequest struct {
	Query string `json:"query"`
}

type tokenPriceResponse struct {
	Data struct {
		Token *struct {
			DerivedETH string `json:"derivedETH"`
			Symbol     string `json:"symbol"`
		} `json:"token"`
		Bundle *struct {
			ETHPriceUSD string `json:"ethPriceUSD"`
		} `json:"bundle"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// TokenPrice returns the USD price of a token from the SailFish subgraph.
// Prices are derived as derivedETH * ethPriceUSD, where "ETH" is the
// chain's native EDU.
func (s *Service) TokenPrice(ctx context.Context, token common.Address) (float64, error) {
	if s.cfg.SubgraphURL == "" {
		return 0, fmt.Errorf("subgraph URL not configured")
	}

	query := fmt.Sprintf(`{
		token(id: "%s") { derivedETH symbol }
		bundle(id: "1") { ethPriceUSD }
	}`, strings.ToLower(token.Hex()))

	body, err := json.Marshal(graphqlRequest{Query: query})
	if err != nil {
		return 0, fmt.Errorf("failed to encode subgraph query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.SubgraphURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build subgraph request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("subgraph request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("subgraph returned status %d", resp.StatusCode)
	}

	var parsed tokenPriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("failed to decode subgraph response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return 0, fmt.Errorf("subgraph error: %s", parsed.Errors[0].Message)
	}
	if parsed.Data.Token == nil || parsed.Data.Bundle == nil {
		return 0, fmt.Errorf("token %s not indexed by subgraph", token.Hex())
	}

	derivedETH, err := strconv.ParseFloat(parsed.Data.Token.DerivedETH, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid derivedETH value: %w", err)
	}
	ethPriceUSD, err := strconv.ParseFloat(parsed.Data.Bundle.ETHPriceUSD, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ethPriceUSD value: %w", err)
	}

	return derivedETH * ethPriceUSD, nil
}
