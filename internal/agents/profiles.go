package agents

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lilikoi/lilikoi-go/internal/config"
	"github.com/lilikoi/lilikoi-go/internal/tools"
)

// Profile names a behaviour preset for an agent id
type Profile string

const (
	ProfileBridging    Profile = "bridging"
	ProfileTransaction Profile = "transaction"
	ProfileDex         Profile = "dex"
	ProfileUtility     Profile = "utility"
)

// Agent is a resolved agent configuration ready for the chat engine
type Agent struct {
	ID           string
	Profile      Profile
	SystemPrompt string
	// AutoProgress keeps tools available to the oracle after an action
	// tool has prepared a transaction, so the agent can chain a
	// follow-up action, e.g. a swap right after its approval. When off
	// the remaining turns run toolless and the client signs first.
	AutoProgress bool
	// ToolNames restricts the agent to a subset of the registry. Empty
	// means every registered tool.
	ToolNames []string
}

const basePrompt = `You are Lilikoi, a DeFi assistant operating on EDU Chain (chain id 41923).
You help users check balances, transfer tokens, swap on SailFish DEX and bridge EDU between Arbitrum and EDU Chain.
You can only PREPARE transactions; the user signs every transaction in their own wallet.
Amounts are always human-readable decimal strings. Never invent token addresses.
When a request cannot be served with the available tools, say so plainly.`

var profilePrompts = map[Profile]string{
	ProfileBridging: basePrompt + `
Focus on bridging EDU between Arbitrum (chain id 42161) and EDU Chain.
A bridge deposit requires a sufficient EDU allowance on Arbitrum; check it before preparing a deposit and prepare an approval first when it is missing.`,
	ProfileTransaction: basePrompt + `
Focus on transfers: native EDU sends, ERC20 token sends and token approvals on EDU Chain.`,
	ProfileDex: basePrompt + `
Focus on SailFish DEX: quotes, token prices, swaps, wrapping and unwrapping EDU.
Always quote a swap before preparing it and mention the minimum received after slippage.`,
	ProfileUtility: basePrompt + `
Answer questions about wallets, balances and prices, and route the user to the right operation.`,
}

var profileTools = map[Profile][]string{
	ProfileBridging: {
		"check_edu_balance_on_arbitrum",
		"check_bridge_allowance",
		"approve_edu_on_arbitrum",
		"bridge_edu_to_educhain",
		"bridge_approve",
		"bridge_deposit",
		"bridge_withdraw",
		"get_edu_balance",
	},
	ProfileTransaction: {
		"get_edu_balance",
		"get_token_balance",
		"get_wallet_overview",
		"send_edu",
		"send_erc20_token",
		"approve_token",
	},
	ProfileDex: {
		"get_token_price",
		"get_swap_quote",
		"get_edu_balance",
		"get_token_balance",
		"swap_tokens",
		"swap_edu_for_tokens",
		"swap_tokens_for_edu",
		"wrap_edu",
		"unwrap_wedu",
		"approve_token",
	},
	// The utility profile sees the whole registry
	ProfileUtility: nil,
}

// Resolver maps request agent ids to resolved agents
type Resolver struct {
	agents map[string]Agent
	logger *logrus.Logger
}

// NewResolver builds a resolver from the agents configuration. Entries
// naming an unknown profile are rejected.
func NewResolver(cfg map[string]config.AgentProfileConfig, logger *logrus.Logger) (*Resolver, error) {
	agents := make(map[string]Agent, len(cfg))
	for id, entry := range cfg {
		profile := Profile(strings.ToLower(strings.TrimSpace(entry.Profile)))
		if _, ok := profilePrompts[profile]; !ok {
			return nil, fmt.Errorf("agent %q references unknown profile %q", id, entry.Profile)
		}

		prompt := entry.SystemPrompt
		if prompt == "" {
			prompt = profilePrompts[profile]
		}

		agents[strings.ToLower(id)] = Agent{
			ID:           strings.ToLower(id),
			Profile:      profile,
			SystemPrompt: prompt,
			AutoProgress: entry.AutoProgress,
			ToolNames:    profileTools[profile],
		}
	}
	return &Resolver{agents: agents, logger: logger}, nil
}

// Resolve returns the agent for an id. Unknown ids fall back to the
// utility profile so a chat request never fails on routing.
func (r *Resolver) Resolve(agentID string) Agent {
	id := strings.ToLower(strings.TrimSpace(agentID))
	if agent, ok := r.agents[id]; ok {
		return agent
	}

	r.logger.Warnf("Unknown agent id %q, falling back to utility profile", agentID)
	if agent, ok := r.agents[string(ProfileUtility)]; ok {
		return agent
	}
	return Agent{
		ID:           string(ProfileUtility),
		Profile:      ProfileUtility,
		SystemPrompt: profilePrompts[ProfileUtility],
	}
}

// IDs lists the configured agent ids sorted alphabetically
func (r *Resolver) IDs() []string {
	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Tools returns the agent's tool definitions from the registry,
// filtered to its profile subset
func (a Agent) Tools(reg *tools.Registry) []tools.Definition {
	all := reg.List()
	if len(a.ToolNames) == 0 {
		return all
	}

	allowed := make(map[string]bool, len(a.ToolNames))
	for _, name := range a.ToolNames {
		allowed[name] = true
	}

	filtered := make([]tools.Definition, 0, len(a.ToolNames))
	for _, def := range all {
		if allowed[def.Name] {
			filtered = append(filtered, def)
		}
	}
	return filtered
}
