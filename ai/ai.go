// Package ai turns a free-text task description into an ordered workflow of
// typed steps via an LLM. The response is an opaque contract to the rest of
// the system: a JSON object with a steps array, validated into typed steps
// here; a malformed or empty response is an error the caller recovers from
// at the agent boundary.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nexuslabs/nexus-agents/core"
)

const systemPrompt = "You are an AI agent coordinator for the Hedera-Nexus platform. " +
	"You respond only with JSON."

const promptTemplate = `A user has submitted a high-level task. Break it down into a sequence of 3 to 6 smaller, verifiable steps for an autonomous agent.

The platform has these capabilities:
1.  **Oracle:** Query real-time data. Type 'Oracle', set 'oracleKey' ('hbarPrice' or 'marketSentiment'). Agent stores result in memory.
2.  **Conditional Logic:** The step following an Oracle query can be conditional. Type 'Conditional', set 'condition' { "key": "hbarPrice", "operator": "lt" | "gt", "value": number }. If condition fails, step is skipped.
3.  **HCS (Hive-Mind):** Broadcast message. Type 'HCS', set 'message'. Use placeholders like {{hbarPrice}}.
4.  **Token Service:** 'mint_nft' or 'transfer_ft'. For transfers, use target "ANOTHER_AGENT".
5.  **Governance (DAO):**
    *   **Stake:** Agent locks NEX-GOV tokens for voting power. Type 'Governance', set 'governanceAction' to 'stake', set 'stakeAmount' (integer, e.g., 500).
    *   **Vote:** Agent votes on the active proposal. Type 'Governance', set 'governanceAction' to 'vote', set 'voteOption' to 'yes' or 'no'. This is often used with Conditional Logic (e.g., if price > 0.10, vote yes).
6.  **Standard:** 'Verification', 'Smart Contract'.

For each step, provide:
- 'name', 'description', 'type'.
- Estimated HBAR 'cost'.
- Specific fields based on type (oracleKey, message, tokenAction, governanceAction, etc.).

Respond with a JSON object of the shape {"steps": [...]}.

User Task: %q`

// Generator produces workflows from task descriptions. With no API key it
// falls back to a deterministic mock workflow, so the simulation runs
// without external credentials.
type Generator struct {
	client *openai.Client
	model  string
}

// NewGenerator builds a generator. An empty apiKey enables mock mode.
func NewGenerator(apiKey string) *Generator {
	g := &Generator{model: openai.GPT4oMini}
	if apiKey != "" {
		g.client = openai.NewClient(apiKey)
	}
	return g
}

// GenerateWorkflow implements the workflow generation contract: it returns
// the ordered steps for the task, each initialised to pending, or an error
// when the response cannot be validated.
func (g *Generator) GenerateWorkflow(ctx context.Context, taskDescription string) ([]core.Step, error) {
	if g.client == nil {
		return mockWorkflow(), nil
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(promptTemplate, taskDescription)},
		},
		MaxTokens:   2048,
		Temperature: 0.7,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("workflow generation request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("workflow generation returned no choices")
	}
	return ParseWorkflow(resp.Choices[0].Message.Content)
}

// ParseWorkflow validates a raw model response into typed pending steps.
func ParseWorkflow(raw string) ([]core.Step, error) {
	raw = stripFences(strings.TrimSpace(raw))

	var payload struct {
		Steps []core.StepWire `json:"steps"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("invalid workflow response: %w", err)
	}
	if len(payload.Steps) == 0 {
		return nil, fmt.Errorf("workflow response contains no steps")
	}

	steps := make([]core.Step, 0, len(payload.Steps))
	for i, wire := range payload.Steps {
		wire.Status = core.StepPending
		wire.TransactionID = ""
		wire.AssetTransfers = nil
		step, err := wire.Step()
		if err != nil {
			return nil, fmt.Errorf("workflow step %d: %w", i, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func stripFences(s string) string {
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	} else {
		return s
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// mockWorkflow exercises every step capability; used when no API key is
// configured so demos stay deterministic.
func mockWorkflow() []core.Step {
	wires := []core.StepWire{
		{
			Name:        "Query HBAR Price",
			Description: "Read the current HBAR price from the oracle into memory.",
			Type:        core.StepOracle,
			Cost:        0.001,
			OracleKey:   core.OracleKeyHBARPrice,
		},
		{
			Name:        "Broadcast Market Read",
			Description: "Share the observed price with the agent hive-mind.",
			Type:        core.StepHCS,
			Cost:        0.0005,
			Message:     "Observed HBAR at {{hbarPrice}}. Coordinating next move.",
		},
		{
			Name:        "Mint Mission Badge",
			Description: "Mint a commemorative NFT for this mission.",
			Type:        core.StepTokenService,
			Cost:        0.05,
			TokenAction: string(core.TokenMintNFT),
			AssetID:     "NFT-NEXUS-BADGE",
		},
		{
			Name:             "Stake Governance Tokens",
			Description:      "Lock NEX-GOV to obtain voting power.",
			Type:             core.StepGovernance,
			Cost:             0.002,
			GovernanceAction: string(core.GovStake),
			StakeAmount:      500,
		},
		{
			Name:             "Vote If Market Is Strong",
			Description:      "Vote yes on the active proposal when price exceeds 0.05.",
			Type:             core.StepGovernance,
			Cost:             0.001,
			GovernanceAction: string(core.GovVote),
			VoteOption:       string(core.VoteYes),
			Condition: &core.Condition{
				Key:      core.OracleKeyHBARPrice,
				Operator: core.OpGreaterThan,
				Value:    0.05,
			},
		},
		{
			Name:        "Verify Mission Results",
			Description: "Run final verification over the mission outputs.",
			Type:        core.StepVerification,
			Cost:        0.0001,
		},
	}

	steps := make([]core.Step, 0, len(wires))
	for _, w := range wires {
		w.Status = core.StepPending
		step, err := w.Step()
		if err != nil {
			// The mock catalog is static; a validation failure here is a bug.
			panic(err)
		}
		steps = append(steps, step)
	}
	return steps
}
