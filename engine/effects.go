package engine

import (
	"fmt"
	"strings"

	"github.com/nexuslabs/nexus-agents/core"
)

// applyEffect dispatches the kind-specific effect of a completing step.
// Effects are evaluated against the tick snapshot; ledger mutations are
// staged as ops, never applied here. A failed effect (bad target, thin
// balance, missing proposal) is logged and dropped — the step still counts
// as executed and the agent moves on.
func (e *Engine) applyEffect(ctx TickContext, agent *core.Agent, step core.Step, res *TickResult) (transfers []core.AssetTransfer, logs []core.ActivityEntry) {
	switch spec := step.Spec.(type) {
	case core.OracleQuery:
		value := oracleValue(ctx.Oracle, spec.Key)
		memory := make(map[string]interface{}, len(agent.Memory)+1)
		for k, v := range agent.Memory {
			memory[k] = v
		}
		memory[spec.Key] = value
		agent.Memory = memory
		logs = append(logs, core.ActivityEntry{
			Message:  fmt.Sprintf("Queried Oracle for '%s': %v", spec.Key, value),
			Severity: core.SeveritySuccess,
			AgentID:  agent.ID,
		})

	case core.Broadcast:
		message := spec.Template
		for key, value := range agent.Memory {
			message = strings.ReplaceAll(message, "{{"+key+"}}", fmt.Sprintf("%v", value))
		}
		res.Messages = append(res.Messages, core.HCSMessage{
			AgentID:   agent.ID,
			Message:   message,
			Timestamp: ctx.Now,
		})
		logs = append(logs, core.ActivityEntry{
			Message:  fmt.Sprintf("Broadcast HCS message: %q", message),
			Severity: core.SeveritySuccess,
			AgentID:  agent.ID,
		})

	case core.TokenOp:
		switch spec.Action {
		case core.TokenMintNFT:
			suffix := e.rng.Intn(1000)
			nftID := fmt.Sprintf("%s-%d", spec.AssetID, suffix)
			res.LedgerOps = append(res.LedgerOps, MintNFTOp{
				AgentID: agent.ID,
				AssetID: spec.AssetID,
				Suffix:  suffix,
			})
			transfers = append(transfers, core.AssetTransfer{
				AssetID: nftID,
				From:    core.MintOrigin,
				To:      agent.ID,
			})
			logs = append(logs, core.ActivityEntry{
				Message:  fmt.Sprintf("Minted NFT %s.", nftID),
				Severity: core.SeveritySuccess,
				AgentID:  agent.ID,
			})

		case core.TokenTransferFT:
			targetID := e.resolveTarget(ctx, agent.ID, spec.Target)
			if targetID == "" || !canTransfer(ctx.Holdings, agent.ID, targetID, spec.AssetID, spec.Amount) {
				logs = append(logs, core.ActivityEntry{
					Message:  "FT Transfer failed. Check balance or target.",
					Severity: core.SeverityError,
					AgentID:  agent.ID,
				})
				break
			}
			res.LedgerOps = append(res.LedgerOps, TransferFTOp{
				From:    agent.ID,
				To:      targetID,
				TokenID: spec.AssetID,
				Amount:  spec.Amount,
			})
			transfers = append(transfers, core.AssetTransfer{
				AssetID: spec.AssetID,
				From:    agent.ID,
				To:      targetID,
				Amount:  spec.Amount,
			})
			logs = append(logs, core.ActivityEntry{
				Message:  fmt.Sprintf("Transferred %d %s to %s.", spec.Amount, spec.AssetID, targetID),
				Severity: core.SeveritySuccess,
				AgentID:  agent.ID,
			})
		}

	case core.GovernanceOp:
		switch spec.Action {
		case core.GovStake:
			if balanceOf(ctx.Holdings, agent.ID, core.GovTokenID) < spec.StakeAmount {
				logs = append(logs, core.ActivityEntry{
					Message:  "Staking failed: Insufficient NEX-GOV.",
					Severity: core.SeverityError,
					AgentID:  agent.ID,
				})
				break
			}
			res.LedgerOps = append(res.LedgerOps, StakeOp{
				AgentID: agent.ID,
				Amount:  spec.StakeAmount,
			})
			logs = append(logs, core.ActivityEntry{
				Message:  fmt.Sprintf("Staked %d NEX-GOV for voting power.", spec.StakeAmount),
				Severity: core.SeveritySuccess,
				AgentID:  agent.ID,
			})

		case core.GovVote:
			power := ctx.Holdings[agent.ID].StakedGov
			if power <= 0 || ctx.Proposal == nil || ctx.Proposal.Status != core.ProposalActive {
				logs = append(logs, core.ActivityEntry{
					Message:  "Voting failed: No active proposal or no staked tokens.",
					Severity: core.SeverityError,
					AgentID:  agent.ID,
				})
				break
			}
			if spec.Vote == core.VoteYes {
				res.VotesFor += power
			} else {
				res.VotesAgainst += power
			}
			logs = append(logs, core.ActivityEntry{
				Message: fmt.Sprintf("Voted %s on %s with %d power.",
					strings.ToUpper(string(spec.Vote)), ctx.Proposal.ID, power),
				Severity: core.SeveritySuccess,
				AgentID:  agent.ID,
			})
		}

	case nil:
		// Verification, Smart Contract and Conditional steps have no effect
		// beyond cost, experience and the transaction record.
	}
	return transfers, logs
}

// resolveTarget maps the ANOTHER_AGENT sentinel to a random other
// non-errored agent, or passes a literal agent id through.
func (e *Engine) resolveTarget(ctx TickContext, selfID, target string) string {
	if target != core.TargetAnotherAgent {
		return target
	}
	var candidates []string
	for _, a := range ctx.Agents {
		if a.ID != selfID && a.Status != core.AgentError {
			candidates = append(candidates, a.ID)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[e.rng.Intn(len(candidates))]
}

func canTransfer(holdings map[string]core.Holdings, from, to, tokenID string, amount int) bool {
	if _, ok := holdings[to]; !ok {
		return false
	}
	return balanceOf(holdings, from, tokenID) >= amount
}

func balanceOf(holdings map[string]core.Holdings, agentID, tokenID string) int {
	for _, ft := range holdings[agentID].FTs {
		if ft.ID == tokenID {
			return ft.Amount
		}
	}
	return 0
}

func oracleValue(data core.OracleData, key string) interface{} {
	switch key {
	case core.OracleKeyHBARPrice:
		return data.HBARPrice
	case core.OracleKeyMarketSentiment:
		return string(data.MarketSentiment)
	default:
		return nil
	}
}
