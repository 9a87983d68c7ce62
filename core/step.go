package core

import (
	"encoding/json"
	"fmt"
)

// StepKind identifies the capability a workflow step exercises.
type StepKind string

const (
	StepOracle        StepKind = "Oracle"
	StepConditional   StepKind = "Conditional"
	StepHCS           StepKind = "HCS"
	StepTokenService  StepKind = "Token Service"
	StepGovernance    StepKind = "Governance"
	StepVerification  StepKind = "Verification"
	StepSmartContract StepKind = "Smart Contract"
)

// StepStatus tracks a step through execution. Statuses only ever move
// forward: pending -> in-progress -> completed, or pending -> skipped.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in-progress"
	StepCompleted  StepStatus = "completed"
	StepSkipped    StepStatus = "skipped"
)

// Condition gates a step on a previously stored memory value.
type Condition struct {
	Key      string  `json:"key"`
	Operator string  `json:"operator"`
	Value    float64 `json:"value"`
}

// Comparison operators accepted in step conditions.
const (
	OpGreaterThan = "gt"
	OpLessThan    = "lt"
)

// TokenAction selects the token-service operation a step performs.
type TokenAction string

const (
	TokenMintNFT    TokenAction = "mint_nft"
	TokenTransferFT TokenAction = "transfer_ft"
)

// TargetAnotherAgent asks the engine to pick a random other non-errored
// agent as the transfer recipient.
const TargetAnotherAgent = "ANOTHER_AGENT"

// GovernanceAction selects the governance operation a step performs.
type GovernanceAction string

const (
	GovStake GovernanceAction = "stake"
	GovVote  GovernanceAction = "vote"
)

// VoteOption is a yes/no ballot on the active proposal.
type VoteOption string

const (
	VoteYes VoteOption = "yes"
	VoteNo  VoteOption = "no"
)

// StepSpec is the kind-specific payload of a step. Exactly one concrete
// type exists per kind that carries data; Verification, Smart Contract and
// Conditional steps have a nil spec.
type StepSpec interface {
	stepSpec()
}

// OracleQuery reads one oracle value into agent memory.
type OracleQuery struct {
	Key string
}

// Broadcast publishes a message template on the HCS bus. {{key}}
// placeholders are substituted from agent memory at execution time.
type Broadcast struct {
	Template string
}

// TokenOp mints an NFT or transfers a fungible token balance.
type TokenOp struct {
	Action  TokenAction
	AssetID string
	Amount  int
	Target  string
}

// GovernanceOp stakes governance tokens or votes on the active proposal.
type GovernanceOp struct {
	Action      GovernanceAction
	StakeAmount int
	Vote        VoteOption
}

func (OracleQuery) stepSpec()  {}
func (Broadcast) stepSpec()    {}
func (TokenOp) stepSpec()      {}
func (GovernanceOp) stepSpec() {}

// Step is one unit of an agent's workflow. Kind-specific fields are fixed at
// generation time; only Status, TransactionID and Transfers are written by
// the engine afterwards.
type Step struct {
	Name          string
	Description   string
	Kind          StepKind
	Status        StepStatus
	Cost          float64
	TransactionID string
	Transfers     []AssetTransfer
	Condition     *Condition
	Spec          StepSpec
}

// Terminal reports whether the step no longer blocks sequence advancement.
func (s Step) Terminal() bool {
	return s.Status == StepCompleted || s.Status == StepSkipped
}

// StepWire is the flat JSON shape shared by the AI workflow contract, the
// snapshot store and the HTTP API.
type StepWire struct {
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Type             StepKind        `json:"type"`
	Status           StepStatus      `json:"status,omitempty"`
	Cost             float64         `json:"cost"`
	TransactionID    string          `json:"transactionId,omitempty"`
	AssetTransfers   []AssetTransfer `json:"assetTransfers,omitempty"`
	TokenAction      string          `json:"tokenAction,omitempty"`
	AssetID          string          `json:"assetId,omitempty"`
	AssetAmount      int             `json:"assetAmount,omitempty"`
	TargetAgent      string          `json:"targetAgent,omitempty"`
	OracleKey        string          `json:"oracleKey,omitempty"`
	Message          string          `json:"message,omitempty"`
	GovernanceAction string          `json:"governanceAction,omitempty"`
	StakeAmount      int             `json:"stakeAmount,omitempty"`
	VoteOption       string          `json:"voteOption,omitempty"`
	Condition        *Condition      `json:"condition,omitempty"`
}

// Step validates the wire form and builds the typed step. Unknown kinds and
// incomplete kind-specific fields are rejected so a malformed workflow never
// reaches the engine.
func (w StepWire) Step() (Step, error) {
	s := Step{
		Name:          w.Name,
		Description:   w.Description,
		Kind:          w.Type,
		Status:        w.Status,
		Cost:          w.Cost,
		TransactionID: w.TransactionID,
		Transfers:     w.AssetTransfers,
		Condition:     w.Condition,
	}
	if s.Name == "" {
		return Step{}, fmt.Errorf("step has no name")
	}
	if s.Status == "" {
		s.Status = StepPending
	}
	if w.Condition != nil {
		if op := w.Condition.Operator; op != OpGreaterThan && op != OpLessThan {
			return Step{}, fmt.Errorf("step %q: unknown condition operator %q", w.Name, op)
		}
	}

	switch w.Type {
	case StepOracle:
		if w.OracleKey == "" {
			return Step{}, fmt.Errorf("oracle step %q has no oracleKey", w.Name)
		}
		s.Spec = OracleQuery{Key: w.OracleKey}
	case StepHCS:
		if w.Message == "" {
			return Step{}, fmt.Errorf("HCS step %q has no message", w.Name)
		}
		s.Spec = Broadcast{Template: w.Message}
	case StepTokenService:
		op := TokenOp{
			Action:  TokenAction(w.TokenAction),
			AssetID: w.AssetID,
			Amount:  w.AssetAmount,
			Target:  w.TargetAgent,
		}
		switch op.Action {
		case TokenMintNFT:
			if op.AssetID == "" {
				return Step{}, fmt.Errorf("mint step %q has no assetId", w.Name)
			}
		case TokenTransferFT:
			if op.AssetID == "" || op.Amount <= 0 || op.Target == "" {
				return Step{}, fmt.Errorf("transfer step %q is missing assetId, amount or target", w.Name)
			}
		default:
			return Step{}, fmt.Errorf("token step %q: unknown action %q", w.Name, w.TokenAction)
		}
		s.Spec = op
	case StepGovernance:
		op := GovernanceOp{
			Action:      GovernanceAction(w.GovernanceAction),
			StakeAmount: w.StakeAmount,
			Vote:        VoteOption(w.VoteOption),
		}
		switch op.Action {
		case GovStake:
			if op.StakeAmount <= 0 {
				return Step{}, fmt.Errorf("stake step %q has no stakeAmount", w.Name)
			}
		case GovVote:
			if op.Vote != VoteYes && op.Vote != VoteNo {
				return Step{}, fmt.Errorf("vote step %q has no valid voteOption", w.Name)
			}
		default:
			return Step{}, fmt.Errorf("governance step %q: unknown action %q", w.Name, w.GovernanceAction)
		}
		s.Spec = op
	case StepConditional, StepVerification, StepSmartContract:
		// No payload beyond the common fields.
	default:
		return Step{}, fmt.Errorf("step %q: unknown type %q", w.Name, w.Type)
	}
	return s, nil
}

// Wire flattens the step back into the shared JSON shape.
func (s Step) Wire() StepWire {
	w := StepWire{
		Name:           s.Name,
		Description:    s.Description,
		Type:           s.Kind,
		Status:         s.Status,
		Cost:           s.Cost,
		TransactionID:  s.TransactionID,
		AssetTransfers: s.Transfers,
		Condition:      s.Condition,
	}
	switch spec := s.Spec.(type) {
	case OracleQuery:
		w.OracleKey = spec.Key
	case Broadcast:
		w.Message = spec.Template
	case TokenOp:
		w.TokenAction = string(spec.Action)
		w.AssetID = spec.AssetID
		w.AssetAmount = spec.Amount
		w.TargetAgent = spec.Target
	case GovernanceOp:
		w.GovernanceAction = string(spec.Action)
		w.StakeAmount = spec.StakeAmount
		w.VoteOption = string(spec.Vote)
	}
	return w
}

func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Wire())
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var w StepWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	step, err := w.Step()
	if err != nil {
		return err
	}
	*s = step
	return nil
}
