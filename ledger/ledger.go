// Package ledger is the in-memory record of all agents' token holdings.
// Mutations follow a copy-then-replace discipline: an agent's entry is
// deep-copied, mutated, and swapped in whole, so a reader never observes a
// partial update. Balances never go negative; an operation that would
// overdraw fails without touching state.
package ledger

import (
	"fmt"

	"github.com/nexuslabs/nexus-agents/core"
)

// Store maps agent ids to their asset holdings. It is owned by the
// simulation loop; callers outside the loop only ever see copies.
type Store struct {
	holdings map[string]core.Holdings
}

func NewStore() *Store {
	return &Store{holdings: make(map[string]core.Holdings)}
}

// Register creates an empty ledger entry for a new agent and airdrops the
// given amount of governance tokens.
func (s *Store) Register(agentID string, govAirdrop int) {
	s.holdings[agentID] = core.Holdings{
		FTs:  []core.FungibleToken{{ID: core.GovTokenID, Amount: govAirdrop}},
		NFTs: []core.NonFungibleToken{},
	}
}

// Holdings returns a deep copy of one agent's entry.
func (s *Store) Holdings(agentID string) (core.Holdings, bool) {
	h, ok := s.holdings[agentID]
	if !ok {
		return core.Holdings{}, false
	}
	return copyHoldings(h), true
}

// All returns a deep copy of the entire ledger.
func (s *Store) All() map[string]core.Holdings {
	out := make(map[string]core.Holdings, len(s.holdings))
	for id, h := range s.holdings {
		out[id] = copyHoldings(h)
	}
	return out
}

// Replace swaps in a restored ledger. Used at the persistence boundary.
func (s *Store) Replace(holdings map[string]core.Holdings) {
	s.holdings = make(map[string]core.Holdings, len(holdings))
	for id, h := range holdings {
		s.holdings[id] = copyHoldings(h)
	}
}

// CreditFT adds to an agent's fungible balance, creating the balance entry
// if it does not exist yet.
func (s *Store) CreditFT(agentID, tokenID string, amount int) error {
	h, ok := s.holdings[agentID]
	if !ok {
		return fmt.Errorf("no ledger entry for agent %s", agentID)
	}
	next := copyHoldings(h)
	credit(&next, tokenID, amount)
	s.holdings[agentID] = next
	return nil
}

// DebitFT removes from an agent's fungible balance. Fails without mutating
// if the balance is insufficient.
func (s *Store) DebitFT(agentID, tokenID string, amount int) error {
	h, ok := s.holdings[agentID]
	if !ok {
		return fmt.Errorf("no ledger entry for agent %s", agentID)
	}
	next := copyHoldings(h)
	if err := debit(&next, tokenID, amount); err != nil {
		return err
	}
	s.holdings[agentID] = next
	return nil
}

// Transfer moves a fungible balance between two agents as a single atomic
// debit-then-credit. A transfer that would overdraw the sender is never
// applied.
func (s *Store) Transfer(from, to, tokenID string, amount int) error {
	sender, ok := s.holdings[from]
	if !ok {
		return fmt.Errorf("no ledger entry for sender %s", from)
	}
	receiver, ok := s.holdings[to]
	if !ok {
		return fmt.Errorf("no ledger entry for target %s", to)
	}
	nextSender := copyHoldings(sender)
	if err := debit(&nextSender, tokenID, amount); err != nil {
		return err
	}
	nextReceiver := copyHoldings(receiver)
	credit(&nextReceiver, tokenID, amount)
	s.holdings[from] = nextSender
	s.holdings[to] = nextReceiver
	return nil
}

// MintNFT appends a freshly minted NFT to an agent's holdings. The suffix
// keeps ids unique across repeated mints of the same asset.
func (s *Store) MintNFT(agentID, assetID string, suffix int) (core.NonFungibleToken, error) {
	h, ok := s.holdings[agentID]
	if !ok {
		return core.NonFungibleToken{}, fmt.Errorf("no ledger entry for agent %s", agentID)
	}
	nft := core.NonFungibleToken{
		ID:   fmt.Sprintf("%s-%d", assetID, suffix),
		Name: assetID,
	}
	next := copyHoldings(h)
	next.NFTs = append(next.NFTs, nft)
	s.holdings[agentID] = next
	return nft, nil
}

// Stake moves governance tokens from an agent's liquid balance to its staked
// amount. Fails without mutating if the liquid balance is insufficient.
func (s *Store) Stake(agentID string, amount int) error {
	h, ok := s.holdings[agentID]
	if !ok {
		return fmt.Errorf("no ledger entry for agent %s", agentID)
	}
	next := copyHoldings(h)
	if err := debit(&next, core.GovTokenID, amount); err != nil {
		return err
	}
	next.StakedGov += amount
	s.holdings[agentID] = next
	return nil
}

// Staked returns an agent's staked governance-token amount.
func (s *Store) Staked(agentID string) int {
	return s.holdings[agentID].StakedGov
}

// TotalStaked sums staked governance tokens across all agents.
func (s *Store) TotalStaked() int {
	total := 0
	for _, h := range s.holdings {
		total += h.StakedGov
	}
	return total
}

func credit(h *core.Holdings, tokenID string, amount int) {
	for i := range h.FTs {
		if h.FTs[i].ID == tokenID {
			h.FTs[i].Amount += amount
			return
		}
	}
	h.FTs = append(h.FTs, core.FungibleToken{ID: tokenID, Amount: amount})
}

func debit(h *core.Holdings, tokenID string, amount int) error {
	for i := range h.FTs {
		if h.FTs[i].ID == tokenID {
			if h.FTs[i].Amount < amount {
				return fmt.Errorf("insufficient %s balance: have %d, need %d", tokenID, h.FTs[i].Amount, amount)
			}
			h.FTs[i].Amount -= amount
			return nil
		}
	}
	return fmt.Errorf("no %s balance to debit", tokenID)
}

func copyHoldings(h core.Holdings) core.Holdings {
	out := core.Holdings{
		FTs:       make([]core.FungibleToken, len(h.FTs)),
		NFTs:      make([]core.NonFungibleToken, len(h.NFTs)),
		StakedGov: h.StakedGov,
	}
	copy(out.FTs, h.FTs)
	copy(out.NFTs, h.NFTs)
	return out
}
