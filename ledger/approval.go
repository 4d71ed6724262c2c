package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Approve lets spender transfer tokenID on the owner's behalf. Approving the
// zero address clears the approval. Contract spenders must be whitelisted.
func (c *Collection) Approve(caller, spender common.Address, tokenID uint64) error {
	return c.apply("approve", func() error {
		owner, err := c.ownerOf(tokenID)
		if err != nil {
			return err
		}
		if caller != owner {
			return fmt.Errorf("%w: %s does not own token %d", ErrNotOwner, caller.Hex(), tokenID)
		}
		if spender != (common.Address{}) && !c.mayApprove(spender) {
			return fmt.Errorf("%w: %s", ErrNotWhitelisted, spender.Hex())
		}

		c.setApproval(tokenID, spender)
		c.emit(Event{Kind: EventApproval, From: owner, To: spender, TokenID: tokenID})
		return nil
	})
}

// GetApproved returns the approved spender of tokenID, or the zero address.
func (c *Collection) GetApproved(tokenID uint64) (common.Address, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.ownerOf(tokenID); err != nil {
		return common.Address{}, err
	}
	return c.tokenApprovals[tokenID], nil
}

// SetApprovalForAll grants or revokes operator's right to transfer every token
// the caller owns. Revoking never consults the whitelist.
func (c *Collection) SetApprovalForAll(caller, operator common.Address, enabled bool) error {
	return c.apply("setApprovalForAll", func() error {
		if operator == caller {
			return fmt.Errorf("%w: cannot set approval for self", ErrInvalidArgument)
		}
		if enabled && !c.mayApprove(operator) {
			return fmt.Errorf("%w: %s", ErrNotWhitelisted, operator.Hex())
		}

		c.journal.append(operatorChange{owner: caller, operator: operator, prev: c.operatorApprovals[caller][operator]})
		c.setOperator(caller, operator, enabled)
		c.emit(Event{Kind: EventApprovalForAll, From: caller, Operator: operator, Approved: enabled})
		return nil
	})
}

func (c *Collection) IsApprovedForAll(owner, operator common.Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.operatorApprovals[owner][operator]
}

func (c *Collection) setApproval(tokenID uint64, spender common.Address) {
	prev := c.tokenApprovals[tokenID]
	if prev == spender {
		return
	}
	c.journal.append(approvalChange{tokenID: tokenID, prev: prev})
	if spender == (common.Address{}) {
		delete(c.tokenApprovals, tokenID)
	} else {
		c.tokenApprovals[tokenID] = spender
	}
}

func (c *Collection) setOperator(owner, operator common.Address, enabled bool) {
	if enabled {
		if c.operatorApprovals[owner] == nil {
			c.operatorApprovals[owner] = make(map[common.Address]bool)
		}
		c.operatorApprovals[owner][operator] = true
		return
	}

	delete(c.operatorApprovals[owner], operator)
	if len(c.operatorApprovals[owner]) == 0 {
		delete(c.operatorApprovals, owner)
	}
}
