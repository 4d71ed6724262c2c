package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// TransferFrom moves tokenID from from to to. The caller must be from, the
// token's approved spender, or an operator approved for all of from's tokens.
func (c *Collection) TransferFrom(caller, from, to common.Address, tokenID uint64) error {
	return c.apply("transferFrom", func() error {
		owner, err := c.ownerOf(tokenID)
		if err != nil {
			return err
		}
		if owner != from {
			return fmt.Errorf("%w: %s does not own token %d", ErrNotOwner, from.Hex(), tokenID)
		}
		approved, hasApproval := c.tokenApprovals[tokenID]
		if caller != from && !(hasApproval && approved == caller) && !c.operatorApprovals[from][caller] {
			return fmt.Errorf("%w: %s may not transfer token %d", ErrUnauthorized, caller.Hex(), tokenID)
		}
		return c.transfer(from, to, tokenID)
	})
}

// TransferTokenOwnership reassigns tokenID to newOwner without consulting
// approvals. It is an administrative correction reserved for authorized
// addresses.
func (c *Collection) TransferTokenOwnership(caller common.Address, tokenID uint64, newOwner common.Address) error {
	return c.apply("transferTokenOwnership", func() error {
		if !c.isAuthorized(caller) {
			return fmt.Errorf("%w: %s cannot reassign tokens", ErrUnauthorized, caller.Hex())
		}
		owner, err := c.ownerOf(tokenID)
		if err != nil {
			return err
		}
		return c.transfer(owner, newOwner, tokenID)
	})
}

// transfer clears the token approval and moves tokenID between owners. Callers
// have already checked that from owns tokenID.
func (c *Collection) transfer(from, to common.Address, tokenID uint64) error {
	if to == (common.Address{}) {
		return fmt.Errorf("%w: cannot transfer to the zero address", ErrInvalidArgument)
	}

	c.setApproval(tokenID, common.Address{})
	c.removeTokenFromOwner(from, tokenID)
	c.setOwner(tokenID, to)
	c.addTokenToOwner(to, tokenID)

	c.emitTransfer(from, to, tokenID)
	return nil
}
