package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Each owner's tokens are kept in a slice with a reverse index from token id to
// slice position, so lookups by position and removals are both O(1). Removal
// swaps the last token into the freed slot, so the order is not stable.

func (c *Collection) addTokenToOwner(owner common.Address, tokenID uint64) {
	c.ownedIndex[tokenID] = len(c.ownedTokens[owner])
	c.ownedTokens[owner] = append(c.ownedTokens[owner], tokenID)
	c.journal.append(appendTokenChange{owner: owner, tokenID: tokenID})
}

func (c *Collection) removeTokenFromOwner(owner common.Address, tokenID uint64) {
	tokens := c.ownedTokens[owner]
	index := c.ownedIndex[tokenID]
	last := len(tokens) - 1

	if index != last {
		moved := tokens[last]
		tokens[index] = moved
		c.ownedIndex[moved] = index
	}
	tokens = tokens[:last]
	if len(tokens) == 0 {
		delete(c.ownedTokens, owner)
	} else {
		c.ownedTokens[owner] = tokens
	}
	delete(c.ownedIndex, tokenID)

	c.journal.append(removeTokenChange{owner: owner, tokenID: tokenID, index: index})
}

// GetTokens returns a snapshot of the ids owned by owner in enumeration order.
func (c *Collection) GetTokens(owner common.Address) []uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tokens := make([]uint64, len(c.ownedTokens[owner]))
	copy(tokens, c.ownedTokens[owner])
	return tokens
}

func (c *Collection) BalanceOf(owner common.Address) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return uint64(len(c.ownedTokens[owner]))
}

func (c *Collection) TokenOfOwnerByIndex(owner common.Address, index uint64) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tokens := c.ownedTokens[owner]
	if index >= uint64(len(tokens)) {
		return 0, fmt.Errorf("%w: index %d, %s owns %d tokens", ErrIndexOutOfRange, index, owner.Hex(), len(tokens))
	}
	return tokens[index], nil
}
