package ledger

import (
	"github.com/ethereum/go-ethereum/common"
)

// journalEntry is a modification of collection state that can be reverted on
// demand.
type journalEntry interface {
	revert(*Collection)
}

// journal contains the list of state modifications applied by the operation in
// progress. A failing operation reverts to the snapshot it took on entry.
type journal struct {
	entries []journalEntry
}

func newJournal() *journal {
	return &journal{}
}

func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
}

// revert undoes every entry recorded after snapshot, newest first.
func (j *journal) revert(c *Collection, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		j.entries[i].revert(c)
	}
	j.entries = j.entries[:snapshot]
}

func (j *journal) length() int {
	return len(j.entries)
}

// reset drops all entries once an operation has completed.
func (j *journal) reset() {
	j.entries = j.entries[:0]
}

type (
	ownerChange struct {
		tokenID uint64
		prev    common.Address
		existed bool
	}
	approvalChange struct {
		tokenID uint64
		prev    common.Address
	}
	operatorChange struct {
		owner, operator common.Address
		prev            bool
	}
	metadataChange struct {
		tokenID uint64
		prev    string
		existed bool
	}
	appendTokenChange struct {
		owner   common.Address
		tokenID uint64
	}
	removeTokenChange struct {
		owner   common.Address
		tokenID uint64
		index   int
	}
	supplyChange struct {
		prevSupply uint64
		prevNextID uint64
	}
	adminChange struct {
		prev common.Address
	}
	minterChange struct {
		account common.Address
		prev    bool
	}
	whitelistChange struct {
		account common.Address
		prev    bool
	}
	defaultRoyaltyChange struct {
		prev *RoyaltyInfo
	}
	tokenRoyaltyChange struct {
		tokenID uint64
		prev    *RoyaltyInfo
	}
	addEventChange struct{}
)

func (ch ownerChange) revert(c *Collection) {
	if ch.existed {
		c.owners[ch.tokenID] = ch.prev
	} else {
		delete(c.owners, ch.tokenID)
	}
}

func (ch approvalChange) revert(c *Collection) {
	if ch.prev == (common.Address{}) {
		delete(c.tokenApprovals, ch.tokenID)
	} else {
		c.tokenApprovals[ch.tokenID] = ch.prev
	}
}

func (ch operatorChange) revert(c *Collection) {
	c.setOperator(ch.owner, ch.operator, ch.prev)
}

func (ch metadataChange) revert(c *Collection) {
	if ch.existed {
		c.metadata[ch.tokenID] = ch.prev
	} else {
		delete(c.metadata, ch.tokenID)
	}
}

func (ch appendTokenChange) revert(c *Collection) {
	tokens := c.ownedTokens[ch.owner]
	tokens = tokens[:len(tokens)-1]
	if len(tokens) == 0 {
		delete(c.ownedTokens, ch.owner)
	} else {
		c.ownedTokens[ch.owner] = tokens
	}
	delete(c.ownedIndex, ch.tokenID)
}

// revert reinserts the token at its former position and moves the token that
// was swapped into that slot back to the end.
func (ch removeTokenChange) revert(c *Collection) {
	tokens := append(c.ownedTokens[ch.owner], ch.tokenID)
	last := len(tokens) - 1
	if ch.index != last {
		tokens[ch.index], tokens[last] = tokens[last], tokens[ch.index]
		c.ownedIndex[tokens[last]] = last
	}
	c.ownedIndex[ch.tokenID] = ch.index
	c.ownedTokens[ch.owner] = tokens
}

func (ch supplyChange) revert(c *Collection) {
	c.totalSupply = ch.prevSupply
	c.nextTokenID = ch.prevNextID
}

func (ch adminChange) revert(c *Collection) {
	c.admin = ch.prev
}

func (ch minterChange) revert(c *Collection) {
	if ch.prev {
		c.minters[ch.account] = struct{}{}
	} else {
		delete(c.minters, ch.account)
	}
}

func (ch whitelistChange) revert(c *Collection) {
	if ch.prev {
		c.whitelist[ch.account] = struct{}{}
	} else {
		delete(c.whitelist, ch.account)
	}
}

func (ch defaultRoyaltyChange) revert(c *Collection) {
	c.defaultRoyalty = ch.prev
}

func (ch tokenRoyaltyChange) revert(c *Collection) {
	if ch.prev == nil {
		delete(c.tokenRoyalties, ch.tokenID)
	} else {
		c.tokenRoyalties[ch.tokenID] = ch.prev
	}
}

func (ch addEventChange) revert(c *Collection) {
	c.events = c.events[:len(c.events)-1]
}
