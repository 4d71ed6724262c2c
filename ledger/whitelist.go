package ledger

import (
	"github.com/ethereum/go-ethereum/common"
)

// The whitelist holds the contract addresses that may receive approvals.
// Approvals to ordinary accounts never consult it.

func (c *Collection) IsWhitelisted(address common.Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.whitelist[address]
	return ok
}

func (c *Collection) AddAddress(caller, address common.Address) error {
	return c.apply("addAddress", func() error {
		if err := c.onlyAdmin(caller); err != nil {
			return err
		}
		c.setWhitelisted(address, true)
		return nil
	})
}

func (c *Collection) RemoveAddress(caller, address common.Address) error {
	return c.apply("removeAddress", func() error {
		if err := c.onlyAdmin(caller); err != nil {
			return err
		}
		c.setWhitelisted(address, false)
		return nil
	})
}

func (c *Collection) setWhitelisted(address common.Address, enabled bool) {
	_, prev := c.whitelist[address]
	c.journal.append(whitelistChange{account: address, prev: prev})
	if enabled {
		c.whitelist[address] = struct{}{}
	} else {
		delete(c.whitelist, address)
	}
}

// mayApprove reports whether target can be granted an approval: ordinary
// accounts always can, contracts only when whitelisted.
func (c *Collection) mayApprove(target common.Address) bool {
	if !c.contracts.IsContract(target) {
		return true
	}
	_, ok := c.whitelist[target]
	return ok
}
