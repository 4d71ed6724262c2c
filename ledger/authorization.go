package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Owner returns the administrative owner of the collection.
func (c *Collection) Owner() common.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.admin
}

// IsAuthorized reports whether address may mint. The administrative owner is
// always authorized, whether or not it is in the minter set.
func (c *Collection) IsAuthorized(address common.Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isAuthorized(address)
}

func (c *Collection) isAuthorized(address common.Address) bool {
	if address == c.admin {
		return true
	}
	_, ok := c.minters[address]
	return ok
}

func (c *Collection) onlyAdmin(caller common.Address) error {
	if caller != c.admin {
		return fmt.Errorf("%w: %s is not the collection owner", ErrUnauthorized, caller.Hex())
	}
	return nil
}

func (c *Collection) AddAuthorized(caller, address common.Address) error {
	return c.apply("addAuthorized", func() error {
		if err := c.onlyAdmin(caller); err != nil {
			return err
		}
		c.setMinter(address, true)
		return nil
	})
}

func (c *Collection) RemoveAuthorized(caller, address common.Address) error {
	return c.apply("removeAuthorized", func() error {
		if err := c.onlyAdmin(caller); err != nil {
			return err
		}
		c.setMinter(address, false)
		return nil
	})
}

// Minters returns the explicit minter set. The administrative owner is not
// included unless it was added explicitly.
func (c *Collection) Minters() []common.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()

	minters := make([]common.Address, 0, len(c.minters))
	for minter := range c.minters {
		minters = append(minters, minter)
	}
	return minters
}

// TransferOwnership hands the administrative role to newOwner.
func (c *Collection) TransferOwnership(caller, newOwner common.Address) error {
	return c.apply("transferOwnership", func() error {
		if err := c.onlyAdmin(caller); err != nil {
			return err
		}
		if newOwner == (common.Address{}) {
			return fmt.Errorf("%w: new owner is the zero address", ErrInvalidArgument)
		}
		c.journal.append(adminChange{prev: c.admin})
		previous := c.admin
		c.admin = newOwner
		c.emit(Event{Kind: EventOwnershipTransferred, From: previous, To: newOwner})
		return nil
	})
}

func (c *Collection) setMinter(address common.Address, enabled bool) {
	_, prev := c.minters[address]
	c.journal.append(minterChange{account: address, prev: prev})
	if enabled {
		c.minters[address] = struct{}{}
	} else {
		delete(c.minters, address)
	}
}
