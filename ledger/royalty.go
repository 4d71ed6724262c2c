package ledger

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// FeeDenominator is the basis-point denominator of royalty fractions.
const FeeDenominator uint16 = 10000

type RoyaltyInfo struct {
	Receiver        common.Address `json:"receiver"`
	RoyaltyFraction uint16         `json:"royaltyFraction"`
}

func newRoyaltyInfo(receiver common.Address, feeNumerator uint16) (*RoyaltyInfo, error) {
	if feeNumerator > FeeDenominator {
		return nil, fmt.Errorf("%w: royalty fee %d exceeds %d", ErrInvalidArgument, feeNumerator, FeeDenominator)
	}
	if receiver == (common.Address{}) {
		return nil, fmt.Errorf("%w: royalty receiver is the zero address", ErrInvalidArgument)
	}
	return &RoyaltyInfo{Receiver: receiver, RoyaltyFraction: feeNumerator}, nil
}

// SetDefaultRoyalty sets the royalty that applies to every token without an
// override.
func (c *Collection) SetDefaultRoyalty(caller, receiver common.Address, feeNumerator uint16) error {
	return c.apply("setDefaultRoyalty", func() error {
		if err := c.onlyAdmin(caller); err != nil {
			return err
		}
		info, err := newRoyaltyInfo(receiver, feeNumerator)
		if err != nil {
			return err
		}
		c.journal.append(defaultRoyaltyChange{prev: c.defaultRoyalty})
		c.defaultRoyalty = info
		return nil
	})
}

// DeleteDefaultRoyalty removes the default royalty. Per-token overrides are
// kept.
func (c *Collection) DeleteDefaultRoyalty(caller common.Address) error {
	return c.apply("deleteDefaultRoyalty", func() error {
		if err := c.onlyAdmin(caller); err != nil {
			return err
		}
		c.journal.append(defaultRoyaltyChange{prev: c.defaultRoyalty})
		c.defaultRoyalty = nil
		return nil
	})
}

// SetRoyaltyForToken overrides the default royalty for tokenID.
func (c *Collection) SetRoyaltyForToken(caller common.Address, tokenID uint64, receiver common.Address, feeNumerator uint16) error {
	return c.apply("setRoyaltyForToken", func() error {
		if err := c.onlyAdmin(caller); err != nil {
			return err
		}
		info, err := newRoyaltyInfo(receiver, feeNumerator)
		if err != nil {
			return err
		}
		c.journal.append(tokenRoyaltyChange{tokenID: tokenID, prev: c.tokenRoyalties[tokenID]})
		c.tokenRoyalties[tokenID] = info
		return nil
	})
}

// ResetTokenRoyalty removes the override for tokenID so the default applies
// again.
func (c *Collection) ResetTokenRoyalty(caller common.Address, tokenID uint64) error {
	return c.apply("resetTokenRoyalty", func() error {
		if err := c.onlyAdmin(caller); err != nil {
			return err
		}
		prev, ok := c.tokenRoyalties[tokenID]
		if !ok {
			return nil
		}
		c.journal.append(tokenRoyaltyChange{tokenID: tokenID, prev: prev})
		delete(c.tokenRoyalties, tokenID)
		return nil
	})
}

// RoyaltyInfo returns the receiver and amount owed on a sale of tokenID at
// salePrice. The amount is salePrice * fee / 10000, truncated. With neither an
// override nor a default it returns the zero address and zero.
func (c *Collection) RoyaltyInfo(tokenID uint64, salePrice *big.Int) (common.Address, *big.Int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, ok := c.tokenRoyalties[tokenID]
	if !ok {
		info = c.defaultRoyalty
	}
	if info == nil {
		return common.Address{}, new(big.Int)
	}
	if salePrice == nil {
		return info.Receiver, new(big.Int)
	}

	amount := new(big.Int).Mul(salePrice, big.NewInt(int64(info.RoyaltyFraction)))
	amount.Quo(amount, big.NewInt(int64(FeeDenominator)))
	return info.Receiver, amount
}
