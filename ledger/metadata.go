package ledger

import (
	"strconv"
)

// TokenURI returns baseURI + tokenID + ".json". Tokens minted with a metadata
// suffix resolve to baseURI + suffix instead.
func (c *Collection) TokenURI(tokenID uint64) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.ownerOf(tokenID); err != nil {
		return "", err
	}
	if suffix, ok := c.metadata[tokenID]; ok {
		return c.baseURI + suffix, nil
	}
	return c.baseURI + strconv.FormatUint(tokenID, 10) + ".json", nil
}
