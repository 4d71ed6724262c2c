package ledger

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// ValidateAmount checks that amount is a uint256. Larger values would wrap in
// the packed encoding and alias smaller ones.
func ValidateAmount(amount *big.Int) error {
	if amount == nil {
		return nil
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("%w: amount cannot be negative", ErrInvalidArgument)
	}
	if amount.BitLen() > 256 {
		return fmt.Errorf("%w: amount does not fit in uint256", ErrInvalidArgument)
	}
	return nil
}

// GetMessageHash is the digest a token owner signs to let recipient claim
// tokenID. It is keccak256 over the packed encoding of
// (address recipient, uint256 tokenId, uint256 amount). amount is bound into
// the digest but has no further meaning to the collection. A nil amount is
// zero; amounts outside the uint256 range are rejected.
func GetMessageHash(recipient common.Address, tokenID uint64, amount *big.Int) (common.Hash, error) {
	if err := ValidateAmount(amount); err != nil {
		return common.Hash{}, err
	}
	if amount == nil {
		amount = new(big.Int)
	}
	return crypto.Keccak256Hash(
		recipient.Bytes(),
		math.U256Bytes(new(big.Int).SetUint64(tokenID)),
		math.U256Bytes(new(big.Int).Set(amount)),
	), nil
}

// ClaimDigest returns the personal-message digest ("\x19Ethereum Signed
// Message:\n32" prefix) that is actually signed for hash.
func ClaimDigest(hash common.Hash) []byte {
	return accounts.TextHash(hash.Bytes())
}

// SignClaim signs the claim message for (recipient, tokenID, amount). The v
// byte of the returned signature is 27 or 28.
func SignClaim(key *ecdsa.PrivateKey, recipient common.Address, tokenID uint64, amount *big.Int) ([]byte, error) {
	hash, err := GetMessageHash(recipient, tokenID, amount)
	if err != nil {
		return nil, err
	}
	signature, err := crypto.Sign(ClaimDigest(hash), key)
	if err != nil {
		return nil, err
	}
	// https://github.com/ethereum/go-ethereum/issues/2053
	signature[crypto.RecoveryIDOffset] += 27
	return signature, nil
}

// RecoverSigner returns the address that signed the personal message for hash.
// Both 0/1 and 27/28 v bytes are accepted.
func RecoverSigner(hash common.Hash, signature []byte) (common.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: signature must be %d bytes, got %d", ErrInvalidSignature, crypto.SignatureLength, len(signature))
	}

	normalized := make([]byte, len(signature))
	copy(normalized, signature)
	if normalized[crypto.RecoveryIDOffset] == 27 || normalized[crypto.RecoveryIDOffset] == 28 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}

	pubkey, err := crypto.SigToPub(ClaimDigest(hash), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %s", ErrInvalidSignature, err.Error())
	}
	return crypto.PubkeyToAddress(*pubkey), nil
}

// GetTokenOwnership transfers tokenID to caller if signature is the current
// owner's signature over GetMessageHash(caller, tokenID, amount).
//
// Signatures are not consumed: the same signature remains valid for as long as
// its signer owns the token.
func (c *Collection) GetTokenOwnership(caller common.Address, tokenID uint64, amount *big.Int, signature []byte) (bool, error) {
	err := c.apply("getTokenOwnership", func() error {
		hash, err := GetMessageHash(caller, tokenID, amount)
		if err != nil {
			return err
		}
		owner, err := c.ownerOf(tokenID)
		if err != nil {
			return err
		}

		signer, err := RecoverSigner(hash, signature)
		if err != nil {
			return err
		}
		if signer != owner {
			return fmt.Errorf("%w: signed by %s, token %d is owned by %s", ErrInvalidSignature, signer.Hex(), tokenID, owner.Hex())
		}

		return c.transfer(owner, caller, tokenID)
	})
	return err == nil, err
}
