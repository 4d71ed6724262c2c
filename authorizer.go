package main

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/moonstream-to/collectables/ledger"
)

// ClaimAuthorizer signs claim messages that let a recipient take ownership of a
// token held by the authorizer's address.
type ClaimAuthorizer interface {
	Address() common.Address
	CreateMessageHash(recipient common.Address, tokenID uint64, amount *big.Int) (common.Hash, error)
	CreateSignature(recipient common.Address, tokenID uint64, amount *big.Int) ([]byte, error)
}

// KeyAuthorizer is a ClaimAuthorizer backed by a private key held in memory.
type KeyAuthorizer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

func NewKeyAuthorizer(privateKey *ecdsa.PrivateKey) *KeyAuthorizer {
	return &KeyAuthorizer{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}
}

func (authorizer *KeyAuthorizer) Address() common.Address {
	return authorizer.address
}

func (authorizer *KeyAuthorizer) CreateMessageHash(recipient common.Address, tokenID uint64, amount *big.Int) (common.Hash, error) {
	return ledger.GetMessageHash(recipient, tokenID, amount)
}

func (authorizer *KeyAuthorizer) CreateSignature(recipient common.Address, tokenID uint64, amount *big.Int) ([]byte, error) {
	return ledger.SignClaim(authorizer.privateKey, recipient, tokenID, amount)
}
