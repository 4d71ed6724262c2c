package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/moonstream-to/collectables/ledger"
)

type PingResponse struct {
	Status string `json:"status"`
}

type AddressResponse struct {
	Address string `json:"address"`
}

type VersionResponse struct {
	Version string `json:"version"`
}

type StatusResponse struct {
	Address     string          `json:"address"`
	Factory     string          `json:"factory"`
	Collections int             `json:"collections"`
	Version     string          `json:"version"`
	Node        json.RawMessage `json:"node,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateCollectionRequest struct {
	Name    string `json:"name" validate:"required"`
	Symbol  string `json:"symbol" validate:"required"`
	BaseURI string `json:"baseURI"`
}

type CollectionResponse struct {
	Index       int    `json:"index"`
	Address     string `json:"address"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	BaseURI     string `json:"baseURI"`
	Owner       string `json:"owner"`
	TotalSupply uint64 `json:"totalSupply"`
	NextTokenID uint64 `json:"nextTokenID"`
}

type MintRequest struct {
	Recipient      string `json:"recipient" validate:"required,eth_addr"`
	MetadataSuffix string `json:"metadataSuffix"`
}

type BatchMintRequest struct {
	Recipient        string   `json:"recipient" validate:"required,eth_addr"`
	Count            int      `json:"count" validate:"gte=0,lte=1000"`
	MetadataSuffixes []string `json:"metadataSuffixes" validate:"omitempty,max=1000"`
}

type MintResponse struct {
	TokenIDs []uint64 `json:"tokenIDs"`
}

type TokenRequest struct {
	TokenID string `json:"tokenID" validate:"required"`
}

type AddressRequest struct {
	Address string `json:"address" validate:"required,eth_addr"`
}

type ApproveRequest struct {
	Spender string `json:"spender" validate:"required,eth_addr"`
	TokenID string `json:"tokenID" validate:"required"`
}

type ApprovalForAllRequest struct {
	Operator string `json:"operator" validate:"required,eth_addr"`
	Approved bool   `json:"approved"`
}

type TransferFromRequest struct {
	From    string `json:"from" validate:"required,eth_addr"`
	To      string `json:"to" validate:"required,eth_addr"`
	TokenID string `json:"tokenID" validate:"required"`
}

type TransferTokenOwnershipRequest struct {
	TokenID  string `json:"tokenID" validate:"required"`
	NewOwner string `json:"newOwner" validate:"required,eth_addr"`
}

type TransferOwnershipRequest struct {
	NewOwner string `json:"newOwner" validate:"required,eth_addr"`
}

type DefaultRoyaltyRequest struct {
	Receiver     string `json:"receiver" validate:"required,eth_addr"`
	FeeNumerator uint16 `json:"feeNumerator"`
}

type TokenRoyaltyRequest struct {
	TokenID      string `json:"tokenID" validate:"required"`
	Receiver     string `json:"receiver" validate:"required,eth_addr"`
	FeeNumerator uint16 `json:"feeNumerator"`
}

type MintersResponse struct {
	Owner   string   `json:"owner"`
	Minters []string `json:"minters"`
}

type AuthorizedResponse struct {
	Address    string `json:"address"`
	Authorized bool   `json:"authorized"`
}

type WhitelistResponse struct {
	Address     string `json:"address"`
	Whitelisted bool   `json:"whitelisted"`
}

type OperatorApprovalResponse struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

type TokenOfOwnerByIndexResponse struct {
	Owner   string `json:"owner"`
	Index   uint64 `json:"index"`
	TokenID uint64 `json:"tokenID"`
}

type TokenResponse struct {
	TokenID  uint64 `json:"tokenID"`
	Owner    string `json:"owner"`
	Approved string `json:"approved"`
	TokenURI string `json:"tokenURI"`
}

type OwnerTokensResponse struct {
	Owner    string   `json:"owner"`
	TokenIDs []uint64 `json:"tokenIDs"`
}

type RoyaltyResponse struct {
	TokenID   uint64 `json:"tokenID"`
	SalePrice string `json:"salePrice"`
	Receiver  string `json:"receiver"`
	Amount    string `json:"amount"`
}

type CreateMessageHashRequest struct {
	Recipient string `json:"recipient" validate:"required,eth_addr"`
	TokenID   string `json:"tokenID" validate:"required"`
	Amount    string `json:"amount" validate:"required"`
}

type CreateMessageHashResponse struct {
	Request     *CreateMessageHashRequest `json:"request"`
	MessageHash string                    `json:"messageHash"`
}

type ClaimRequest struct {
	CreateMessageHashRequest
	Signature string `json:"signature" validate:"required,hexadecimal"`
}

type ClaimResponse struct {
	Request *ClaimRequest `json:"request"`
	Owner   string        `json:"owner"`
	Claimed bool          `json:"claimed"`
}

type AuthorizationResponse struct {
	Request     *CreateMessageHashRequest `json:"request"`
	MessageHash string                    `json:"messageHash"`
	Signer      string                    `json:"signer"`
	Signature   string                    `json:"signature"`
}

type CollectionEventsResponse struct {
	Events []ledger.Event `json:"events"`
	Next   uint64         `json:"next"`
}

// ClaimParameters are the parsed fields of claim related requests.
type ClaimParameters struct {
	Recipient common.Address
	TokenID   uint64
	Amount    *big.Int
	Signature []byte
}

func (p *ClaimParameters) ParseCreateMessageHashRequest(request *CreateMessageHashRequest) error {
	tokenID, err := ParseTokenID(request.TokenID)
	if err != nil {
		return err
	}

	amount, parseOK := new(big.Int).SetString(request.Amount, 0)
	if !parseOK {
		return fmt.Errorf("Error parsing amount: %s", request.Amount)
	}
	if err := ledger.ValidateAmount(amount); err != nil {
		return fmt.Errorf("Invalid amount %s: %s", request.Amount, err.Error())
	}

	p.Recipient = common.HexToAddress(request.Recipient)
	p.TokenID = tokenID
	p.Amount = amount
	return nil
}

func (p *ClaimParameters) ParseClaimRequest(request *ClaimRequest) error {
	if err := p.ParseCreateMessageHashRequest(&request.CreateMessageHashRequest); err != nil {
		return err
	}

	signature, err := hex.DecodeString(strings.TrimPrefix(request.Signature, "0x"))
	if err != nil {
		return fmt.Errorf("Error decoding signature: %s", err.Error())
	}
	p.Signature = signature
	return nil
}

// ParseTokenID parses a decimal or 0x prefixed hexadecimal token id.
func ParseTokenID(raw string) (uint64, error) {
	tokenID, err := strconv.ParseUint(raw, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("Error parsing tokenID: %s", raw)
	}
	return tokenID, nil
}
