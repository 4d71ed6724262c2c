package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/moonstream-to/collectables/ledger"
)

func collectionResponse(index int, collection *ledger.Collection) CollectionResponse {
	return CollectionResponse{
		Index:       index,
		Address:     collection.Address().Hex(),
		Name:        collection.Name(),
		Symbol:      collection.Symbol(),
		BaseURI:     collection.BaseURI(),
		Owner:       collection.Owner().Hex(),
		TotalSupply: collection.TotalSupply(),
		NextTokenID: collection.NextTokenID(),
	}
}

// collectionFromRequest resolves the {index} path value. On failure the error
// response is already written and the returned collection is nil.
func (server *Server) collectionFromRequest(w http.ResponseWriter, r *http.Request) (int, *ledger.Collection) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error parsing collection index: %s", r.PathValue("index")))
		return 0, nil
	}

	collection, err := server.Factory.Collection(index)
	if err != nil {
		server.writeLedgerError(w, err)
		return 0, nil
	}
	return index, collection
}

func (server *Server) AddressHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AddressResponse{Address: server.Authorizer.Address().Hex()})
}

func (server *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	status := StatusResponse{
		Address:     server.Authorizer.Address().Hex(),
		Factory:     server.Factory.Address().Hex(),
		Collections: server.Factory.Len(),
		Version:     CollectablesVersion(),
	}

	if server.Checker != nil {
		node, err := server.Checker.Status(r.Context())
		if err != nil {
			server.log.WithError(err).Error("node status request failed")
			writeError(w, http.StatusBadGateway, "Unable to reach node")
			return
		}
		status.Node = node
	}

	writeJSON(w, http.StatusOK, status)
}

func (server *Server) CreateCollectionHandler(w http.ResponseWriter, r *http.Request) {
	var request CreateCollectionRequest
	if !server.decodeRequest(w, r, &request) {
		return
	}

	collection, err := server.Factory.CreateCollection(server.Authorizer.Address(), request.Name, request.Symbol, request.BaseURI)
	if err != nil {
		server.writeLedgerError(w, err)
		return
	}
	index, err := server.Factory.IndexOf(collection.Address())
	if err != nil {
		server.writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, collectionResponse(index, collection))
}

func (server *Server) ListCollectionsHandler(w http.ResponseWriter, r *http.Request) {
	collections := server.Factory.ListCollections()
	response := make([]CollectionResponse, len(collections))
	for i, collection := range collections {
		response[i] = collectionResponse(i, collection)
	}
	writeJSON(w, http.StatusOK, response)
}

func (server *Server) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	index, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}
	writeJSON(w, http.StatusOK, collectionResponse(index, collection))
}

const (
	defaultEventsPageSize = 100
	maxEventsPageSize     = 1000
)

func (server *Server) EventsHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	var err error
	query := r.URL.Query()
	var offset uint64
	if raw := query.Get("offset"); raw != "" {
		if offset, err = strconv.ParseUint(raw, 10, 64); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Error parsing offset: %s", raw))
			return
		}
	}
	limit := defaultEventsPageSize
	if raw := query.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit <= 0 || limit > maxEventsPageSize {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxEventsPageSize))
			return
		}
	}

	events, next := collection.EventsFrom(offset, limit)
	writeJSON(w, http.StatusOK, CollectionEventsResponse{Events: events, Next: next})
}

func (server *Server) MintHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	var request MintRequest
	if !server.decodeRequest(w, r, &request) {
		return
	}

	tokenID, err := collection.Mint(server.Authorizer.Address(), common.HexToAddress(request.Recipient), request.MetadataSuffix)
	if err != nil {
		server.writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, MintResponse{TokenIDs: []uint64{tokenID}})
}

func (server *Server) BatchMintHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	var request BatchMintRequest
	if !server.decodeRequest(w, r, &request) {
		return
	}

	if request.Count > ledger.MaxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("count must be at most %d", ledger.MaxBatchSize))
		return
	}
	suffixes := request.MetadataSuffixes
	if suffixes == nil {
		suffixes = make([]string, request.Count)
	}

	tokenIDs, err := collection.BatchMint(server.Authorizer.Address(), common.HexToAddress(request.Recipient), request.Count, suffixes)
	if err != nil {
		server.writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, MintResponse{TokenIDs: tokenIDs})
}

func (server *Server) BurnHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	var request TokenRequest
	if !server.decodeRequest(w, r, &request) {
		return
	}

	tokenID, err := ParseTokenID(request.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := collection.Burn(server.Authorizer.Address(), tokenID); err != nil {
		server.writeLedgerError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (server *Server) TokenHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	tokenID, err := ParseTokenID(r.PathValue("tokenID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	server.writeToken(w, collection, tokenID)
}

// writeToken responds with the current state of tokenID.
func (server *Server) writeToken(w http.ResponseWriter, collection *ledger.Collection, tokenID uint64) {
	owner, err := collection.OwnerOf(tokenID)
	if err != nil {
		server.writeLedgerError(w, err)
		return
	}
	approved, err := collection.GetApproved(tokenID)
	if err != nil {
		server.writeLedgerError(w, err)
		return
	}
	tokenURI, err := collection.TokenURI(tokenID)
	if err != nil {
		server.writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		TokenID:  tokenID,
		Owner:    owner.Hex(),
		Approved: approved.Hex(),
		TokenURI: tokenURI,
	})
}

// addressFromPath parses the named path value as an address. On failure the
// error response is already written.
func addressFromPath(w http.ResponseWriter, r *http.Request, name string) (common.Address, bool) {
	raw := r.PathValue(name)
	if !common.IsHexAddress(raw) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error parsing address: %s", raw))
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func (server *Server) OwnerTokensHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	owner, ok := addressFromPath(w, r, "address")
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, OwnerTokensResponse{
		Owner:    owner.Hex(),
		TokenIDs: collection.GetTokens(owner),
	})
}

func (server *Server) RoyaltyHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	tokenID, err := ParseTokenID(r.PathValue("tokenID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	salePriceRaw := r.URL.Query().Get("salePrice")
	salePrice, parseOK := new(big.Int).SetString(salePriceRaw, 0)
	if !parseOK || salePrice.Sign() < 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error parsing salePrice: %s", salePriceRaw))
		return
	}

	receiver, amount := collection.RoyaltyInfo(tokenID, salePrice)
	writeJSON(w, http.StatusOK, RoyaltyResponse{
		TokenID:   tokenID,
		SalePrice: salePrice.String(),
		Receiver:  receiver.Hex(),
		Amount:    amount.String(),
	})
}

func (server *Server) CreateMessageHashHandler(w http.ResponseWriter, r *http.Request) {
	var request CreateMessageHashRequest
	if !server.decodeRequest(w, r, &request) {
		return
	}

	var params ClaimParameters
	if err := params.ParseCreateMessageHashRequest(&request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	messageHash, err := server.Authorizer.CreateMessageHash(params.Recipient, params.TokenID, params.Amount)
	if err != nil {
		server.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CreateMessageHashResponse{
		Request:     &request,
		MessageHash: messageHash.Hex(),
	})
}

// AuthorizeHandler signs a claim for a token held by the server's address.
// Signatures for tokens held elsewhere would never verify, so they are refused.
func (server *Server) AuthorizeHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	var request CreateMessageHashRequest
	if !server.decodeRequest(w, r, &request) {
		return
	}

	var params ClaimParameters
	if err := params.ParseCreateMessageHashRequest(&request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner, err := collection.OwnerOf(params.TokenID)
	if err != nil {
		server.writeLedgerError(w, err)
		return
	}
	if owner != server.Authorizer.Address() {
		server.writeLedgerError(w, fmt.Errorf("token %d is held by %s: %w", params.TokenID, owner.Hex(), ledger.ErrNotOwner))
		return
	}

	messageHash, err := server.Authorizer.CreateMessageHash(params.Recipient, params.TokenID, params.Amount)
	if err != nil {
		server.writeLedgerError(w, err)
		return
	}
	signature, err := server.Authorizer.CreateSignature(params.Recipient, params.TokenID, params.Amount)
	if err != nil {
		server.log.WithError(err).Error("claim signing failed")
		writeError(w, http.StatusInternalServerError, "Unable to sign claim")
		return
	}

	writeJSON(w, http.StatusOK, AuthorizationResponse{
		Request:     &request,
		MessageHash: messageHash.Hex(),
		Signer:      server.Authorizer.Address().Hex(),
		Signature:   hex.EncodeToString(signature),
	})
}

// ClaimHandler submits a claim on behalf of its recipient.
func (server *Server) ClaimHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	var request ClaimRequest
	if !server.decodeRequest(w, r, &request) {
		return
	}

	var params ClaimParameters
	if err := params.ParseClaimRequest(&request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	claimed, err := collection.GetTokenOwnership(params.Recipient, params.TokenID, params.Amount, params.Signature)
	if err != nil {
		server.writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ClaimResponse{
		Request: &request,
		Owner:   params.Recipient.Hex(),
		Claimed: claimed,
	})
}
