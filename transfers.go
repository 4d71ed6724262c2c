package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

func (server *Server) ApproveHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	var request ApproveRequest
	if !server.decodeRequest(w, r, &request) {
		return
	}
	tokenID, err := ParseTokenID(request.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := collection.Approve(server.Authorizer.Address(), common.HexToAddress(request.Spender), tokenID); err != nil {
		server.writeLedgerError(w, err)
		return
	}
	server.writeToken(w, collection, tokenID)
}

func (server *Server) SetApprovalForAllHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	var request ApprovalForAllRequest
	if !server.decodeRequest(w, r, &request) {
		return
	}

	owner := server.Authorizer.Address()
	operator := common.HexToAddress(request.Operator)
	if err := collection.SetApprovalForAll(owner, operator, request.Approved); err != nil {
		server.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OperatorApprovalResponse{
		Owner:    owner.Hex(),
		Operator: operator.Hex(),
		Approved: collection.IsApprovedForAll(owner, operator),
	})
}

// TransferFromHandler moves a token with the server's address as the
// spender, so it needs ownership or an approval granted to that address.
func (server *Server) TransferFromHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	var request TransferFromRequest
	if !server.decodeRequest(w, r, &request) {
		return
	}
	tokenID, err := ParseTokenID(request.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	from, to := common.HexToAddress(request.From), common.HexToAddress(request.To)
	if err := collection.TransferFrom(server.Authorizer.Address(), from, to, tokenID); err != nil {
		server.writeLedgerError(w, err)
		return
	}
	server.writeToken(w, collection, tokenID)
}

func (server *Server) TransferTokenOwnershipHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	var request TransferTokenOwnershipRequest
	if !server.decodeRequest(w, r, &request) {
		return
	}
	tokenID, err := ParseTokenID(request.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := collection.TransferTokenOwnership(server.Authorizer.Address(), tokenID, common.HexToAddress(request.NewOwner)); err != nil {
		server.writeLedgerError(w, err)
		return
	}
	server.writeToken(w, collection, tokenID)
}

func (server *Server) TokenOfOwnerByIndexHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	owner, ok := addressFromPath(w, r, "address")
	if !ok {
		return
	}
	position := r.PathValue("position")
	index, err := strconv.ParseUint(position, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error parsing index: %s", position))
		return
	}

	tokenID, err := collection.TokenOfOwnerByIndex(owner, index)
	if err != nil {
		server.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenOfOwnerByIndexResponse{
		Owner:   owner.Hex(),
		Index:   index,
		TokenID: tokenID,
	})
}

func (server *Server) OperatorApprovalHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	owner, ok := addressFromPath(w, r, "address")
	if !ok {
		return
	}
	operator, ok := addressFromPath(w, r, "operator")
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, OperatorApprovalResponse{
		Owner:    owner.Hex(),
		Operator: operator.Hex(),
		Approved: collection.IsApprovedForAll(owner, operator),
	})
}
