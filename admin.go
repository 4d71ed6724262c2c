package main

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/moonstream-to/collectables/ledger"
)

// adminAction decodes an address request and applies op with the server's
// address as the caller. Successful changes respond with 204.
func (server *Server) adminAction(op func(collection *ledger.Collection, caller, address common.Address) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, collection := server.collectionFromRequest(w, r)
		if collection == nil {
			return
		}

		var request AddressRequest
		if !server.decodeRequest(w, r, &request) {
			return
		}

		if err := op(collection, server.Authorizer.Address(), common.HexToAddress(request.Address)); err != nil {
			server.writeLedgerError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (server *Server) AddAuthorizedHandler() http.HandlerFunc {
	return server.adminAction((*ledger.Collection).AddAuthorized)
}

func (server *Server) RemoveAuthorizedHandler() http.HandlerFunc {
	return server.adminAction((*ledger.Collection).RemoveAuthorized)
}

func (server *Server) AddAddressHandler() http.HandlerFunc {
	return server.adminAction((*ledger.Collection).AddAddress)
}

func (server *Server) RemoveAddressHandler() http.HandlerFunc {
	return server.adminAction((*ledger.Collection).RemoveAddress)
}

func (server *Server) TransferOwnershipHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	var request TransferOwnershipRequest
	if !server.decodeRequest(w, r, &request) {
		return
	}

	if err := collection.TransferOwnership(server.Authorizer.Address(), common.HexToAddress(request.NewOwner)); err != nil {
		server.writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (server *Server) MintersHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	minters := collection.Minters()
	response := MintersResponse{
		Owner:   collection.Owner().Hex(),
		Minters: make([]string, len(minters)),
	}
	for i, minter := range minters {
		response.Minters[i] = minter.Hex()
	}
	writeJSON(w, http.StatusOK, response)
}

func (server *Server) AuthorizedHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	address, ok := addressFromPath(w, r, "address")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, AuthorizedResponse{
		Address:    address.Hex(),
		Authorized: collection.IsAuthorized(address),
	})
}

func (server *Server) WhitelistHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	address, ok := addressFromPath(w, r, "address")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, WhitelistResponse{
		Address:     address.Hex(),
		Whitelisted: collection.IsWhitelisted(address),
	})
}

func (server *Server) SetDefaultRoyaltyHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	var request DefaultRoyaltyRequest
	if !server.decodeRequest(w, r, &request) {
		return
	}

	if err := collection.SetDefaultRoyalty(server.Authorizer.Address(), common.HexToAddress(request.Receiver), request.FeeNumerator); err != nil {
		server.writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (server *Server) DeleteDefaultRoyaltyHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	if err := collection.DeleteDefaultRoyalty(server.Authorizer.Address()); err != nil {
		server.writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (server *Server) SetTokenRoyaltyHandler(w http.ResponseWriter, r *http.Request) {
	_, collection := server.collectionFromRequest(w, r)
	if collection == nil {
		return
	}

	var request TokenRoyaltyRequest
	if !server.decodeRequest(w, r, &request) {
		return
	}
	tokenID, err := ParseTokenID(request.TokenID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := collection.SetRoyaltyForToken(server.Authorizer.Address(), tokenID, common.HexToAddress(request.Receiver), request.FeeNumerator); err != nil {
		server.writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (server *Server) ResetTokenRoyaltyHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := collection.ResetTokenRoyalty(server.Authorizer.Address(), tokenID); err != nil {
		server.writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
