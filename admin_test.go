package main

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/moonstream-to/collectables/factory"
	"github.com/moonstream-to/collectables/ledger"
)

func (s *ServerTestSuite) royalty(tokenID string) RoyaltyResponse {
	recorder := s.do(http.MethodGet, "/collections/0/royalty/"+tokenID+"?salePrice=1000000000000000000", nil)
	s.Require().Equal(http.StatusOK, recorder.Code, recorder.Body.String())
	var royalty RoyaltyResponse
	s.decode(recorder, &royalty)
	return royalty
}

func (s *ServerTestSuite) TestAuthorizedMinters() {
	s.createCollection()

	var minters MintersResponse
	recorder := s.do(http.MethodGet, "/collections/0/authorized", nil)
	s.Require().Equal(http.StatusOK, recorder.Code)
	s.decode(recorder, &minters)
	s.Equal(s.operator.Hex(), minters.Owner)
	s.Empty(minters.Minters)

	s.Require().Equal(http.StatusNoContent, s.do(http.MethodPost, "/collections/0/add_authorized", AddressRequest{Address: s.recipient.Hex()}).Code)

	recorder = s.do(http.MethodGet, "/collections/0/authorized", nil)
	s.Require().Equal(http.StatusOK, recorder.Code)
	s.decode(recorder, &minters)
	s.Equal([]string{s.recipient.Hex()}, minters.Minters)

	var authorized AuthorizedResponse
	recorder = s.do(http.MethodGet, "/collections/0/authorized/"+s.recipient.Hex(), nil)
	s.Require().Equal(http.StatusOK, recorder.Code)
	s.decode(recorder, &authorized)
	s.True(authorized.Authorized)

	s.Require().Equal(http.StatusNoContent, s.do(http.MethodPost, "/collections/0/remove_authorized", AddressRequest{Address: s.recipient.Hex()}).Code)
	recorder = s.do(http.MethodGet, "/collections/0/authorized/"+s.recipient.Hex(), nil)
	s.Require().Equal(http.StatusOK, recorder.Code)
	s.decode(recorder, &authorized)
	s.False(authorized.Authorized)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/collections/0/add_authorized", AddressRequest{Address: "nobody"}).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/collections/4/add_authorized", AddressRequest{Address: s.recipient.Hex()}).Code)
}

func (s *ServerTestSuite) TestWhitelistGatesContractApprovals() {
	contract := common.HexToAddress("0xC0C0C0C0C0C0C0C0C0C0C0C0C0C0C0C0C0C0C0C0")
	s.server.Factory = factory.New(common.HexToAddress("0xFAFAFAFAFAFAFAFAFAFAFAFAFAFAFAFAFAFAFAFA"), quietLogger(),
		ledger.WithContractChecker(ledger.NewStaticContracts(contract)),
	)
	s.createCollection()
	s.mintToOperator()
	whitelistPath := "/collections/0/whitelist/" + contract.Hex()

	approve := ApproveRequest{Spender: contract.Hex(), TokenID: "1"}
	s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/collections/0/approve", approve).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/collections/0/set_approval_for_all", ApprovalForAllRequest{Operator: contract.Hex(), Approved: true}).Code)

	s.Require().Equal(http.StatusNoContent, s.do(http.MethodPost, "/collections/0/add_address", AddressRequest{Address: contract.Hex()}).Code)
	var whitelisted WhitelistResponse
	recorder := s.do(http.MethodGet, whitelistPath, nil)
	s.Require().Equal(http.StatusOK, recorder.Code)
	s.decode(recorder, &whitelisted)
	s.True(whitelisted.Whitelisted)

	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/collections/0/approve", approve).Code)
	s.Equal(contract.Hex(), s.token("1").Approved)

	s.Require().Equal(http.StatusNoContent, s.do(http.MethodPost, "/collections/0/remove_address", AddressRequest{Address: contract.Hex()}).Code)
	recorder = s.do(http.MethodGet, whitelistPath, nil)
	s.Require().Equal(http.StatusOK, recorder.Code)
	s.decode(recorder, &whitelisted)
	s.False(whitelisted.Whitelisted)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/collections/0/whitelist/nobody", nil).Code)
}

func (s *ServerTestSuite) TestRoyaltyAdministration() {
	s.createCollection()
	s.mintToOperator()
	other := common.HexToAddress("0x2222222222222222222222222222222222222222")

	s.Require().Equal(http.StatusNoContent, s.do(http.MethodPost, "/collections/0/set_default_royalty", DefaultRoyaltyRequest{Receiver: s.recipient.Hex(), FeeNumerator: 1000}).Code)
	royalty := s.royalty("1")
	s.Equal(s.recipient.Hex(), royalty.Receiver)
	s.Equal("100000000000000000", royalty.Amount)

	s.Require().Equal(http.StatusNoContent, s.do(http.MethodPost, "/collections/0/set_token_royalty", TokenRoyaltyRequest{TokenID: "1", Receiver: other.Hex(), FeeNumerator: 500}).Code)
	royalty = s.royalty("1")
	s.Equal(other.Hex(), royalty.Receiver)
	s.Equal("50000000000000000", royalty.Amount)
	s.Equal(s.recipient.Hex(), s.royalty("2").Receiver)

	s.Require().Equal(http.StatusNoContent, s.do(http.MethodPost, "/collections/0/reset_token_royalty", TokenRequest{TokenID: "1"}).Code)
	s.Equal(s.recipient.Hex(), s.royalty("1").Receiver)

	s.Require().Equal(http.StatusNoContent, s.do(http.MethodPost, "/collections/0/delete_default_royalty", nil).Code)
	royalty = s.royalty("1")
	s.Equal(common.Address{}.Hex(), royalty.Receiver)
	s.Equal("0", royalty.Amount)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/collections/0/set_default_royalty", DefaultRoyaltyRequest{Receiver: s.recipient.Hex(), FeeNumerator: ledger.FeeDenominator + 1}).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/collections/0/set_token_royalty", TokenRoyaltyRequest{TokenID: "1", Receiver: common.Address{}.Hex(), FeeNumerator: 100}).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/collections/0/reset_token_royalty", TokenRequest{TokenID: "one"}).Code)
}

func (s *ServerTestSuite) TestTransferOwnershipRevokesAdministration() {
	s.createCollection()
	s.mintToRecipient(1)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/collections/0/transfer_ownership", TransferOwnershipRequest{NewOwner: common.Address{}.Hex()}).Code)
	s.Require().Equal(http.StatusNoContent, s.do(http.MethodPost, "/collections/0/transfer_ownership", TransferOwnershipRequest{NewOwner: s.recipient.Hex()}).Code)

	var collection CollectionResponse
	recorder := s.do(http.MethodGet, "/collections/0", nil)
	s.Require().Equal(http.StatusOK, recorder.Code)
	s.decode(recorder, &collection)
	s.Equal(s.recipient.Hex(), collection.Owner)

	forbidden := map[string]interface{}{
		"/collections/0/transfer_ownership":       TransferOwnershipRequest{NewOwner: s.operator.Hex()},
		"/collections/0/add_authorized":           AddressRequest{Address: s.operator.Hex()},
		"/collections/0/remove_authorized":        AddressRequest{Address: s.operator.Hex()},
		"/collections/0/add_address":              AddressRequest{Address: s.operator.Hex()},
		"/collections/0/remove_address":           AddressRequest{Address: s.operator.Hex()},
		"/collections/0/set_default_royalty":      DefaultRoyaltyRequest{Receiver: s.operator.Hex(), FeeNumerator: 100},
		"/collections/0/delete_default_royalty":   nil,
		"/collections/0/set_token_royalty":        TokenRoyaltyRequest{TokenID: "1", Receiver: s.operator.Hex(), FeeNumerator: 100},
		"/collections/0/reset_token_royalty":      TokenRequest{TokenID: "1"},
		"/collections/0/transfer_token_ownership": TransferTokenOwnershipRequest{TokenID: "1", NewOwner: s.operator.Hex()},
	}
	for path, body := range forbidden {
		recorder := s.do(http.MethodPost, path, body)
		s.Equal(http.StatusForbidden, recorder.Code, path)
	}
	s.Equal(s.recipient.Hex(), s.token("1").Owner)
}
