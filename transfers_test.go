package main

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
)

func (s *ServerTestSuite) token(tokenID string) TokenResponse {
	recorder := s.do(http.MethodGet, "/collections/0/tokens/"+tokenID, nil)
	s.Require().Equal(http.StatusOK, recorder.Code, recorder.Body.String())
	var token TokenResponse
	s.decode(recorder, &token)
	return token
}

func (s *ServerTestSuite) mintToRecipient(count int) {
	recorder := s.do(http.MethodPost, "/collections/0/batch_mint", BatchMintRequest{Recipient: s.recipient.Hex(), Count: count})
	s.Require().Equal(http.StatusCreated, recorder.Code, recorder.Body.String())
}

func (s *ServerTestSuite) TestApprove() {
	s.createCollection()
	s.mintToOperator()
	s.mintToRecipient(1)

	recorder := s.do(http.MethodPost, "/collections/0/approve", ApproveRequest{Spender: s.recipient.Hex(), TokenID: "1"})
	s.Require().Equal(http.StatusOK, recorder.Code, recorder.Body.String())
	var token TokenResponse
	s.decode(recorder, &token)
	s.Equal(s.recipient.Hex(), token.Approved)
	s.Equal(s.recipient.Hex(), s.token("1").Approved)

	// token 2 belongs to the recipient
	s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/collections/0/approve", ApproveRequest{Spender: s.operator.Hex(), TokenID: "2"}).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/collections/0/approve", ApproveRequest{Spender: s.recipient.Hex(), TokenID: "9"}).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/collections/0/approve", ApproveRequest{Spender: "nobody", TokenID: "1"}).Code)

	recorder = s.do(http.MethodPost, "/collections/0/approve", ApproveRequest{Spender: common.Address{}.Hex(), TokenID: "1"})
	s.Require().Equal(http.StatusOK, recorder.Code, recorder.Body.String())
	s.Equal(common.Address{}.Hex(), s.token("1").Approved)
}

func (s *ServerTestSuite) TestSetApprovalForAll() {
	s.createCollection()
	operatorPath := "/collections/0/owners/" + s.operator.Hex() + "/operators/" + s.recipient.Hex()

	var approval OperatorApprovalResponse
	recorder := s.do(http.MethodGet, operatorPath, nil)
	s.Require().Equal(http.StatusOK, recorder.Code)
	s.decode(recorder, &approval)
	s.False(approval.Approved)

	recorder = s.do(http.MethodPost, "/collections/0/set_approval_for_all", ApprovalForAllRequest{Operator: s.recipient.Hex(), Approved: true})
	s.Require().Equal(http.StatusOK, recorder.Code, recorder.Body.String())
	s.decode(recorder, &approval)
	s.True(approval.Approved)
	s.Equal(s.operator.Hex(), approval.Owner)

	recorder = s.do(http.MethodGet, operatorPath, nil)
	s.Require().Equal(http.StatusOK, recorder.Code)
	s.decode(recorder, &approval)
	s.True(approval.Approved)

	recorder = s.do(http.MethodPost, "/collections/0/set_approval_for_all", ApprovalForAllRequest{Operator: s.recipient.Hex(), Approved: false})
	s.Require().Equal(http.StatusOK, recorder.Code, recorder.Body.String())
	s.decode(recorder, &approval)
	s.False(approval.Approved)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/collections/0/set_approval_for_all", ApprovalForAllRequest{Operator: s.operator.Hex(), Approved: true}).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/collections/0/owners/"+s.operator.Hex()+"/operators/nobody", nil).Code)
}

func (s *ServerTestSuite) TestTransferFrom() {
	s.createCollection()
	s.mintToOperator()

	zero := TransferFromRequest{From: s.operator.Hex(), To: common.Address{}.Hex(), TokenID: "1"}
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/collections/0/transfer_from", zero).Code)

	request := TransferFromRequest{From: s.operator.Hex(), To: s.recipient.Hex(), TokenID: "1"}
	recorder := s.do(http.MethodPost, "/collections/0/transfer_from", request)
	s.Require().Equal(http.StatusOK, recorder.Code, recorder.Body.String())
	var token TokenResponse
	s.decode(recorder, &token)
	s.Equal(s.recipient.Hex(), token.Owner)

	// the operator is neither the holder nor approved any more
	s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/collections/0/transfer_from", request).Code)
	back := TransferFromRequest{From: s.recipient.Hex(), To: s.operator.Hex(), TokenID: "1"}
	s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/collections/0/transfer_from", back).Code)
	s.Equal(s.recipient.Hex(), s.token("1").Owner)

	request.TokenID = "2"
	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/collections/0/transfer_from", request).Code)
}

func (s *ServerTestSuite) TestTransferTokenOwnership() {
	s.createCollection()
	s.mintToRecipient(1)

	recorder := s.do(http.MethodPost, "/collections/0/transfer_token_ownership", TransferTokenOwnershipRequest{TokenID: "1", NewOwner: s.operator.Hex()})
	s.Require().Equal(http.StatusOK, recorder.Code, recorder.Body.String())
	var token TokenResponse
	s.decode(recorder, &token)
	s.Equal(s.operator.Hex(), token.Owner)

	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/collections/0/transfer_token_ownership", TransferTokenOwnershipRequest{TokenID: "5", NewOwner: s.operator.Hex()}).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/collections/0/transfer_token_ownership", TransferTokenOwnershipRequest{TokenID: "1"}).Code)
}

func (s *ServerTestSuite) TestTokenOfOwnerByIndex() {
	s.createCollection()
	s.mintToRecipient(3)
	base := "/collections/0/owners/" + s.recipient.Hex() + "/tokens/"

	recorder := s.do(http.MethodGet, base+"1", nil)
	s.Require().Equal(http.StatusOK, recorder.Code, recorder.Body.String())
	var response TokenOfOwnerByIndexResponse
	s.decode(recorder, &response)
	s.Equal(uint64(1), response.Index)
	s.Equal(uint64(2), response.TokenID)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, base+"3", nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, base+"first", nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/collections/0/owners/nobody/tokens/0", nil).Code)
}
