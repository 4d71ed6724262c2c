package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// 10% of one ether
func tenthOfEther() *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil)
}

func (s *CollectionTestSuite) TestRoyaltyInfoUnset() {
	s.mintThree()
	receiver, amount := s.collection.RoyaltyInfo(1, oneEther())
	s.Equal(common.Address{}, receiver)
	s.Zero(amount.Sign())
}

func (s *CollectionTestSuite) TestSetDefaultRoyalty() {
	s.mintThree()
	s.Require().NoError(s.collection.SetDefaultRoyalty(s.owner, s.owner, 1000))

	receiver, amount := s.collection.RoyaltyInfo(1, oneEther())
	s.Equal(s.owner, receiver)
	s.Zero(tenthOfEther().Cmp(amount))
}

func (s *CollectionTestSuite) TestRoyaltyTruncates() {
	s.Require().NoError(s.collection.SetDefaultRoyalty(s.owner, s.address1, 250))

	_, amount := s.collection.RoyaltyInfo(1, big.NewInt(39))
	s.Equal(int64(0), amount.Int64())

	_, amount = s.collection.RoyaltyInfo(1, big.NewInt(1001))
	s.Equal(int64(25), amount.Int64())
}

func (s *CollectionTestSuite) TestSetRoyaltyForToken() {
	s.mintThree()
	s.Require().NoError(s.collection.SetDefaultRoyalty(s.owner, s.address2, 500))
	s.Require().NoError(s.collection.SetRoyaltyForToken(s.owner, 1, s.owner, 1000))

	receiver, amount := s.collection.RoyaltyInfo(1, oneEther())
	s.Equal(s.owner, receiver)
	s.Zero(tenthOfEther().Cmp(amount))

	receiver, amount = s.collection.RoyaltyInfo(2, big.NewInt(10000))
	s.Equal(s.address2, receiver)
	s.Equal(int64(500), amount.Int64())
}

func (s *CollectionTestSuite) TestDeleteDefaultRoyalty() {
	s.mintThree()
	s.Require().NoError(s.collection.SetDefaultRoyalty(s.owner, s.owner, 1000))
	s.Require().NoError(s.collection.SetRoyaltyForToken(s.owner, 2, s.address1, 300))
	s.Require().NoError(s.collection.DeleteDefaultRoyalty(s.owner))

	receiver, amount := s.collection.RoyaltyInfo(1, oneEther())
	s.Equal(common.Address{}, receiver)
	s.Zero(amount.Sign())

	receiver, amount = s.collection.RoyaltyInfo(2, big.NewInt(10000))
	s.Equal(s.address1, receiver)
	s.Equal(int64(300), amount.Int64())
}

func (s *CollectionTestSuite) TestResetTokenRoyalty() {
	s.Require().NoError(s.collection.SetDefaultRoyalty(s.owner, s.owner, 100))
	s.Require().NoError(s.collection.SetRoyaltyForToken(s.owner, 1, s.address1, 900))
	s.Require().NoError(s.collection.ResetTokenRoyalty(s.owner, 1))
	s.Require().NoError(s.collection.ResetTokenRoyalty(s.owner, 1))

	receiver, amount := s.collection.RoyaltyInfo(1, big.NewInt(10000))
	s.Equal(s.owner, receiver)
	s.Equal(int64(100), amount.Int64())
}

func (s *CollectionTestSuite) TestRoyaltyValidation() {
	s.ErrorIs(s.collection.SetDefaultRoyalty(s.owner, s.owner, 10001), ErrInvalidArgument)
	s.ErrorIs(s.collection.SetRoyaltyForToken(s.owner, 1, s.owner, 10001), ErrInvalidArgument)
	s.ErrorIs(s.collection.SetDefaultRoyalty(s.owner, common.Address{}, 100), ErrInvalidArgument)
	s.NoError(s.collection.SetDefaultRoyalty(s.owner, s.owner, FeeDenominator))

	s.ErrorIs(s.collection.SetDefaultRoyalty(s.address1, s.address1, 100), ErrUnauthorized)
	s.ErrorIs(s.collection.SetRoyaltyForToken(s.address1, 1, s.address1, 100), ErrUnauthorized)
	s.ErrorIs(s.collection.DeleteDefaultRoyalty(s.address1), ErrUnauthorized)
	s.ErrorIs(s.collection.ResetTokenRoyalty(s.address1, 1), ErrUnauthorized)

	receiver, amount := s.collection.RoyaltyInfo(1, big.NewInt(7))
	s.Equal(s.owner, receiver)
	s.Equal(int64(7), amount.Int64())
}
