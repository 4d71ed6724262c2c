package main

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"

	"github.com/moonstream-to/collectables/ledger"
)

// RPCContractChecker decides whether an address is a contract by asking an
// Ethereum node for the code deployed at it.
type RPCContractChecker struct {
	HTTPProviderURL string
	Web3Client      *ethclient.Client
	ChainID         *big.Int
	Timeout         time.Duration
	Logger          logrus.FieldLogger
}

type RPCContractCheckerStatus struct {
	HTTPProviderURL string   `json:"httpProviderURL"`
	ChainID         *big.Int `json:"chainID"`
	BlockNumber     uint64   `json:"blockNumber"`
}

func NewRPCContractChecker(ctx context.Context, httpProviderURL string, logger logrus.FieldLogger) (*RPCContractChecker, error) {
	client, err := ethclient.DialContext(ctx, httpProviderURL)
	if err != nil {
		return nil, err
	}

	// eth_chainId returns the chain ID (in hex format) used for transaction signing at the current best block
	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}

	return &RPCContractChecker{
		HTTPProviderURL: httpProviderURL,
		Web3Client:      client,
		ChainID:         chainID,
		Timeout:         10 * time.Second,
		Logger:          logger,
	}, nil
}

// IsContract reports whether code is deployed at address. If the node cannot
// be reached the address is treated as a contract, so approvals to it need
// the whitelist.
func (checker *RPCContractChecker) IsContract(address common.Address) bool {
	ctx, cancel := context.WithTimeout(context.Background(), checker.Timeout)
	defer cancel()

	code, err := checker.Web3Client.CodeAt(ctx, address, nil)
	if err != nil {
		checker.Logger.WithError(err).WithField("address", address.Hex()).Warn("contract code lookup failed")
		return true
	}
	return len(code) > 0
}

func (checker *RPCContractChecker) Status(ctx context.Context) ([]byte, error) {
	// eth_blockNumber returns the number of most recent block
	blockNumber, err := checker.Web3Client.BlockNumber(ctx)
	if err != nil {
		return []byte{}, err
	}

	status := RPCContractCheckerStatus{
		HTTPProviderURL: checker.HTTPProviderURL,
		ChainID:         checker.ChainID,
		BlockNumber:     blockNumber,
	}
	return json.Marshal(status)
}

// AnyContract treats an address as a contract if any of its checkers does.
type AnyContract []ledger.ContractChecker

func (checkers AnyContract) IsContract(address common.Address) bool {
	for _, checker := range checkers {
		if checker.IsContract(address) {
			return true
		}
	}
	return false
}
