// Package factory deploys and indexes independent collections.
package factory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"github.com/moonstream-to/collectables/ledger"
)

var ErrUnknownCollection = errors.New("unknown collection")

// Factory creates collections and remembers them in deployment order. Each
// collection gets the address a contract created by the factory would get at
// the factory's current nonce.
type Factory struct {
	mu          sync.RWMutex
	address     common.Address
	nonce       uint64
	collections []*ledger.Collection
	byAddress   map[common.Address]int
	options     []ledger.Option
	log         logrus.FieldLogger
}

// New returns a factory deployed at address. options are applied to every
// collection it creates, before any per-call options.
func New(address common.Address, logger logrus.FieldLogger, options ...ledger.Option) *Factory {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Factory{
		address:   address,
		byAddress: make(map[common.Address]int),
		options:   options,
		log:       logger,
	}
}

func (f *Factory) Address() common.Address {
	return f.address
}

// CreateCollection deploys a new collection administered by admin.
func (f *Factory) CreateCollection(admin common.Address, name, symbol, baseURI string, opts ...ledger.Option) (*ledger.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	address := crypto.CreateAddress(f.address, f.nonce)
	options := make([]ledger.Option, 0, len(f.options)+len(opts)+2)
	options = append(options, ledger.WithLogger(f.log))
	options = append(options, f.options...)
	options = append(options, opts...)
	options = append(options, ledger.WithAddress(address))

	collection, err := ledger.NewCollection(admin, name, symbol, baseURI, options...)
	if err != nil {
		return nil, err
	}

	f.nonce++
	f.byAddress[address] = len(f.collections)
	f.collections = append(f.collections, collection)

	f.log.WithFields(logrus.Fields{
		"address": address.Hex(),
		"admin":   admin.Hex(),
		"name":    name,
		"symbol":  symbol,
	}).Info("collection deployed")

	return collection, nil
}

// DeployNewCollection creates a collection and returns its address.
func (f *Factory) DeployNewCollection(admin common.Address, name, symbol, baseURI string) (common.Address, error) {
	collection, err := f.CreateCollection(admin, name, symbol, baseURI)
	if err != nil {
		return common.Address{}, err
	}
	return collection.Address(), nil
}

// ListCollections returns every collection in deployment order.
func (f *Factory) ListCollections() []*ledger.Collection {
	f.mu.RLock()
	defer f.mu.RUnlock()

	collections := make([]*ledger.Collection, len(f.collections))
	copy(collections, f.collections)
	return collections
}

// GetAllCollectionAddresses returns the address of every collection in
// deployment order.
func (f *Factory) GetAllCollectionAddresses() []common.Address {
	f.mu.RLock()
	defer f.mu.RUnlock()

	addresses := make([]common.Address, len(f.collections))
	for i, collection := range f.collections {
		addresses[i] = collection.Address()
	}
	return addresses
}

func (f *Factory) Collection(index int) (*ledger.Collection, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if index < 0 || index >= len(f.collections) {
		return nil, fmt.Errorf("%w: index %d, %d collections deployed", ErrUnknownCollection, index, len(f.collections))
	}
	return f.collections[index], nil
}

func (f *Factory) GetCollectionAddress(index int) (common.Address, error) {
	collection, err := f.Collection(index)
	if err != nil {
		return common.Address{}, err
	}
	return collection.Address(), nil
}

func (f *Factory) CollectionByAddress(address common.Address) (*ledger.Collection, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	index, ok := f.byAddress[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, address.Hex())
	}
	return f.collections[index], nil
}

// IndexOf returns the deployment index of the collection at address.
func (f *Factory) IndexOf(address common.Address) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	index, ok := f.byAddress[address]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCollection, address.Hex())
	}
	return index, nil
}

func (f *Factory) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.collections)
}
