// Package ledger implements an enumerable NFT collection: role-gated minting,
// whitelist-gated approvals to contracts, signed ownership claims and ERC2981
// style royalty accounting.
//
// Every mutating operation takes the calling address as its first argument and
// is atomic: when it returns an error the collection is left exactly as it was.
package ledger

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// FirstTokenID is the id assigned by the first mint of every collection.
const FirstTokenID uint64 = 1

// MaxBatchSize bounds the number of tokens a single BatchMint may create.
const MaxBatchSize = 1000

// ContractChecker reports whether an address holds contract code. Approvals to
// contract addresses are gated by the collection whitelist.
type ContractChecker interface {
	IsContract(address common.Address) bool
}

// StaticContracts is a ContractChecker over a fixed set of addresses.
type StaticContracts map[common.Address]struct{}

func NewStaticContracts(addresses ...common.Address) StaticContracts {
	contracts := make(StaticContracts, len(addresses))
	for _, address := range addresses {
		contracts[address] = struct{}{}
	}
	return contracts
}

func (s StaticContracts) IsContract(address common.Address) bool {
	_, ok := s[address]
	return ok
}

type Collection struct {
	mu sync.RWMutex

	address common.Address
	name    string
	symbol  string
	baseURI string

	admin     common.Address
	minters   map[common.Address]struct{}
	whitelist map[common.Address]struct{}

	nextTokenID uint64
	totalSupply uint64

	owners            map[uint64]common.Address
	tokenApprovals    map[uint64]common.Address
	operatorApprovals map[common.Address]map[common.Address]bool
	metadata          map[uint64]string

	ownedTokens map[common.Address][]uint64
	ownedIndex  map[uint64]int

	defaultRoyalty *RoyaltyInfo
	tokenRoyalties map[uint64]*RoyaltyInfo

	// events holds the retained tail of the log; eventBase is the sequence
	// number of events[0].
	events         []Event
	eventBase      uint64
	eventRetention int
	journal        *journal

	contracts ContractChecker
	sink      EventSink
	log       logrus.FieldLogger
}

type Option func(*Collection)

// WithContractChecker sets how the collection tells contracts from ordinary
// accounts. Without it no address is treated as a contract.
func WithContractChecker(checker ContractChecker) Option {
	return func(c *Collection) {
		c.contracts = checker
	}
}

func WithEventSink(sink EventSink) Option {
	return func(c *Collection) {
		c.sink = sink
	}
}

// WithEventRetention keeps at most n events in memory. Older events are
// dropped once an operation commits. n <= 0 keeps every event.
func WithEventRetention(n int) Option {
	return func(c *Collection) {
		c.eventRetention = n
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Collection) {
		c.log = logger
	}
}

// WithAddress sets the address the collection is deployed at.
func WithAddress(address common.Address) Option {
	return func(c *Collection) {
		c.address = address
	}
}

// NewCollection creates an empty collection administered by admin.
func NewCollection(admin common.Address, name, symbol, baseURI string, opts ...Option) (*Collection, error) {
	if admin == (common.Address{}) {
		return nil, fmt.Errorf("%w: admin cannot be the zero address", ErrInvalidArgument)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidArgument)
	}
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol cannot be empty", ErrInvalidArgument)
	}

	c := &Collection{
		name:              name,
		symbol:            symbol,
		baseURI:           baseURI,
		admin:             admin,
		minters:           make(map[common.Address]struct{}),
		whitelist:         make(map[common.Address]struct{}),
		nextTokenID:       FirstTokenID,
		owners:            make(map[uint64]common.Address),
		tokenApprovals:    make(map[uint64]common.Address),
		operatorApprovals: make(map[common.Address]map[common.Address]bool),
		metadata:          make(map[uint64]string),
		ownedTokens:       make(map[common.Address][]uint64),
		ownedIndex:        make(map[uint64]int),
		tokenRoyalties:    make(map[uint64]*RoyaltyInfo),
		eventRetention:    DefaultEventRetention,
		journal:           newJournal(),
		contracts:         StaticContracts{},
		log:               logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithFields(logrus.Fields{"collection": c.symbol, "address": c.address.Hex()})

	return c, nil
}

// apply runs op under the write lock. If op fails, or the event sink rejects
// the events op emitted, every change op made is reverted.
func (c *Collection) apply(name string, op func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.journal.length()
	firstEvent := len(c.events)

	if err := op(); err != nil {
		c.journal.revert(c, snapshot)
		c.log.WithError(err).WithField("op", name).Debug("operation reverted")
		return err
	}

	if c.sink != nil && len(c.events) > firstEvent {
		published := make([]Event, len(c.events)-firstEvent)
		copy(published, c.events[firstEvent:])
		if err := c.sink.Publish(published); err != nil {
			c.journal.revert(c, snapshot)
			c.log.WithError(err).WithField("op", name).Warn("event sink rejected operation")
			return fmt.Errorf("publishing %s events: %w", name, err)
		}
	}

	c.journal.reset()
	c.trimEvents()
	c.log.WithField("op", name).Debug("operation applied")
	return nil
}

func (c *Collection) Address() common.Address {
	return c.address
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) Symbol() string {
	return c.symbol
}

func (c *Collection) BaseURI() string {
	return c.baseURI
}

func (c *Collection) TotalSupply() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalSupply
}

// NextTokenID returns the id the next mint will assign.
func (c *Collection) NextTokenID() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nextTokenID
}

func (c *Collection) Exists(tokenID uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.owners[tokenID]
	return ok
}

func (c *Collection) OwnerOf(tokenID uint64) (common.Address, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ownerOf(tokenID)
}

func (c *Collection) ownerOf(tokenID uint64) (common.Address, error) {
	owner, ok := c.owners[tokenID]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %d", ErrUnknownToken, tokenID)
	}
	return owner, nil
}

// Mint assigns the next token id to recipient.
func (c *Collection) Mint(caller, recipient common.Address, metadataSuffix string) (uint64, error) {
	var tokenID uint64
	err := c.apply("mint", func() error {
		var mintErr error
		tokenID, mintErr = c.mint(caller, recipient, metadataSuffix)
		return mintErr
	})
	if err != nil {
		return 0, err
	}
	return tokenID, nil
}

// BatchMint mints count tokens to recipient, one per metadata suffix. Either
// every token is minted or none is.
func (c *Collection) BatchMint(caller, recipient common.Address, count int, metadataSuffixes []string) ([]uint64, error) {
	var tokenIDs []uint64
	err := c.apply("batchMint", func() error {
		if count < 0 || count > MaxBatchSize {
			return fmt.Errorf("%w: batch of %d tokens, at most %d allowed", ErrInvalidArgument, count, MaxBatchSize)
		}
		if len(metadataSuffixes) != count {
			return fmt.Errorf("%w: %d metadata suffixes for %d tokens", ErrInvalidArgument, len(metadataSuffixes), count)
		}
		tokenIDs = make([]uint64, 0, count)
		for _, suffix := range metadataSuffixes {
			tokenID, err := c.mint(caller, recipient, suffix)
			if err != nil {
				return err
			}
			tokenIDs = append(tokenIDs, tokenID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tokenIDs, nil
}

func (c *Collection) mint(caller, recipient common.Address, metadataSuffix string) (uint64, error) {
	if !c.isAuthorized(caller) {
		return 0, fmt.Errorf("%w: %s cannot mint", ErrUnauthorized, caller.Hex())
	}
	if recipient == (common.Address{}) {
		return 0, fmt.Errorf("%w: cannot mint to the zero address", ErrInvalidArgument)
	}

	tokenID := c.nextTokenID
	c.journal.append(supplyChange{prevSupply: c.totalSupply, prevNextID: c.nextTokenID})
	c.nextTokenID++
	c.totalSupply++

	c.setOwner(tokenID, recipient)
	c.addTokenToOwner(recipient, tokenID)
	if metadataSuffix != "" {
		c.journal.append(metadataChange{tokenID: tokenID})
		c.metadata[tokenID] = metadataSuffix
	}

	c.emitTransfer(common.Address{}, recipient, tokenID)
	return tokenID, nil
}

// Burn destroys tokenID. The caller must own the token or be authorized. Burned
// ids are never reassigned.
func (c *Collection) Burn(caller common.Address, tokenID uint64) error {
	return c.apply("burn", func() error {
		owner, err := c.ownerOf(tokenID)
		if err != nil {
			return err
		}
		if caller != owner && !c.isAuthorized(caller) {
			return fmt.Errorf("%w: %s cannot burn token %d", ErrNotOwner, caller.Hex(), tokenID)
		}

		c.setApproval(tokenID, common.Address{})
		c.removeTokenFromOwner(owner, tokenID)
		c.journal.append(ownerChange{tokenID: tokenID, prev: owner, existed: true})
		delete(c.owners, tokenID)
		if suffix, ok := c.metadata[tokenID]; ok {
			c.journal.append(metadataChange{tokenID: tokenID, prev: suffix, existed: true})
			delete(c.metadata, tokenID)
		}

		c.journal.append(supplyChange{prevSupply: c.totalSupply, prevNextID: c.nextTokenID})
		c.totalSupply--

		c.emitTransfer(owner, common.Address{}, tokenID)
		return nil
	})
}

func (c *Collection) setOwner(tokenID uint64, owner common.Address) {
	prev, existed := c.owners[tokenID]
	c.journal.append(ownerChange{tokenID: tokenID, prev: prev, existed: existed})
	c.owners[tokenID] = owner
}
