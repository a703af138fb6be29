// Package database handles the append-only chain of blocks and the lower
// level support for handing those blocks to storage.
package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
)

// ErrPrevHashMismatch is returned from Push when the block does not link to
// the current tip of the chain.
var ErrPrevHashMismatch = errors.New("prev hash mismatch")

// Serializer interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Serializer interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// DatabaseIterator walks the chain in storage order.
type DatabaseIterator struct {
	iterator Iterator
}

// Next retrieves the next block from storage.
func (di *DatabaseIterator) Next() (Block, error) {
	blockData, err := di.iterator.Next()
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData)
}

// Done returns the end of chain value.
func (di *DatabaseIterator) Done() bool {
	return di.iterator.Done()
}

// =============================================================================

// Database manages the chain of blocks. The chain is either empty or has a
// tip, the hash of the most recently appended block.
type Database struct {
	mu sync.RWMutex

	latestBlock Block
	tip         digest.Digest
	height      uint64

	serializer Serializer
	evHandler  func(v string, args ...any)
}

// New constructs a new database over the specified serializer. Any blocks
// already held by the serializer are replayed through the same linkage
// check used by Push.
func New(serializer Serializer, evHandler func(v string, args ...any)) (*Database, error) {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	db := Database{
		serializer: serializer,
		evHandler:  evHandler,
	}

	iter := db.serializer.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		if blockData.Number != db.height {
			return nil, fmt.Errorf("block is out of order, got %d, exp %d", blockData.Number, db.height)
		}

		block, err := ToBlock(blockData)
		if err != nil {
			return nil, err
		}

		if err := db.validateLink(block); err != nil {
			return nil, fmt.Errorf("block %d: %w", blockData.Number, err)
		}

		db.latestBlock = block
		db.tip = blockData.Hash
		db.height++
	}

	db.evHandler("database: New: loaded: height[%d]: tip[%s]", db.height, db.tip)

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() error {
	return db.serializer.Close()
}

// Reset re-initializes the database back to an empty chain.
func (db *Database) Reset() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.serializer.Reset(); err != nil {
		return err
	}

	db.latestBlock = Block{}
	db.tip = digest.Zero()
	db.height = 0

	return nil
}

// Push appends the block to the chain. An empty chain accepts any block as
// genesis. Otherwise the block's previous hash must equal the current tip or
// ErrPrevHashMismatch is returned and the chain is left unchanged. Reading
// the tip and appending happen under one lock so two writers can't both
// extend the same tip.
func (db *Database) Push(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.validateLink(block); err != nil {
		db.evHandler("database: Push: REJECTED: height[%d]: %s", db.height, err)
		return err
	}

	blockData := NewBlockData(db.height, block)
	if err := db.serializer.Write(blockData); err != nil {
		return fmt.Errorf("writing block %d: %w", blockData.Number, err)
	}

	db.latestBlock = block
	db.tip = blockData.Hash
	db.height++

	db.evHandler("database: Push: blk[%d]: trans[%d]: tip[%s]", blockData.Number, len(block.Trans), db.tip)

	return nil
}

// Tip returns the hash of the latest block, or the zero digest for an
// empty chain.
func (db *Database) Tip() digest.Digest {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.tip
}

// Height returns the number of blocks in the chain.
func (db *Database) Height() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.height
}

// LatestBlock returns the latest block and false if the chain is empty.
func (db *Database) LatestBlock() (Block, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock, db.height > 0
}

// GetBlock searches storage to locate and return the contents of the
// specified block by number, starting at 0 for genesis.
func (db *Database) GetBlock(num uint64) (Block, error) {
	blockData, err := db.serializer.GetBlock(num)
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData)
}

// ForEach returns an iterator to walk through all the blocks starting
// with genesis.
func (db *Database) ForEach() DatabaseIterator {
	return DatabaseIterator{iterator: db.serializer.ForEach()}
}

// =============================================================================

// validateLink performs the only check the chain makes on a block: it must
// point at the current tip. The caller must hold the lock.
func (db *Database) validateLink(block Block) error {
	if db.height == 0 {
		return nil
	}

	if block.Header.PrevBlockHash != db.tip {
		return fmt.Errorf("%w: got %s, exp %s", ErrPrevHashMismatch, block.Header.PrevBlockHash, db.tip)
	}

	return nil
}
