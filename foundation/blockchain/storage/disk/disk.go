// Package disk implements the ability to read and write blocks to a bbolt
// database file on disk.
package disk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	bolt "go.etcd.io/bbolt"
)

// ErrNotFound is returned when a block number is not in storage.
var ErrNotFound = errors.New("block does not exist")

var bucketName = []byte("blocks")

// Disk represents the serialization implementation for reading and storing
// blocks in a bbolt database. Each block is keyed by its big endian block
// number and stored as its hash followed by the block's binary encoding.
// This implements the database.Serializer interface.
type Disk struct {
	dbPath string
	db     *bolt.DB
}

// New opens or creates the database file at the specified path.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Disk{dbPath: dbPath, db: db}, nil
}

// Close closes the database file.
func (d *Disk) Close() error {
	return d.db.Close()
}

// Write takes the specified database block and stores it on disk. Blocks
// must be written in order.
func (d *Disk) Write(blockData database.BlockData) error {
	data, err := blockData.Block.MarshalBinary()
	if err != nil {
		return err
	}

	value := make([]byte, 0, digest.Size+len(data))
	value = append(value, blockData.Hash[:]...)
	value = append(value, data...)

	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return fmt.Errorf("bucket %s does not exist", bucketName)
		}

		var next uint64
		if k, _ := b.Cursor().Last(); k != nil {
			next = binary.BigEndian.Uint64(k) + 1
		}

		if blockData.Number != next {
			return fmt.Errorf("block is out of order, got %d, exp %d", blockData.Number, next)
		}

		return b.Put(key(blockData.Number), value)
	})
}

// GetBlock searches the database to locate and return the contents of the
// specified block by number.
func (d *Disk) GetBlock(num uint64) (database.BlockData, error) {
	var value []byte
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return fmt.Errorf("bucket %s does not exist", bucketName)
		}

		v := b.Get(key(num))
		if v == nil {
			return ErrNotFound
		}

		value = append([]byte{}, v...)
		return nil
	})
	if err != nil {
		return database.BlockData{}, err
	}

	if len(value) < digest.Size {
		return database.BlockData{}, fmt.Errorf("block %d record is truncated", num)
	}

	blockData := database.BlockData{Number: num}
	copy(blockData.Hash[:], value[:digest.Size])

	if err := blockData.Block.UnmarshalBinary(value[digest.Size:]); err != nil {
		return database.BlockData{}, fmt.Errorf("block %d: %w", num, err)
	}

	return blockData, nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with genesis.
func (d *Disk) ForEach() database.Iterator {
	return &diskIterator{disk: d}
}

// Reset will clear out the blockchain on disk.
func (d *Disk) Reset() error {
	return d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}

		_, err := tx.CreateBucket(bucketName)
		return err
	})
}

// key forms the bucket key for the specified block number.
func key(num uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, num)
}

// =============================================================================

// diskIterator represents the iteration implementation for walking
// through and reading blocks on disk. This implements the database
// Iterator interface.
type diskIterator struct {
	disk    *Disk  // Access to the storage API.
	current uint64 // Current block number being iterated over.
	eoc     bool   // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from disk.
func (di *diskIterator) Next() (database.BlockData, error) {
	if di.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	blockData, err := di.disk.GetBlock(di.current)
	if errors.Is(err, ErrNotFound) {
		di.eoc = true
	}

	di.current++

	return blockData, err
}

// Done returns the end of chain value.
func (di *diskIterator) Done() bool {
	return di.eoc
}
