package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/codec"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
)

// ErrTransRootMismatch is returned when a block read back from storage no
// longer matches the merkle root in its header.
var ErrTransRootMismatch = errors.New("merkle root does not match transactions")

// =============================================================================

// Clock provides the current time for stamping blocks.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements the Clock interface.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// =============================================================================

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	PrevBlockHash digest.Digest `json:"prev_block_hash"` // Bitcoin: Hash of the previous block in the chain.
	TransRoot     digest.Digest `json:"trans_root"`      // Bitcoin/Ethereum: Represents the merkle tree root hash for the transactions in this block.
	TimeStamp     uint64        `json:"timestamp"`       // Bitcoin: Time the block was assembled, in unix seconds.
	Nonce         uint64        `json:"nonce"`           // Bitcoin: Carried for format compatibility, never solved.
	Difficulty    uint32        `json:"difficulty"`      // Ethereum: Carried for format compatibility, never checked.
}

// EncodeTo writes the canonical encoding of the header. This is the exact
// byte layout that is hashed to form the block's identity.
//
// Layout: prev (32) | root (32) | timestamp (8) | nonce (8) | difficulty (4)
func (bh BlockHeader) EncodeTo(enc *codec.Encoder) {
	enc.Fixed(bh.PrevBlockHash[:])
	enc.Fixed(bh.TransRoot[:])
	enc.Uint64(bh.TimeStamp)
	enc.Uint64(bh.Nonce)
	enc.Uint32(bh.Difficulty)
}

// DecodeBlockHeader reads a header written by EncodeTo.
func DecodeBlockHeader(dec *codec.Decoder) BlockHeader {
	var bh BlockHeader
	dec.Fixed(bh.PrevBlockHash[:])
	dec.Fixed(bh.TransRoot[:])
	bh.TimeStamp = dec.Uint64()
	bh.Nonce = dec.Uint64()
	bh.Difficulty = dec.Uint32()

	return bh
}

// =============================================================================

// Block represents a group of transactions batched together.
type Block struct {
	Header BlockHeader `json:"header"`
	Trans  []SignedTx  `json:"trans"`
}

// NewBlock constructs a new block stamped with the current wall clock time.
func NewBlock(prevBlockHash digest.Digest, trans []SignedTx, difficulty uint32) Block {
	return NewBlockWithClock(SystemClock, prevBlockHash, trans, difficulty)
}

// NewBlockWithClock constructs a new block stamped with the time from the
// specified clock. The merkle root is computed over the transaction digests
// in the order provided, so order is part of the commitment.
func NewBlockWithClock(clock Clock, prevBlockHash digest.Digest, trans []SignedTx, difficulty uint32) Block {
	txs := make([]SignedTx, len(trans))
	copy(txs, trans)

	return Block{
		Header: BlockHeader{
			PrevBlockHash: prevBlockHash,
			TransRoot:     merkle.Root(txDigests(txs)),
			TimeStamp:     uint64(clock.Now().UTC().Unix()),
			Nonce:         0,
			Difficulty:    difficulty,
		},
		Trans: txs,
	}
}

// Hash returns the unique hash for the block.
func (b Block) Hash() digest.Digest {

	// CORE NOTE: Hashing the block header and not the whole block so the blockchain
	// can be cryptographically checked by only needing block headers and not full
	// blocks with the transaction data. The transactions are committed to through
	// the merkle root in the header.

	enc := codec.NewEncoder(2*digest.Size + 8 + 8 + 4)
	b.Header.EncodeTo(enc)

	return digest.Primary(enc.Encoded())
}

// TransTree constructs the merkle tree for the block's transactions so
// inclusion proofs can be produced.
func (b Block) TransTree() *merkle.Tree {
	return merkle.NewTree(txDigests(b.Trans))
}

// VerifyTransRoot recomputes the merkle root from the transactions and
// compares it to the header.
func (b Block) VerifyTransRoot() error {
	root := merkle.Root(txDigests(b.Trans))
	if root != b.Header.TransRoot {
		return fmt.Errorf("%w: got %s, exp %s", ErrTransRootMismatch, root, b.Header.TransRoot)
	}

	return nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface. The
// record starts with the codec version followed by the header and the
// transactions.
func (b Block) MarshalBinary() ([]byte, error) {
	enc := codec.NewEncoder(256)
	enc.Uint8(codec.Version)
	b.Header.EncodeTo(enc)

	enc.Uint64(uint64(len(b.Trans)))
	for _, tx := range b.Trans {
		tx.EncodeTo(enc)
	}

	return enc.Encoded(), nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (b *Block) UnmarshalBinary(data []byte) error {
	dec := codec.NewDecoder(data)

	if v := dec.Uint8(); dec.Err() == nil && v != codec.Version {
		return fmt.Errorf("unsupported block encoding version %d", v)
	}

	header := DecodeBlockHeader(dec)

	n := dec.Uint64()
	if dec.Err() == nil && n > uint64(len(data)) {
		return fmt.Errorf("transaction count %d exceeds record size", n)
	}

	var trans []SignedTx
	for i := uint64(0); i < n && dec.Err() == nil; i++ {
		trans = append(trans, DecodeSignedTx(dec))
	}

	if err := dec.Finish(); err != nil {
		return fmt.Errorf("decoding block: %w", err)
	}

	b.Header = header
	b.Trans = trans

	return nil
}

// =============================================================================

// BlockData represents what is handed to a Serializer for storage.
type BlockData struct {
	Number uint64        `json:"number"`
	Hash   digest.Digest `json:"hash"`
	Block  Block         `json:"block"`
}

// NewBlockData constructs the value to serialize to storage.
func NewBlockData(number uint64, block Block) BlockData {
	return BlockData{
		Number: number,
		Hash:   block.Hash(),
		Block:  block,
	}
}

// ToBlock converts stored block data back into a block, checking the data
// still matches the hash and merkle root it was stored with.
func ToBlock(blockData BlockData) (Block, error) {
	block := blockData.Block

	if hash := block.Hash(); hash != blockData.Hash {
		return Block{}, fmt.Errorf("block %d hash does not match stored hash, got %s, exp %s", blockData.Number, hash, blockData.Hash)
	}

	if err := block.VerifyTransRoot(); err != nil {
		return Block{}, fmt.Errorf("block %d: %w", blockData.Number, err)
	}

	return block, nil
}

// =============================================================================

// txDigests returns the digest of every transaction in order.
func txDigests(trans []SignedTx) []digest.Digest {
	digests := make([]digest.Digest, len(trans))
	for i, tx := range trans {
		digests[i] = tx.Digest()
	}

	return digests
}
