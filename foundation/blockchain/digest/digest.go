// Package digest provides the fixed size hash value used to identify
// transactions and blocks, and the two hash functions that produce it.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"lukechampine.com/blake3"
)

// Size is the number of bytes in a digest.
const Size = 32

// Digest represents a 32 byte hash value. The zero value is the sentinel
// for "no digest", used as the previous hash of a genesis block and as the
// merkle root of an empty set of transactions.
type Digest [Size]byte

// =============================================================================

// Primary hashes the data with SHA-256. This is the hash used for transaction
// digests and block header hashes.
func Primary(data []byte) Digest {
	return sha256.Sum256(data)
}

// Tree hashes the data with BLAKE3. This is only used inside the merkle tree
// so a tree node can never be confused with a transaction or header hash.
func Tree(data []byte) Digest {
	return blake3.Sum256(data)
}

// Zero returns the all zero digest.
func Zero() Digest {
	return Digest{}
}

// FromHex parses a 64 character hex string, with or without a 0x prefix.
func FromHex(s string) (Digest, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*Size {
		return Digest{}, fmt.Errorf("digest must be %d hex characters, got %d", 2*Size, len(s))
	}

	var d Digest
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return Digest{}, fmt.Errorf("decoding digest: %w", err)
	}

	return d, nil
}

// =============================================================================

// IsZero reports whether the digest is the zero sentinel.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Hex returns the digest as 64 lowercase hex characters.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// String implements the fmt.Stringer interface for logging.
func (d Digest) String() string {
	return d.Hex()
}

// MarshalText implements the encoding.TextMarshaler interface so digests show
// up in JSON as 0x prefixed hex.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(hexutil.Encode(d[:])), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (d *Digest) UnmarshalText(text []byte) error {
	v, err := FromHex(string(text))
	if err != nil {
		return err
	}

	*d = v
	return nil
}
