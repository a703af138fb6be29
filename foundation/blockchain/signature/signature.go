// Package signature provides the multi-algorithm key, signing, and
// verification support for the blockchain. Every key and signature carries
// an algorithm tag and every operation dispatches on that tag explicitly.
package signature

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/codec"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Set of error variables for signing and verification. Callers use
// errors.Is to tell them apart.
var (
	ErrAlgorithmMismatch   = errors.New("signature algorithm mismatch")
	ErrMalformedKey        = errors.New("malformed public key")
	ErrMalformedSignature  = errors.New("malformed signature")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrUnknownAlgorithm    = errors.New("unknown signature algorithm")
	ErrRandomnessExhausted = errors.New("secure randomness exhausted")
	ErrKeyDestroyed        = errors.New("keypair has been destroyed")
)

// =============================================================================

// Algorithm tags the signature scheme a key or signature belongs to.
type Algorithm uint8

// Set of supported algorithms. The numeric values are part of the
// transaction digest and must never change.
const (
	Ed25519   Algorithm = 0
	Secp256k1 Algorithm = 1
)

// ParseAlgorithm converts the name of an algorithm into its tag.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(name) {
	case "ed25519":
		return Ed25519, nil
	case "secp256k1":
		return Secp256k1, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// Valid reports whether the tag is one of the supported algorithms.
func (a Algorithm) Valid() bool {
	return a == Ed25519 || a == Secp256k1
}

// String implements the fmt.Stringer interface.
func (a Algorithm) String() string {
	switch a {
	case Ed25519:
		return "ed25519"
	case Secp256k1:
		return "secp256k1"
	}

	return fmt.Sprintf("unknown(%d)", uint8(a))
}

// MarshalText implements the encoding.TextMarshaler interface.
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, uint8(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (a *Algorithm) UnmarshalText(text []byte) error {
	v, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}

	*a = v
	return nil
}

// =============================================================================

// PublicKey is a verification key tagged with its algorithm. Ed25519 keys are
// 32 bytes, secp256k1 keys are SEC1 encoded points.
type PublicKey struct {
	Alg   Algorithm `json:"alg"`
	Bytes []byte    `json:"bytes"`
}

// Equal reports whether the two keys have the same algorithm and bytes.
func (pk PublicKey) Equal(other PublicKey) bool {
	return pk.Alg == other.Alg && bytes.Equal(pk.Bytes, other.Bytes)
}

// String implements the fmt.Stringer interface for logging.
func (pk PublicKey) String() string {
	return fmt.Sprintf("%s:%s", pk.Alg, hexutil.Encode(pk.Bytes))
}

// EncodeTo writes the record encoding of the key.
func (pk PublicKey) EncodeTo(enc *codec.Encoder) {
	enc.Uint32(uint32(pk.Alg))
	enc.Bytes(pk.Bytes)
}

// DecodePublicKey reads a key written by EncodeTo.
func DecodePublicKey(dec *codec.Decoder) PublicKey {
	alg := decodeAlgorithm(dec)
	return PublicKey{
		Alg:   alg,
		Bytes: dec.Bytes(),
	}
}

// =============================================================================

// Signature is a signature tagged with the algorithm that produced it. A
// signature only has meaning alongside the message and public key it was
// produced against.
type Signature struct {
	Alg   Algorithm `json:"alg"`
	Bytes []byte    `json:"bytes"`
}

// IsEmpty reports whether the signature carries no bytes.
func (sig Signature) IsEmpty() bool {
	return len(sig.Bytes) == 0
}

// String implements the fmt.Stringer interface for logging.
func (sig Signature) String() string {
	return fmt.Sprintf("%s:%s", sig.Alg, hexutil.Encode(sig.Bytes))
}

// EncodeTo writes the record encoding of the signature.
func (sig Signature) EncodeTo(enc *codec.Encoder) {
	enc.Uint32(uint32(sig.Alg))
	enc.Bytes(sig.Bytes)
}

// DecodeSignature reads a signature written by EncodeTo.
func DecodeSignature(dec *codec.Decoder) Signature {
	alg := decodeAlgorithm(dec)
	return Signature{
		Alg:   alg,
		Bytes: dec.Bytes(),
	}
}

// =============================================================================

// Verify checks the signature over the message for the specified public key.
// The algorithm tags are compared before any cryptographic work is done.
func Verify(pk PublicKey, msg []byte, sig Signature) error {
	if pk.Alg != sig.Alg {
		return fmt.Errorf("%w: key %s, signature %s", ErrAlgorithmMismatch, pk.Alg, sig.Alg)
	}

	switch pk.Alg {
	case Ed25519:
		return verifyEd25519(pk.Bytes, msg, sig.Bytes)
	case Secp256k1:
		return verifySecp256k1(pk.Bytes, msg, sig.Bytes)
	}

	return fmt.Errorf("%w: %d", ErrUnknownAlgorithm, uint8(pk.Alg))
}

// =============================================================================

// decodeAlgorithm reads an algorithm tag in its u32 record form.
func decodeAlgorithm(dec *codec.Decoder) Algorithm {
	v := dec.Uint32()
	if dec.Err() != nil {
		return 0
	}

	alg := Algorithm(v)
	if v > 0xff || !alg.Valid() {
		dec.Fail(fmt.Errorf("%w: %d", ErrUnknownAlgorithm, v))
		return 0
	}

	return alg
}
