package database

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/codec"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// Set of error variables for handling transactions.
var (
	ErrMissingSignature = errors.New("missing signature")
	ErrSenderMismatch   = errors.New("signing key does not belong to the sender")
)

// =============================================================================

// Tx is the transactional information between two parties. A Tx is always
// unsigned, signing it produces a SignedTx.
type Tx struct {
	From   signature.PublicKey `json:"from"`   // Account sending the value.
	To     signature.PublicKey `json:"to"`     // Account receiving the value.
	Amount uint64              `json:"amount"` // Value being transferred.
	Nonce  uint64              `json:"nonce"`  // Unique id for the transaction supplied by the sender.
	Alg    signature.Algorithm `json:"alg"`    // Algorithm the transaction must be signed with.
}

// NewTx constructs a new unsigned transaction.
func NewTx(from signature.PublicKey, to signature.PublicKey, amount uint64, nonce uint64, alg signature.Algorithm) Tx {
	return Tx{
		From:   from,
		To:     to,
		Amount: amount,
		Nonce:  nonce,
		Alg:    alg,
	}
}

// Digest returns the hash of the transaction content. The signature is never
// part of the digest, so signing can't change what was signed.
//
// Layout: len(from) | from | len(to) | to | amount | nonce | alg (1 byte)
func (tx Tx) Digest() digest.Digest {
	enc := codec.NewEncoder(8 + len(tx.From.Bytes) + 8 + len(tx.To.Bytes) + 8 + 8 + 1)
	enc.Bytes(tx.From.Bytes)
	enc.Bytes(tx.To.Bytes)
	enc.Uint64(tx.Amount)
	enc.Uint64(tx.Nonce)
	enc.Uint8(uint8(tx.Alg))

	return digest.Primary(enc.Encoded())
}

// Sign uses the specified keypair to sign the transaction. The keypair must
// use the transaction's algorithm and must be the keypair for the sender.
func (tx Tx) Sign(kp *signature.Keypair) (SignedTx, error) {
	if kp.Algorithm() != tx.Alg {
		return SignedTx{}, fmt.Errorf("%w: keypair %s, tx %s", signature.ErrAlgorithmMismatch, kp.Algorithm(), tx.Alg)
	}

	if !kp.PublicKey().Equal(tx.From) {
		return SignedTx{}, ErrSenderMismatch
	}

	d := tx.Digest()
	sig, err := kp.Sign(d[:])
	if err != nil {
		return SignedTx{}, err
	}

	signedTx := SignedTx{
		Tx:  tx,
		Sig: sig,
	}

	return signedTx, nil
}

// =============================================================================

// SignedTx is a signed version of the transaction. An empty signature means
// the signature is absent, which can happen for records read from storage.
type SignedTx struct {
	Tx
	Sig signature.Signature `json:"sig"`
}

// Verify checks the transaction carries a signature from the sender over the
// transaction digest. The signature, transaction, and sender key must all
// use the same algorithm.
func (tx SignedTx) Verify() error {
	if tx.Sig.IsEmpty() {
		return ErrMissingSignature
	}

	if tx.Sig.Alg != tx.Alg || tx.From.Alg != tx.Alg {
		return fmt.Errorf("%w: tx %s, key %s, signature %s", signature.ErrAlgorithmMismatch, tx.Alg, tx.From.Alg, tx.Sig.Alg)
	}

	d := tx.Digest()
	if err := signature.Verify(tx.From, d[:], tx.Sig); err != nil {
		return err
	}

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (tx SignedTx) String() string {
	return fmt.Sprintf("%s:%d", tx.From, tx.Nonce)
}

// EncodeTo writes the record encoding of the transaction, including the
// optional signature.
func (tx SignedTx) EncodeTo(enc *codec.Encoder) {
	tx.From.EncodeTo(enc)
	tx.To.EncodeTo(enc)
	enc.Uint64(tx.Amount)
	enc.Uint64(tx.Nonce)
	enc.Uint32(uint32(tx.Alg))

	enc.Bool(!tx.Sig.IsEmpty())
	if !tx.Sig.IsEmpty() {
		tx.Sig.EncodeTo(enc)
	}
}

// DecodeSignedTx reads a transaction written by EncodeTo.
func DecodeSignedTx(dec *codec.Decoder) SignedTx {
	var tx SignedTx
	tx.From = signature.DecodePublicKey(dec)
	tx.To = signature.DecodePublicKey(dec)
	tx.Amount = dec.Uint64()
	tx.Nonce = dec.Uint64()

	alg := dec.Uint32()
	if dec.Err() == nil && (alg > 0xff || !signature.Algorithm(alg).Valid()) {
		dec.Fail(fmt.Errorf("%w: %d", signature.ErrUnknownAlgorithm, alg))
	}
	tx.Alg = signature.Algorithm(alg)

	if dec.Bool() {
		tx.Sig = signature.DecodeSignature(dec)
	}

	return tx
}
