package signature

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/crypto"
)

// verifyEd25519 performs strict verification. On top of the canonical S and
// exact R checks done by crypto/ed25519, keys and R points of small order
// are rejected.
func verifyEd25519(pub, msg, sig []byte) error {
	if len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: ed25519 key is %d bytes", ErrMalformedKey, len(pub))
	}

	A, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedKey, err)
	}

	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("%w: ed25519 signature is %d bytes", ErrMalformedSignature, len(sig))
	}

	R, err := new(edwards25519.Point).SetBytes(sig[:32])
	if err != nil {
		return fmt.Errorf("%w: R is not a point", ErrInvalidSignature)
	}

	if isSmallOrder(A) {
		return fmt.Errorf("%w: weak public key", ErrInvalidSignature)
	}

	if isSmallOrder(R) {
		return fmt.Errorf("%w: weak R", ErrInvalidSignature)
	}

	if !ed25519.Verify(ed25519.PublicKey(pub), msg, sig) {
		return ErrInvalidSignature
	}

	return nil
}

// isSmallOrder reports whether the point lies in the torsion subgroup.
func isSmallOrder(p *edwards25519.Point) bool {
	return new(edwards25519.Point).MultByCofactor(p).Equal(edwards25519.NewIdentityPoint()) == 1
}

// =============================================================================

// verifySecp256k1 verifies an ECDSA signature over the SHA-256 of the
// message. The signature may be the 64 byte [R|S] form or DER. High S values
// are rejected.
func verifySecp256k1(pub, msg, sig []byte) error {
	if _, err := secp256k1.ParsePubKey(pub); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedKey, err)
	}

	rs, err := toRS(sig)
	if err != nil {
		return err
	}

	hash := sha256.Sum256(msg)
	if !crypto.VerifySignature(pub, hash[:], rs) {
		return ErrInvalidSignature
	}

	return nil
}

// toRS converts either accepted encoding into the 64 byte [R|S] form.
func toRS(sig []byte) ([]byte, error) {
	if der, err := ecdsa.ParseDERSignature(sig); err == nil {
		r, s := der.R(), der.S()
		rb, sb := r.Bytes(), s.Bytes()

		return append(rb[:], sb[:]...), nil
	}

	if len(sig) != 64 {
		return nil, fmt.Errorf("%w: secp256k1 signature is %d bytes and not DER", ErrMalformedSignature, len(sig))
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return nil, fmt.Errorf("%w: R out of range", ErrMalformedSignature)
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow || s.IsZero() {
		return nil, fmt.Errorf("%w: S out of range", ErrMalformedSignature)
	}

	return append([]byte{}, sig...), nil
}
