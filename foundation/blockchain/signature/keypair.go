package signature

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"runtime"

	"github.com/ethereum/go-ethereum/crypto"
)

// Keypair holds the private key for exactly one algorithm. Private key
// material only leaves the keypair as the output of Sign.
type Keypair struct {
	alg  Algorithm
	ed   ed25519.PrivateKey
	secp *ecdsa.PrivateKey
}

// Generate constructs a new keypair for the algorithm using the operating
// system's secure random source.
func Generate(alg Algorithm) (*Keypair, error) {
	return GenerateFrom(alg, rand.Reader)
}

// GenerateFrom constructs a new keypair for the algorithm drawing the private
// key from the specified reader. A short read returns ErrRandomnessExhausted
// which callers should treat as fatal.
func GenerateFrom(alg Algorithm, random io.Reader) (*Keypair, error) {
	kp := Keypair{alg: alg}

	switch alg {
	case Ed25519:
		seed := make([]byte, ed25519.SeedSize)
		if _, err := io.ReadFull(random, seed); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRandomnessExhausted, err)
		}
		kp.ed = ed25519.NewKeyFromSeed(seed)
		clear(seed)

	case Secp256k1:
		key, err := generateSecp256k1(random)
		if err != nil {
			return nil, err
		}
		kp.secp = key

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, uint8(alg))
	}

	runtime.SetFinalizer(&kp, (*Keypair).Destroy)

	return &kp, nil
}

// Algorithm returns the algorithm of the keypair.
func (kp *Keypair) Algorithm() Algorithm {
	return kp.alg
}

// PublicKey derives the public key for the keypair.
func (kp *Keypair) PublicKey() PublicKey {
	switch {
	case kp.alg == Ed25519 && kp.ed != nil:
		pub := kp.ed.Public().(ed25519.PublicKey)
		return PublicKey{Alg: Ed25519, Bytes: append([]byte{}, pub...)}

	case kp.alg == Secp256k1 && kp.secp != nil:
		return PublicKey{Alg: Secp256k1, Bytes: crypto.CompressPubkey(&kp.secp.PublicKey)}
	}

	return PublicKey{Alg: kp.alg}
}

// Sign uses the private key to sign the message. Ed25519 signatures are
// deterministic. Secp256k1 signs the SHA-256 of the message and returns the
// 64 byte [R|S] form with a low S value.
func (kp *Keypair) Sign(msg []byte) (Signature, error) {
	switch kp.alg {
	case Ed25519:
		if kp.ed == nil {
			return Signature{}, ErrKeyDestroyed
		}
		return Signature{Alg: Ed25519, Bytes: ed25519.Sign(kp.ed, msg)}, nil

	case Secp256k1:
		if kp.secp == nil {
			return Signature{}, ErrKeyDestroyed
		}

		hash := sha256.Sum256(msg)
		sig, err := crypto.Sign(hash[:], kp.secp)
		if err != nil {
			return Signature{}, fmt.Errorf("signing: %w", err)
		}

		// Drop the recovery id, only [R|S] is kept.
		return Signature{Alg: Secp256k1, Bytes: sig[:crypto.RecoveryIDOffset]}, nil
	}

	return Signature{}, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, uint8(kp.alg))
}

// Destroy zeroes the private key material. The keypair can't sign after
// this call. Destroy also runs as a finalizer when the keypair is collected.
func (kp *Keypair) Destroy() {
	if kp.ed != nil {
		clear(kp.ed)
		kp.ed = nil
	}

	if kp.secp != nil {
		clear(kp.secp.D.Bits())
		kp.secp = nil
	}
}

// =============================================================================

// generateSecp256k1 reads 32 byte candidates until one is a valid scalar.
func generateSecp256k1(random io.Reader) (*ecdsa.PrivateKey, error) {
	buf := make([]byte, 32)
	defer clear(buf)

	for {
		if _, err := io.ReadFull(random, buf); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRandomnessExhausted, err)
		}

		key, err := crypto.ToECDSA(buf)
		if err == nil {
			return key, nil
		}
	}
}
