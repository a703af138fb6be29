// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.
// This code has been cleaned up, refactored, and reduced to a tree of digests.

// Package merkle provides an implementation of a merkle tree for committing
// to the ordered set of transactions in a block.
package merkle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Tree represents a merkle tree over an ordered list of leaf digests. Every
// level of the tree is kept so inclusion proofs can be produced.
//
// Pairing rules:
//   - no leaves: the root is the zero digest.
//   - one leaf: the root is that leaf, no hashing is applied.
//   - otherwise leaves are paired left to right and a level with an odd count
//     duplicates its last digest. Each pair (a, b) becomes hash(a || b).
type Tree struct {
	Levels       [][]digest.Digest
	MerkleRoot   digest.Digest
	hashStrategy func(data []byte) digest.Digest
}

// WithHashStrategy is used to change the default hash strategy of using
// BLAKE3 when constructing a new tree.
func WithHashStrategy(hashStrategy func(data []byte) digest.Digest) func(t *Tree) {
	return func(t *Tree) {
		t.hashStrategy = hashStrategy
	}
}

// NewTree constructs a new merkle tree from the specified leaves.
func NewTree(leaves []digest.Digest, options ...func(t *Tree)) *Tree {
	t := Tree{
		hashStrategy: digest.Tree,
	}

	for _, option := range options {
		option(&t)
	}

	t.Generate(leaves)

	return &t
}

// Root computes the merkle root for the specified leaves using the default
// hash strategy.
func Root(leaves []digest.Digest) digest.Digest {
	return NewTree(leaves).MerkleRoot
}

// Generate constructs the levels of the tree from the specified leaves. If
// the tree has been generated previously, it is re-generated from scratch.
func (t *Tree) Generate(leaves []digest.Digest) {
	t.Levels = nil
	t.MerkleRoot = digest.Zero()

	if len(leaves) == 0 {
		return
	}

	level := make([]digest.Digest, len(leaves))
	copy(level, leaves)
	t.Levels = append(t.Levels, level)

	for len(level) > 1 {
		next := make([]digest.Digest, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left, right := level[i], level[i]
			if i+1 < len(level) {
				right = level[i+1]
			}

			next = append(next, t.hashPair(left, right))
		}

		t.Levels = append(t.Levels, next)
		level = next
	}

	t.MerkleRoot = level[0]
}

// Leafs returns a copy of the leaf digests the tree was built from.
func (t *Tree) Leafs() []digest.Digest {
	if len(t.Levels) == 0 {
		return nil
	}

	leafs := make([]digest.Digest, len(t.Levels[0]))
	copy(leafs, t.Levels[0])

	return leafs
}

// Verify recomputes the root from the leaves and checks it matches the
// stored merkle root.
func (t *Tree) Verify() error {
	calculated := NewTree(t.Leafs(), WithHashStrategy(t.hashStrategy)).MerkleRoot
	if calculated != t.MerkleRoot {
		return errors.New("root hash invalid")
	}

	return nil
}

// RootHex converts the merkle root to a 0x prefixed hex encoded string.
func (t *Tree) RootHex() string {
	return hexutil.Encode(t.MerkleRoot[:])
}

// String returns a string representation of the tree, one level per line
// starting with the leaves.
func (t *Tree) String() string {
	var sb strings.Builder

	for i, level := range t.Levels {
		fmt.Fprintf(&sb, "%d:", i)
		for _, d := range level {
			sb.WriteString(" ")
			sb.WriteString(d.Hex()[:8])
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// =============================================================================

// ProofStep is one sibling on the path from a leaf to the root. Left is true
// when the sibling is concatenated before the running hash.
type ProofStep struct {
	Sibling digest.Digest `json:"sibling"`
	Left    bool          `json:"left"`
}

// Proof is the ordered list of siblings from the leaf level upward.
type Proof []ProofStep

// Proof returns the inclusion proof for the leaf at the specified index. This
// is how the proof is consumed.
//
//	hash = leaf
//	for each step:
//	    if step.Left:  hash = H(step.Sibling || hash)
//	    else:          hash = H(hash || step.Sibling)
//
// The resulting hash should match the merkle root. A leaf at the end of an
// odd level is its own sibling.
func (t *Tree) Proof(index int) (Proof, error) {
	if len(t.Levels) == 0 || index < 0 || index >= len(t.Levels[0]) {
		return nil, fmt.Errorf("leaf index %d out of range", index)
	}

	var proof Proof
	for _, level := range t.Levels[:len(t.Levels)-1] {
		switch {
		case index%2 == 1:
			proof = append(proof, ProofStep{Sibling: level[index-1], Left: true})
		case index+1 < len(level):
			proof = append(proof, ProofStep{Sibling: level[index+1]})
		default:
			proof = append(proof, ProofStep{Sibling: level[index]})
		}

		index /= 2
	}

	return proof, nil
}

// VerifyProof checks the proof links the leaf to the root using the tree's
// hash strategy.
func (t *Tree) VerifyProof(leaf digest.Digest, proof Proof, root digest.Digest) bool {
	hash := leaf
	for _, step := range proof {
		if step.Left {
			hash = t.hashPair(step.Sibling, hash)
			continue
		}
		hash = t.hashPair(hash, step.Sibling)
	}

	return hash == root
}

// VerifyProof checks the proof links the leaf to the root using the default
// hash strategy.
func VerifyProof(leaf digest.Digest, proof Proof, root digest.Digest) bool {
	t := Tree{hashStrategy: digest.Tree}
	return t.VerifyProof(leaf, proof, root)
}

// =============================================================================

// hashPair hashes the 64 byte concatenation of the two digests.
func (t *Tree) hashPair(left, right digest.Digest) digest.Digest {
	buf := make([]byte, 0, 2*digest.Size)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)

	return t.hashStrategy(buf)
}
