// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.

package merkle_test

import (
	"crypto/sha256"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
)

func leaf(b byte) digest.Digest {
	var d digest.Digest
	for i := range d {
		d[i] = b
	}
	return d
}

func pair(a, b digest.Digest) digest.Digest {
	return digest.Tree(append(a[:], b[:]...))
}

var (
	a = leaf(1)
	b = leaf(2)
	c = leaf(3)
	d = leaf(4)
	e = leaf(5)
)

var table = []struct {
	testCaseId   int
	leaves       []digest.Digest
	expectedRoot digest.Digest
}{
	{
		testCaseId:   0,
		leaves:       nil,
		expectedRoot: digest.Zero(),
	},
	{
		testCaseId:   1,
		leaves:       []digest.Digest{a},
		expectedRoot: a,
	},
	{
		testCaseId:   2,
		leaves:       []digest.Digest{a, b},
		expectedRoot: pair(a, b),
	},
	{
		testCaseId:   3,
		leaves:       []digest.Digest{a, b, c},
		expectedRoot: pair(pair(a, b), pair(c, c)),
	},
	{
		testCaseId:   4,
		leaves:       []digest.Digest{a, b, c, d},
		expectedRoot: pair(pair(a, b), pair(c, d)),
	},
	{
		testCaseId:   5,
		leaves:       []digest.Digest{a, b, c, d, e},
		expectedRoot: pair(pair(pair(a, b), pair(c, d)), pair(pair(e, e), pair(e, e))),
	},
}

// =============================================================================

func Test_Root(t *testing.T) {
	for i := 0; i < len(table); i++ {
		root := merkle.Root(table[i].leaves)
		if root != table[i].expectedRoot {
			t.Errorf("[case:%d] error: expected root equal to %s got %s", table[i].testCaseId, table[i].expectedRoot, root)
		}
	}
}

func Test_RootIsDeterministic(t *testing.T) {
	for i := 0; i < len(table); i++ {
		if merkle.Root(table[i].leaves) != merkle.Root(table[i].leaves) {
			t.Errorf("[case:%d] error: expected the same root twice", table[i].testCaseId)
		}
	}
}

func Test_RootDependsOnOrder(t *testing.T) {
	if merkle.Root([]digest.Digest{a, b, c}) == merkle.Root([]digest.Digest{b, a, c}) {
		t.Error("error: expected reordered leaves to give a different root")
	}
	if merkle.Root([]digest.Digest{a, b, c}) == merkle.Root([]digest.Digest{a, c, b}) {
		t.Error("error: expected reordered leaves to give a different root")
	}
}

func Test_OddLevelIsNotPassedThrough(t *testing.T) {
	unpadded := digest.Tree(append(func() []byte { p := pair(a, b); return p[:] }(), c[:]...))
	if merkle.Root([]digest.Digest{a, b, c}) == unpadded {
		t.Error("error: expected the last leaf to be duplicated, not carried up")
	}
}

func Test_DoesNotAliasInput(t *testing.T) {
	leaves := []digest.Digest{a, b, c}
	tree := merkle.NewTree(leaves)
	leaves[0] = d

	if tree.Levels[0][0] != a {
		t.Error("error: expected the tree to keep its own copy of the leaves")
	}
}

func Test_NewTreeWithHashingStrategy(t *testing.T) {
	sha := func(data []byte) digest.Digest { return sha256.Sum256(data) }

	tree := merkle.NewTree([]digest.Digest{a, b}, merkle.WithHashStrategy(sha))
	if tree.MerkleRoot != digest.Digest(sha256.Sum256(append(a[:], b[:]...))) {
		t.Errorf("error: expected the sha256 strategy to be used, got %s", tree.MerkleRoot)
	}
	if tree.MerkleRoot == merkle.Root([]digest.Digest{a, b}) {
		t.Error("error: expected a different root than the default strategy")
	}
}

func Test_VerifyTree(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree := merkle.NewTree(table[i].leaves)
		if err := tree.Verify(); err != nil {
			t.Errorf("[case:%d] error: expected tree to be valid: %v", table[i].testCaseId, err)
		}

		if len(table[i].leaves) == 0 {
			continue
		}

		tree.MerkleRoot = leaf(9)
		if err := tree.Verify(); err == nil {
			t.Errorf("[case:%d] error: expected tree to be invalid", table[i].testCaseId)
		}
	}
}

func Test_Proof(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree := merkle.NewTree(table[i].leaves)

		for idx, l := range table[i].leaves {
			proof, err := tree.Proof(idx)
			if err != nil {
				t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
			}

			if !merkle.VerifyProof(l, proof, tree.MerkleRoot) {
				t.Errorf("[case:%d] error: expected proof for leaf %d to verify", table[i].testCaseId, idx)
			}

			if merkle.VerifyProof(leaf(9), proof, tree.MerkleRoot) {
				t.Errorf("[case:%d] error: expected proof for a foreign leaf to fail", table[i].testCaseId)
			}
		}

		if _, err := tree.Proof(len(table[i].leaves)); err == nil {
			t.Errorf("[case:%d] error: expected an out of range index to fail", table[i].testCaseId)
		}
	}
}

func Test_String(t *testing.T) {
	for i := 1; i < len(table); i++ {
		tree := merkle.NewTree(table[i].leaves)
		if tree.String() == "" {
			t.Errorf("[case:%d] error: expected not empty string", table[i].testCaseId)
		}
		if len(tree.RootHex()) != 66 {
			t.Errorf("[case:%d] error: expected 0x prefixed root hex, got %s", table[i].testCaseId, tree.RootHex())
		}
	}
}
