// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

// Blocks prints a summary line for every block in the chain.
func Blocks(db *database.Database) error {
	var num uint64
	iter := db.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return err
		}

		fmt.Printf("Block: %d  Hash: %s  Prev: %s  Root: %s  Time: %d  Trans: %d\n",
			num, block.Hash(), block.Header.PrevBlockHash, block.Header.TransRoot, block.Header.TimeStamp, len(block.Trans))

		num++
	}

	fmt.Printf("\nHeight: %d  Tip: %s\n", db.Height(), db.Tip())

	return nil
}

// Verify walks the chain checking every transaction signature. Block
// linkage, hashes and merkle roots are checked when the chain is loaded and
// again as each block is read back.
func Verify(db *database.Database) error {
	var num uint64
	var trans int

	iter := db.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return err
		}

		for i, tx := range block.Trans {
			if err := tx.Verify(); err != nil {
				return fmt.Errorf("block %d tx %d: %w", num, i, err)
			}
		}

		trans += len(block.Trans)
		num++
	}

	fmt.Printf("Verified %d blocks and %d transactions\n", num, trans)

	return nil
}

// Proof prints the merkle inclusion proof for the specified transaction and
// checks it against the block's merkle root.
func Proof(db *database.Database, blockNum uint64, txIndex int) error {
	block, err := db.GetBlock(blockNum)
	if err != nil {
		return err
	}

	proof, err := block.TransTree().Proof(txIndex)
	if err != nil {
		return err
	}

	leaf := block.Trans[txIndex].Digest()
	if !merkle.VerifyProof(leaf, proof, block.Header.TransRoot) {
		return fmt.Errorf("proof for tx %d does not match root %s", txIndex, block.Header.TransRoot)
	}

	fmt.Printf("Leaf: %s\n", leaf)
	for i, step := range proof {
		side := "right"
		if step.Left {
			side = "left"
		}
		fmt.Printf("Step %d: %s  Sibling: %s\n", i, side, step.Sibling)
	}
	fmt.Printf("Root: %s\n", block.Header.TransRoot)

	return nil
}
