package commands_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/ledger/app/tooling/admin/commands"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newChain(t *testing.T, trans ...[]database.SignedTx) *database.Database {
	storage, _ := memory.New()
	db, err := database.New(storage, nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open the database: %v", failed, err)
	}

	for _, txs := range trans {
		if err := db.Push(database.NewBlock(db.Tip(), txs, 0)); err != nil {
			t.Fatalf("\t%s\tShould be able to push a block: %v", failed, err)
		}
	}

	return db
}

func Test_Commands(t *testing.T) {
	alice, err := signature.Generate(signature.Ed25519)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to generate a keypair: %v", failed, err)
	}
	bob, err := signature.Generate(signature.Ed25519)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to generate a keypair: %v", failed, err)
	}

	sign := func(nonce uint64) database.SignedTx {
		stx, err := database.NewTx(alice.PublicKey(), bob.PublicKey(), 10, nonce, signature.Ed25519).Sign(alice)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign: %v", failed, err)
		}
		return stx
	}

	t.Log("Given the need to inspect a stored chain.")
	{
		t.Logf("\tTest 0:\tWhen every transaction is signed correctly.")
		{
			db := newChain(t, nil, []database.SignedTx{sign(1), sign(2), sign(3)})

			if err := commands.Blocks(db); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to list blocks: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to list blocks.", success)

			if err := commands.Verify(db); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould verify the chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould verify the chain.", success)

			if err := commands.Proof(db, 1, 2); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould prove the last transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould prove the last transaction.", success)

			if err := commands.Proof(db, 1, 3); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject an index past the end.", failed)
			}
			if err := commands.Proof(db, 5, 0); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a missing block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject proofs that can't exist.", success)
		}

		t.Logf("\tTest 1:\tWhen a transaction carries a signature for different content.")
		{
			forged := sign(2)
			forged.Sig = sign(1).Sig

			db := newChain(t, []database.SignedTx{sign(1), forged})

			if err := commands.Verify(db); !errors.Is(err, signature.ErrInvalidSignature) {
				t.Fatalf("\t%s\tTest 1:\tShould report the bad signature: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould report the bad signature.", success)
		}
	}
}

func Test_EmptyChain(t *testing.T) {
	t.Log("Given the need to inspect an empty chain.")
	{
		t.Logf("\tTest 0:\tWhen no blocks have been pushed.")
		{
			db := newChain(t)

			if err := commands.Verify(db); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould verify an empty chain: %v", failed, err)
			}
			if db.Tip() != digest.Zero() {
				t.Fatalf("\t%s\tTest 0:\tShould have a zero tip.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould verify an empty chain.", success)
		}
	}
}
