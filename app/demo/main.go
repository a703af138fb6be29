// This program records a single signed payment from one generated wallet to
// another in a new block and appends it to the chain.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/ardanlabs/ledger/foundation/validate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("DEMO")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Tx struct {
			Algorithm string `conf:"default:ed25519" validate:"required,algorithm"`
			Amount    uint64 `conf:"default:42"`
			Nonce     uint64 `conf:"default:1"`
		}
		Chain struct {
			Difficulty uint32 `conf:"default:0"`
			DBPath     string `conf:"help:bbolt file to store the chain in or empty for memory"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "DEMO"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	if err := validate.Check(cfg); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting demo", "version", build)
	defer log.Infow("demo complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// The blockchain packages accept a function of this signature to allow the
	// application to log. Every message from this run shares one trace id.
	traceID := uuid.NewString()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", traceID)
	}

	// =========================================================================
	// Wallets

	alg, err := signature.ParseAlgorithm(cfg.Tx.Algorithm)
	if err != nil {
		return err
	}

	alice, err := signature.Generate(alg)
	if err != nil {
		return fmt.Errorf("generating alice: %w", err)
	}
	defer alice.Destroy()

	bob, err := signature.Generate(alg)
	if err != nil {
		return fmt.Errorf("generating bob: %w", err)
	}
	defer bob.Destroy()

	ev("demo: wallets: alice[%s]: bob[%s]", alice.PublicKey(), bob.PublicKey())

	// =========================================================================
	// Transaction

	tx := database.NewTx(alice.PublicKey(), bob.PublicKey(), cfg.Tx.Amount, cfg.Tx.Nonce, alg)

	signedTx, err := tx.Sign(alice)
	if err != nil {
		return fmt.Errorf("signing tx: %w", err)
	}

	if err := signedTx.Verify(); err != nil {
		return fmt.Errorf("verifying tx: %w", err)
	}

	ev("demo: tx: %s: digest[%s]", signedTx, signedTx.Digest())

	// =========================================================================
	// Chain

	var serializer database.Serializer
	switch cfg.Chain.DBPath {
	case "":
		serializer, err = memory.New()
	default:
		serializer, err = disk.New(cfg.Chain.DBPath)
	}
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	db, err := database.New(serializer, ev)
	if err != nil {
		serializer.Close()
		return fmt.Errorf("loading chain: %w", err)
	}
	defer db.Close()

	block := database.NewBlock(db.Tip(), []database.SignedTx{signedTx}, cfg.Chain.Difficulty)
	if err := db.Push(block); err != nil {
		return fmt.Errorf("pushing block: %w", err)
	}

	fmt.Printf("height: %d\n", db.Height())
	fmt.Printf("tip: %s\n", db.Tip().Hex())

	return nil
}
