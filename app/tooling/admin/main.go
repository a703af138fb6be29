// This program performs administrative tasks against a chain stored on disk.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/ledger/app/tooling/admin/commands"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/ledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		if !errors.Is(err, commands.ErrHelp) {
			log.Errorw("startup", "ERROR", err)
		}
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args   conf.Args
		DBPath string `conf:"default:zblock/blocks.db"`
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	serializer, err := disk.New(cfg.DBPath)
	if err != nil {
		return err
	}

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	}

	db, err := database.New(serializer, ev)
	if err != nil {
		serializer.Close()
		return fmt.Errorf("loading chain: %w", err)
	}
	defer db.Close()

	return processCommands(cfg.Args, db)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, db *database.Database) error {
	switch args.Num(0) {
	case "blocks":
		if err := commands.Blocks(db); err != nil {
			return fmt.Errorf("listing blocks: %w", err)
		}

	case "verify":
		if err := commands.Verify(db); err != nil {
			return fmt.Errorf("verifying chain: %w", err)
		}

	case "proof":
		blockNum, err := strconv.ParseUint(args.Num(1), 10, 64)
		if err != nil {
			return fmt.Errorf("parsing block number: %w", err)
		}

		txIndex, err := strconv.Atoi(args.Num(2))
		if err != nil {
			return fmt.Errorf("parsing transaction index: %w", err)
		}

		if err := commands.Proof(db, blockNum, txIndex); err != nil {
			return fmt.Errorf("building proof: %w", err)
		}

	default:
		fmt.Println("blocks:                 list every block in the chain")
		fmt.Println("verify:                 check every signature and merkle root in the chain")
		fmt.Println("proof <block> <tx>:     print the merkle inclusion proof for a transaction")
		fmt.Println("provide a command to get more help.")
		return commands.ErrHelp
	}

	return nil
}
