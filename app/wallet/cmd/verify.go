package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/validate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	from string
	sig  string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a signed transaction",
	Run:   verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVarP(&from, "from", "f", "", "Public key of the sending account.")
	verifyCmd.Flags().StringVarP(&to, "to", "t", "", "Public key of the receiving account.")
	verifyCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Value transferred.")
	verifyCmd.Flags().Uint64VarP(&nonce, "nonce", "n", 0, "Nonce for the transaction.")
	verifyCmd.Flags().StringVarP(&sig, "sig", "s", "", "Signature produced by sign.")
}

func verifyRun(cmd *cobra.Command, args []string) {
	alg, err := getAlgorithm()
	if err != nil {
		log.Fatal(err)
	}

	flags := struct {
		From string `json:"from" validate:"required,hexadecimal"`
		To   string `json:"to" validate:"required,hexadecimal"`
		Sig  string `json:"sig" validate:"required,hexadecimal"`
	}{
		From: from,
		To:   to,
		Sig:  sig,
	}
	if err := validate.Check(flags); err != nil {
		log.Fatal(err)
	}

	tx := database.NewTx(
		signature.PublicKey{Alg: alg, Bytes: common.FromHex(from)},
		signature.PublicKey{Alg: alg, Bytes: common.FromHex(to)},
		amount, nonce, alg,
	)

	signedTx := database.SignedTx{
		Tx:  tx,
		Sig: signature.Signature{Alg: alg, Bytes: common.FromHex(sig)},
	}

	if err := signedTx.Verify(); err != nil {
		log.Fatal(err)
	}

	fmt.Println("digest:", signedTx.Digest().Hex())
	fmt.Println("signature is valid")
}
