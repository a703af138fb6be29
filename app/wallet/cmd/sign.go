package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/validate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount uint64
	nonce  uint64
)

// signCmd represents the sign command
var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a transaction with a new key pair",
	Run:   signRun,
}

func init() {
	rootCmd.AddCommand(signCmd)
	signCmd.Flags().StringVarP(&to, "to", "t", "", "Public key of the receiving account.")
	signCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Value to transfer.")
	signCmd.Flags().Uint64VarP(&nonce, "nonce", "n", 0, "Nonce for the transaction.")
}

func signRun(cmd *cobra.Command, args []string) {
	alg, err := getAlgorithm()
	if err != nil {
		log.Fatal(err)
	}

	flags := struct {
		To string `json:"to" validate:"required,hexadecimal"`
	}{
		To: to,
	}
	if err := validate.Check(flags); err != nil {
		log.Fatal(err)
	}

	kp, err := signature.Generate(alg)
	if err != nil {
		log.Fatal(err)
	}
	defer kp.Destroy()

	toKey := signature.PublicKey{Alg: alg, Bytes: common.FromHex(to)}
	tx := database.NewTx(kp.PublicKey(), toKey, amount, nonce, alg)

	signedTx, err := tx.Sign(kp)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("from:", hexutil.Encode(signedTx.From.Bytes))
	fmt.Println("digest:", signedTx.Digest().Hex())
	fmt.Println("signature:", hexutil.Encode(signedTx.Sig.Bytes))
}
