package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair and print the public key",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) {
	alg, err := getAlgorithm()
	if err != nil {
		log.Fatal(err)
	}

	kp, err := signature.Generate(alg)
	if err != nil {
		log.Fatal(err)
	}
	defer kp.Destroy()

	fmt.Println("alg:", alg)
	fmt.Println("public key:", hexutil.Encode(kp.PublicKey().Bytes))
}
