// Package cmd contains wallet app
package cmd

import (
	"os"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/validate"
	"github.com/spf13/cobra"
)

var algorithm string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Your simple wallet",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&algorithm, "alg", "a", "ed25519", "Signature algorithm, ed25519 or secp256k1.")
}

// getAlgorithm validates and parses the algorithm flag.
func getAlgorithm() (signature.Algorithm, error) {
	flags := struct {
		Algorithm string `json:"alg" validate:"required,algorithm"`
	}{
		Algorithm: algorithm,
	}

	if err := validate.Check(flags); err != nil {
		return 0, err
	}

	return signature.ParseAlgorithm(algorithm)
}
