// This program provides a small wallet for generating keys and signing and
// verifying transactions.
package main

import "github.com/ardanlabs/ledger/app/wallet/cmd"

func main() {
	cmd.Execute()
}
