// derive_key.go prints the derived addresses for a seed phrase read from
// a file, including the legacy TFChain address used by the migration
// service.
// Usage: go run scripts/derive_key.go <phrasefile> [index]
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jimber/tft-wallet/internal/wallet"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_key <phrasefile> [index]")
		os.Exit(1)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	mnemonic := strings.TrimSpace(string(data))

	var index uint32
	if len(os.Args) > 2 {
		n, err := strconv.ParseUint(os.Args[2], 10, 32)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		index = uint32(n)
	}

	kp, err := wallet.DeriveKeyPair(mnemonic, index)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	tfchain, err := wallet.RevineAddressFromSeed(mnemonic, index)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("address=%s\n", kp.Address())
	fmt.Printf("tfchain_address=%s\n", tfchain)
}
