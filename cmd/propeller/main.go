// Command propeller runs cross-chain swaps through the propeller routing
// contracts, either one-shot from the command line or behind an HTTP API.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
