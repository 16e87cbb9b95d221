// Command weatherbt loads station weather CSV files into Bigtable and runs the
// fixed weather reports against them.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
