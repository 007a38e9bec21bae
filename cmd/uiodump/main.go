// Command uiodump inspects files through uio windows: hex dumps, typed
// decoding, checksums and bit-field extraction, over plain, memory-mapped
// or spanned files.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
