// Command snmtx reads, transforms, and merges sparse count-matrix
// triples (matrix.mtx + features.tsv + barcodes.tsv).
package main

import (
	"fmt"
	"os"

	"github.com/eunmann/snmtx/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
