// Command funcbind compiles CUE function definitions into host manifests
// and a Go registration table.
package main

import (
	"os"

	"github.com/roach88/funcbind/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
