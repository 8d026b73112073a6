// Command spimdisasm is the CLI front end for the core symbol
// discovery/pairing and rodata/text migration engine (SPEC_FULL.md §2
// component 9). It has no logic of its own beyond flag parsing and file
// I/O: internal/cli builds the command tree and internal/engine runs the
// actual analysis.
package main

import (
	"os"

	"github.com/Decompollaborate/spimdisasm/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
