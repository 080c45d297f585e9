package main

import (
	"fmt"
	"os"

	"github.com/foundry-rs/foundryup/internal/errkind"
)

// Version will be set at build time via -ldflags
var Version = "v0.0.1"

func main() {
	if err := runInstall(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "foundryup: error: %v\n", err)
		os.Exit(errkind.KindOf(err).ExitCode())
	}
}
