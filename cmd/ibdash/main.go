package main

import (
	"os"

	"github.com/mhenders/ibdash/cmd/ibdash/commands"
)

// main is the entry point for the ibdash CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
