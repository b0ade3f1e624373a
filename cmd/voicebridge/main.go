// Package main is the voicebridge command line entry point.
package main

import (
	"fmt"
	"os"

	"github.com/foxseedlab/voicebridge/cmd/voicebridge/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
