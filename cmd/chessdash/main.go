// Package main is the entry point for chessdash.
package main

import (
	"fmt"
	"os"

	"github.com/chessdash/chessdash/internal/cli"

	// Register platform adapters
	_ "github.com/chessdash/chessdash/internal/source/chesscom"
	_ "github.com/chessdash/chessdash/internal/source/lichess"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
