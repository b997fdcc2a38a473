package main

import (
	"os"

	"github.com/wonny/coverline/cmd/coverline/commands"
)

// main is the entry point for the coverline CLI
// ⭐ single CLI entry point: go run ./cmd/coverline [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
