package main

import (
	"os"

	"github.com/pmallet/valuecheck/cmd/valuecheck/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
