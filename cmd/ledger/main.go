package main

import (
	"os"

	"github.com/mistakia/finance-sub001/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
