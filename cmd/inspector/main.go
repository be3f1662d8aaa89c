package main

import (
	"os"

	"github.com/leozw/domain-inspector/cmd/inspector/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
