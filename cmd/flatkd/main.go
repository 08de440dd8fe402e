package main

import (
	"os"

	"github.com/viant/flatkd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
