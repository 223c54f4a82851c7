package main

import (
	"os"

	"github.com/smegmarip/stash-emotion-plugin/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
