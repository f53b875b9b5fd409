package main

import (
	"fmt"
	"os"

	"github.com/himansu2198/Job-Listing-Portal/internal/cli"
)

func main() {
	if err := cli.BuildCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
