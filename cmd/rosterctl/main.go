package main

import (
	"fmt"
	"os"

	"github.com/noah-isme/sma-roster-api/internal/cli"
)

func main() {
	if err := cli.RootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
