package main

import (
	"os"

	"github.com/metaphox/moon-lang/cmd/moon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
