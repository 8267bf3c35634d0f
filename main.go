package main

import (
	"os"

	"github.com/wokar/lgnetcast/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
