package main

import (
	"os"

	"github.com/trknhr/semantle/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
