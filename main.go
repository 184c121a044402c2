// Package main is the entry point for the ctidash threat dashboard backend.
package main

import (
	"os"

	"ctidash/cmd"
	_ "ctidash/docs"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
