// Package main starts the gazewaldo server.
package main

import (
	"flag"
	"fmt"
	"os"
)

// main is the entrypoint for the gazewaldo server.
func main() {
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	configPath := flag.String("config", "", "Path to a config file (default ./data/config.yaml)")
	flag.Parse()

	if err := run(*debug, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
