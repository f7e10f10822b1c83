package main

import (
	"fmt"
	"log"
	"os"

	"github.com/langtools/symdex/internal/cli"
	"github.com/langtools/symdex/internal/store"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("symdex\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", store.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", store.DriverName)
		os.Exit(0)
	}

	// Command output goes to stdout; diagnostics stay on stderr.
	log.SetOutput(os.Stderr)

	cli.Execute()
}
