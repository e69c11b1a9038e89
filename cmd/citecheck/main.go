package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/realibuddy/citecheck/internal/cli"
)

func main() {
	// Load .env if present; real environment variables win.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
