// Command pkgdex-sync runs the catalog batch jobs: embedding generation and
// the full-text index rebuild.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
