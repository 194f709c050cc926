// Command reconcile runs the admin rights sync and the participant backfill
// from the command line, for schedulers that cannot call the HTTP endpoints.
package main

import (
	"os"

	"orbo/internal/logger"
)

func main() {
	defer logger.Sync()

	if err := newRootCmd().Execute(); err != nil {
		logger.Sync()
		os.Exit(1)
	}
}
