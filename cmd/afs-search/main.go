// Command afs-search queries an AFS search service from the terminal
package main

import (
	"os"

	"afsearch/internal/platform/logger"
)

func main() {
	a := &app{out: os.Stdout, connect: dial, connectACP: dialACP}
	if err := newRootCmd(a).Execute(); err != nil {
		logger.Named("afs-search").Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
