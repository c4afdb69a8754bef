// File: cmd/gosapweb/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sipb/gosapweb/cmd"
)

func main() {
	// Listen for interrupt signals so a Ctrl+C tears the browser down
	// gracefully instead of leaving an orphaned Chrome process.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
