// File: cmd/cafeposter/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/cafeposter-cli/cmd"
	"github.com/xkilldash9x/cafeposter-cli/internal/observability"
)

// Allows mocking os.Exit in tests.
var osExit = os.Exit

func main() {
	// Ctrl+C cancels the context so pending browser windows get torn down
	// instead of leaking.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			osExit(0)
		}
		osExit(1)
	}
}
