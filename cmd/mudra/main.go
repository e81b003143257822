// Command mudra turns hand gestures seen by a webcam into pointer input.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ayusman/mudra/internal/config"
)

func main() {
	// Environment first, so flag defaults already reflect MUDRA_* values
	// and explicit flags win over both.
	cfg := config.Default()
	envErr := cfg.ApplyEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(&cfg, envErr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
