package cmd

import (
	"context"
	"os/signal"
)

// setupShutdownHandler returns a context canceled by the first shutdown
// signal. The handler is then unregistered, so a second signal terminates
// the process.
func setupShutdownHandler() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}
