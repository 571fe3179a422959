package runtime

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext is cancelled on the first SIGINT or SIGTERM so the service can
// drain. A second signal skips the drain and exits with status 1.
func SignalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	return signalContext(logger, func() { os.Exit(1) }, syscall.SIGINT, syscall.SIGTERM)
}

func signalContext(logger *slog.Logger, forceExit func(), sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, sigs...)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-ch:
			logger.Info("shutdown requested", "signal", sig.String())
			cancel()
		case <-done:
			return
		}
		select {
		case sig := <-ch:
			logger.Warn("second signal, exiting without drain", "signal", sig.String())
			forceExit()
		case <-done:
		}
	}()

	stop := func() {
		signal.Stop(ch)
		select {
		case <-done:
		default:
			close(done)
		}
		cancel()
	}
	return ctx, stop
}
