package httpserver

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownTimeout controls how long to wait for graceful shutdowns.
var ShutdownTimeout = 10 * time.Second

// Run serves on l until ctx is canceled, SIGINT or SIGTERM arrives, or the server fails,
// then drains in-flight requests for at most timeout. A nil listener listens on the
// server's address.
func Run(ctx context.Context, srv *Server, l net.Listener, timeout time.Duration, logger *zap.Logger) error {
	if timeout <= 0 {
		timeout = ShutdownTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	srvErr := make(chan error, 1)
	go func() {
		if l == nil {
			srvErr <- srv.Start()
			return
		}
		srvErr <- srv.Serve(l)
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-srvErr:
		if !IsClosed(err) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-srvErr; !IsClosed(err) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
