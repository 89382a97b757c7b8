package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// ShutdownTimeout bounds how long outstanding requests may run after ctx is
// cancelled.
var ShutdownTimeout = 5 * time.Second

// Serve runs the API on ln until ctx is cancelled, then drains requests and
// closes the session, which disconnects every switch.
func Serve(ctx context.Context, ln net.Listener, s *Session) error {
	srv := &http.Server{
		Handler:           NewHandler(s),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.log.Info("agent listening", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		s.Close()
		return err

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("graceful shutdown did not complete", "timeout", ShutdownTimeout, "error", err)
			errs = append(errs, srv.Close())
		}
		errs = append(errs, s.Close())
		s.log.Info("agent stopped")
		return errors.Join(errs...)
	}
}
