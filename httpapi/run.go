package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"
)

// Run serves until ctx is done, then shuts srv down, giving in-flight
// requests up to timeout to finish. cleanup, if set, runs after shutdown.
func Run(ctx context.Context, srv *http.Server, appName string, cleanup func(), timeout time.Duration) error {
	serverErr := make(chan error, 1)
	go func() {
		log.Printf("[INFO] %q listening on %s ...", appName, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		if cleanup != nil {
			cleanup()
		}
		return err
	case <-ctx.Done():
	}
	log.Printf("[INFO] shutting down %q ...", appName)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] server shutdown failed: %v", err)
	}
	if cleanup != nil {
		cleanup()
	}
	if err := <-serverErr; err != nil {
		return err
	}
	log.Printf("[INFO] %q shutdown complete", appName)
	return nil
}
