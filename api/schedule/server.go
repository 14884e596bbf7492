package schedule

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Config configures the HTTP listener.
type Config struct {
	Addr  string `json:"addr"`
	Token string `json:"token"`
	// WriteTimeoutSeconds must exceed the scheduler time limit.
	WriteTimeoutSeconds int `json:"write_timeout_seconds"`
}

// SetDefaults fills the optional fields.
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.WriteTimeoutSeconds == 0 {
		c.WriteTimeoutSeconds = 120
	}
}

// Validate checks the listener settings.
func (c Config) Validate() error {
	if c.WriteTimeoutSeconds < 0 {
		return fmt.Errorf("http: write_timeout_seconds must be non-negative")
	}
	return nil
}

// Serve runs an HTTP server for h on cfg.Addr until ctx is canceled.
func Serve(ctx context.Context, cfg Config, h http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
