// Command tada-devserver serves an in-memory todo backend for local use
// with the tada client.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/idilsaglam/tada/internal/backend"
	"github.com/idilsaglam/tada/internal/logging"
)

func main() {
	addr := flag.String("addr", ":3000", "listen address")
	level := flag.String("log-level", "info", "debug|info|warn|error")
	format := flag.String("log-format", "text", "text|json|logfmt")
	flag.Parse()

	logger := logging.New(os.Stderr, logging.Options{
		Level:           *level,
		Format:          *format,
		ReportTimestamp: true,
		Prefix:          "devserver",
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           backend.New(backend.WithLogger(logger)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", *addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", "err", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}
}
