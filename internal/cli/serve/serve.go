package serve

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GustavoCaso/spendtrace/internal/cli"
	"github.com/GustavoCaso/spendtrace/internal/config"
	"github.com/GustavoCaso/spendtrace/internal/events"
	"github.com/GustavoCaso/spendtrace/internal/logger"
	"github.com/GustavoCaso/spendtrace/internal/router"
	"github.com/GustavoCaso/spendtrace/internal/storage"
)

type serveCommand struct {
}

func NewCommand() cli.Command {
	return serveCommand{}
}

func (c serveCommand) Description() string {
	return "Serves the REST API"
}

var port string
var timeout int

func (c serveCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&port, "p", "", "port to listen on (defaults to server.port)")
	fs.IntVar(&timeout, "t", 0, "read header timeout in seconds (defaults to server.read_header_timeout)")
}

func (c serveCommand) Run(ctx context.Context, stor storage.Storage, conf *config.Config, logger *logger.Logger) error {
	if port == "" {
		port = conf.Server.Port
	}
	if timeout <= 0 {
		timeout = conf.Server.ReadHeaderTimeout
	}

	publisher := events.NewPublisher(conf.AMQP, logger.WithComponent("events"))
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close publisher", "error", err)
		}
	}()

	server := &http.Server{
		ReadHeaderTimeout: time.Duration(timeout) * time.Second,
		Handler:           router.New(stor, publisher, logger.WithComponent("http"), conf.Server.TrustedOrigins),
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		return fmt.Errorf("unable to listen on port %s: %w", port, err)
	}

	logger.Info("Serving API", "url", fmt.Sprintf("http://localhost:%s", port))

	return serve(ctx, server, listener, time.Duration(conf.Server.ShutdownTimeout)*time.Second, logger)
}

// serve runs server on listener until ctx is done, then shuts it down waiting
// at most shutdownTimeout for in-flight requests.
func serve(
	ctx context.Context,
	server *http.Server,
	listener net.Listener,
	shutdownTimeout time.Duration,
	logger *logger.Logger,
) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("Shutting down server", "timeout", shutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}

		logger.Info("Server stopped gracefully")
		return nil
	})

	return g.Wait()
}
