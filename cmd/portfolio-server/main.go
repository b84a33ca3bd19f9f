package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portfolio "github.com/goliatone/go-portfolio"
	"github.com/goliatone/go-portfolio/commands"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := runServer(ctx, os.Args[1:]); err != nil {
		log.Fatalf("portfolio-server: %v", err)
	}
}

// setup loads configuration, opens the module, applies migrations and
// registers command handlers on a go-command dispatcher.
func setup(ctx context.Context, configPath string) (*portfolio.Module, *commands.RegistrationResult, error) {
	cfg, err := portfolio.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	module, err := portfolio.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open module: %w", err)
	}
	if _, err := module.Migrate(ctx); err != nil {
		_ = module.Close(ctx)
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	registration, err := module.RegisterCommands(commands.RegistrationOptions{
		Dispatcher: commands.NewGoCommandDispatcher(cfg.Commands.MaxRetries),
	})
	if err != nil {
		_ = module.Close(ctx)
		return nil, nil, fmt.Errorf("register commands: %w", err)
	}
	return module, registration, nil
}

func runServer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("portfolio-server", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to the YAML configuration file")
	addr := fs.String("addr", "", "Listen address; overrides http.addr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, registration, err := setup(ctx, *configPath)
	if err != nil {
		return err
	}
	defer registration.Unsubscribe()
	defer module.Close(context.Background())

	handler, err := module.Handler()
	if err != nil {
		return fmt.Errorf("mount routes: %w", err)
	}

	listen := module.Container().Config.HTTP.Addr
	if *addr != "" {
		listen = *addr
	}
	server := &http.Server{
		Addr:              listen,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger := module.Container().Logger("server")

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server.listen", "addr", listen)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("server.shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
