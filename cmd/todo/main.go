// Package main is the entry point for the todo CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"todo/internal/backend/cloudfirestore"
	"todo/internal/backend/sqlite"
	"todo/internal/cli"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newGateway)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

// newGateway opens the backend selected in config.toml.
func newGateway(ctx context.Context, cfg *config.Config) (service.Gateway, error) {
	if cfg.Backend == config.BackendFirestore {
		client, err := cloudfirestore.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	store, err := sqlite.Open(cfg.SQLitePath())
	if err != nil {
		return nil, err
	}
	return store, nil
}
