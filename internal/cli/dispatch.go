// Package cli parses the command line and dispatches to commands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/logging"
	"todo/internal/service"
	"todo/internal/session"
	"todo/internal/taskstore"
)

// GatewayFactory creates the document gateway for the configured backend.
// Used to inject the backend during dispatch.
type GatewayFactory func(ctx context.Context, cfg *config.Config) (service.Gateway, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  GatewayFactory
}

// NewDispatcher creates a new dispatcher with the given registry and gateway factory.
func NewDispatcher(registry *commands.Registry, factory GatewayFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return flagError(err, errOut)
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug
	cfg.Log = logging.New(errOut, debug)

	if err := cfg.Load(); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	sess, err := session.Open(cfg.SessionPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	env := &commands.Env{Session: sess}

	if cmd.NeedsAuth() {
		owner, ok := sess.CurrentOwnerID()
		if !ok {
			fmt.Fprintln(errOut, "error: not logged in (run: todo login)")
			return exitcode.AuthError
		}
		if d.factory == nil {
			fmt.Fprintln(errOut, "error: no backend configured")
			return exitcode.BackendError
		}

		cfg.Log.V(1).Info("opening backend", "backend", cfg.Backend, "owner", owner)
		gw, err := d.factory(ctx, cfg)
		if err != nil {
			if strings.Contains(err.Error(), "token") || strings.Contains(err.Error(), "auth") {
				fmt.Fprintf(errOut, "error: auth error: %s\n", err)
				return exitcode.AuthError
			}
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
		if closer, ok := gw.(io.Closer); ok {
			defer closer.Close()
		}

		store := taskstore.New(gw, sess, taskstore.WithLogger(cfg.Log))
		defer store.Close()

		env.OwnerID = owner
		env.Gateway = gw
		env.Store = store
	}

	return cmd.Run(ctx, cfg, env, positionalArgs, out, errOut)
}

// flagError reports a flag parsing failure and returns the exit code.
func flagError(err error, errOut io.Writer) int {
	errStr := err.Error()

	// Check for missing flag value
	if strings.HasPrefix(errStr, "flag needs an argument:") {
		flagPart := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagPart)
		return exitcode.UserError
	}

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: %s\n", errStr)
	return exitcode.UserError
}
