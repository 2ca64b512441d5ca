// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"todo/internal/config"
	"todo/internal/service"
	"todo/internal/session"
	"todo/internal/taskstore"
)

// Env carries what a command runs against.
type Env struct {
	// Session is always set.
	Session *session.Manager

	// OwnerID, Gateway and Store are set only when NeedsAuth() is true.
	OwnerID string
	Gateway service.Gateway
	Store   *taskstore.Store
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a signed-in owner and a backend.
	// Commands like help, version, login, logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths, backend settings).
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int
}
