package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&InitCmd{})
}

// InitCmd implements the init command.
// It creates the signed-in owner's empty task document.
type InitCmd struct{}

func (c *InitCmd) Name() string      { return "init" }
func (c *InitCmd) Aliases() []string { return nil }
func (c *InitCmd) Synopsis() string  { return "Create an empty task list for the signed-in owner" }
func (c *InitCmd) Usage() string     { return "todo init" }
func (c *InitCmd) NeedsAuth() bool   { return true }

func (c *InitCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *InitCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	err := env.Gateway.CreateDocument(ctx, env.OwnerID, service.DocumentID(env.OwnerID), map[string]string{})
	switch {
	case errors.Is(err, service.ErrAlreadyExists):
		if !cfg.Quiet {
			fmt.Fprintln(out, "already initialized")
		}
		return exitcode.Success
	case err != nil:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
