package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/tui"
)

func init() {
	Register(&TUICmd{})
}

// TUICmd implements the tui command.
type TUICmd struct{}

func (c *TUICmd) Name() string      { return "tui" }
func (c *TUICmd) Aliases() []string { return nil }
func (c *TUICmd) Synopsis() string  { return "Open the interactive list" }
func (c *TUICmd) Usage() string     { return "todo tui" }
func (c *TUICmd) NeedsAuth() bool   { return true }

func (c *TUICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TUICmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if err := tui.Run(ctx, env.Store, os.Stdin, out); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
