package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
// An empty text removes the task, like clearing it in the TUI.
type EditCmd struct{}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Replace the text of a task; empty text removes it" }
func (c *EditCmd) Usage() string     { return "todo edit <n> <text...>" }
func (c *EditCmd) NeedsAuth() bool   { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	num, err := ParseTaskNumber(args)
	if err != nil {
		return printTaskNumberError(err, errOut)
	}
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: text required")
		return exitcode.UserError
	}

	if err := env.Store.Edit(ctx, num-1, strings.Join(args[1:], " ")); err != nil {
		return output.PrintFailure(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
