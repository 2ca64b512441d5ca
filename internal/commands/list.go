package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/positional"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args) and `todo list`.
type ListCmd struct{}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "todo list" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if err := env.Store.Load(ctx); err != nil {
		return output.PrintFailure(errOut, err)
	}
	tasks := env.Store.Tasks()

	// A gap means an earlier remove was interrupted; show the list as stored.
	if err := positional.Check(tasks); err != nil && !cfg.Quiet {
		fmt.Fprintf(errOut, "warning: %v\n", err)
	}

	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	output.FormatTasks(out, tasks)
	return exitcode.Success
}
