package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "todo help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, env *Env, args []string, out, errOut io.Writer) int {
	WriteUsage(out, DefaultRegistry)
	return exitcode.Success
}

// WriteUsage prints the usage of every command in r.
func WriteUsage(w io.Writer, r *Registry) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %-36s %s\n", "todo", "List tasks")
	for _, cmd := range r.All() {
		synopsis := cmd.Synopsis()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			synopsis += " (alias: " + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(w, "  %-36s %s\n", cmd.Usage(), synopsis)
	}
	fmt.Fprint(w, commonFlagsText)
}

const commonFlagsText = `
Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
