package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	flag "github.com/spf13/pflag"
)

// Command is one graphrec subcommand: a store operation such as show or
// replay, run against the store directory resolved from the global flags.
type Command struct {
	// Flags holds the subcommand's own flags, parsed after the global ones.
	Flags *flag.FlagSet

	// Usage starts with the command name, followed by its arguments,
	// for example "show <kind> <id>".
	Usage string

	// Short is listed next to Usage in the command table.
	Short string

	// Long is printed by --help. Short is used when empty.
	Long string

	// Exec runs with the positional arguments left after flag parsing.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// PrintHelp prints the usage, description and flags of c.
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: graphrec", c.Usage)
	o.Println()

	if c.Long != "" {
		o.Println(c.Long)
	} else {
		o.Println(c.Short)
	}

	if c.Flags == nil || !c.Flags.HasFlags() {
		return
	}

	var buf strings.Builder

	c.Flags.SetOutput(&buf)
	c.Flags.PrintDefaults()

	o.Println()
	o.Println("Flags:")
	o.Printf("%s", buf.String())
}

// Run parses args and executes c, returning the exit code. Wrong
// arguments print the error followed by the usage line.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(io.Discard)

	err := c.Flags.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		c.PrintHelp(o)

		return 0
	}

	if err != nil {
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(o)

		return 1
	}

	err = c.Exec(ctx, o, c.Flags.Args())
	if err != nil {
		o.ErrPrintln("error:", err)

		if errors.Is(err, errUsage) {
			o.ErrPrintln("usage: graphrec", c.Usage)
		}

		return 1
	}

	return o.Finish()
}

// findCommand returns the command called name, or nil.
func findCommand(cmds []*Command, name string) *Command {
	for _, c := range cmds {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// writeCommandTable lists every command's usage and short description in
// aligned columns.
func writeCommandTable(w io.Writer, cmds []*Command) {
	tw := tabwriter.NewWriter(w, 0, 4, 3, ' ', 0)

	for _, c := range cmds {
		_, _ = fmt.Fprintf(tw, "  %s\t%s\n", c.Usage, c.Short)
	}

	_ = tw.Flush()
}
