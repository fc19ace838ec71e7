// Package cli implements the graphrec command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/graphrec/internal/config"
	"github.com/calvinalkan/graphrec/pkg/graphstore"
	"github.com/calvinalkan/graphrec/pkg/journal"
)

var (
	errUnknownCommand = errors.New("unknown command")
	errUsage          = errors.New("wrong arguments")
)

// settings is the resolved environment shared by all commands.
type settings struct {
	workDir string
	cfg     config.Config
	sources config.Sources
	in      io.Reader
}

// StoreDir returns the absolute store directory.
func (s *settings) StoreDir() string {
	return s.cfg.StorePath(s.workDir)
}

func (s *settings) openStores() (*graphstore.Stores, error) {
	return graphstore.Open(graphstore.Options{
		Dir:         s.StoreDir(),
		Capacity:    s.cfg.Capacity,
		SyncOnClose: s.cfg.SyncOnClose,
	})
}

func (s *settings) openJournal(ctx context.Context) (*journal.Journal, error) {
	return journal.Open(ctx, filepath.Join(s.StoreDir(), journal.FileName))
}

func commands(s *settings) []*Command {
	return []*Command{
		InitCmd(s),
		StatCmd(s),
		ShowCmd(s),
		ShellCmd(s),
		JournalCmd(s),
		ReplayCmd(s),
		PrintConfigCmd(s),
	}
}

// Run is the main entry point. Returns exit code.
//
// in is only read by the shell command. A signal on sigCh cancels the
// running command; sigCh may be nil.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := flag.NewFlagSet("graphrec", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(&strings.Builder{})

	workDir := globals.StringP("cwd", "C", "", "Run as if started in `dir`")
	configPath := globals.StringP("config", "c", "", "Use specified config `file`")
	storeDir := globals.String("store-dir", "", "Override store_dir")
	capacity := globals.Int64("capacity", 0, "Override capacity")
	logLevel := globals.String("log-level", "", "Override log_level")
	help := globals.BoolP("help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:]
	}

	err := globals.Parse(args)
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut, globals, nil)

		return 1
	}

	if *workDir == "" {
		*workDir, err = os.Getwd()
		if err != nil {
			fprintln(errOut, "error: cannot get working directory:", err)

			return 1
		}
	}

	var overrides config.Overrides
	if globals.Changed("store-dir") {
		overrides.StoreDir = storeDir
	}

	if globals.Changed("capacity") {
		overrides.Capacity = capacity
	}

	if globals.Changed("log-level") {
		overrides.LogLevel = logLevel
	}

	cfg, sources, err := config.Load(*workDir, *configPath, overrides, env)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	log.SetOutput(errOut)
	log.SetLevel(cfg.Level())

	s := &settings{workDir: *workDir, cfg: cfg, sources: sources, in: in}
	cmds := commands(s)

	rest := globals.Args()
	if *help || len(rest) == 0 {
		printUsage(out, globals, cmds)

		return 0
	}

	cmd := findCommand(cmds, rest[0])
	if cmd == nil {
		fprintln(errOut, "error:", fmt.Errorf("%w: %s", errUnknownCommand, rest[0]))
		printUsage(errOut, globals, cmds)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	return cmd.Run(ctx, NewIO(out, errOut), rest[1:])
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, globals *flag.FlagSet, cmds []*Command) {
	fprintln(w, "graphrec - graph record store tool")
	fprintln(w)
	fprintln(w, "Usage: graphrec [options] <command> [args]")
	fprintln(w)
	fprintln(w, "Options:")

	var buf strings.Builder
	globals.SetOutput(&buf)
	globals.PrintDefaults()
	globals.SetOutput(&strings.Builder{})
	_, _ = io.WriteString(w, buf.String())

	if len(cmds) == 0 {
		return
	}

	fprintln(w)
	fprintln(w, "Commands:")

	writeCommandTable(w, cmds)
}
