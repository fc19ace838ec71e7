package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/graphrec/pkg/recordaccess"
)

const historyFileName = ".graphrec_history"

// ShellCmd returns the shell command.
func ShellCmd(s *settings) *Command {
	flags := flag.NewFlagSet("shell", flag.ContinueOnError)
	useJournal := flags.Bool("journal", false, "Commit into the journal instead of the stores")

	return &Command{
		Flags: flags,
		Usage: "shell [--journal]",
		Short: "Edit records interactively",
		Long: "Start an interactive shell over the stores. Changes are tracked in one\n" +
			"record access set and written by 'commit'. With --journal, 'commit'\n" +
			"appends the changes to the journal; see 'replay'. Input that is not a\n" +
			"terminal is read as a script, one command per line, stopping at the\n" +
			"first error.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execShell(ctx, o, s, *useJournal)
		},
	}
}

func execShell(ctx context.Context, o *IO, s *settings, useJournal bool) (err error) {
	stores, err := s.openStores()
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, stores.Close())
	}()

	var sink recordaccess.CommandSink

	if useJournal {
		j, openErr := s.openJournal(ctx)
		if openErr != nil {
			return openErr
		}

		defer func() {
			err = errors.Join(err, j.Close())
		}()

		sink = j
	}

	session := NewSession(stores, sink, o.Out())

	if f, ok := s.in.(*os.File); ok && f == os.Stdin && liner.TerminalSupported() {
		err = runREPL(ctx, o, session)
	} else {
		err = runScript(ctx, s.in, session)
	}

	if n := session.Pending(); n > 0 {
		o.Warn(fmt.Sprintf("%d uncommitted changes discarded", n), "run 'commit' before exiting")
	}

	return err
}

// runScript executes one command per line from in.
func runScript(ctx context.Context, in io.Reader, session *Session) error {
	if in == nil {
		return nil
	}

	scanner := bufio.NewScanner(in)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		err := ctx.Err()
		if err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		err = session.Exec(line)
		if errors.Is(err, errQuit) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	return scanner.Err()
}

// runREPL reads commands from the terminal until exit or EOF. Command errors
// are printed and the loop continues.
func runREPL(ctx context.Context, o *IO, session *Session) error {
	state := liner.NewLiner()
	defer state.Close()

	state.SetCtrlCAborts(true)
	state.SetCompleter(completer)

	history := historyFile()
	if f, err := os.Open(history); err == nil { //nolint:gosec // history path is derived from the home dir
		_, _ = state.ReadHistory(f)
		_ = f.Close()
	}

	defer saveHistory(state, history)

	o.Println("graphrec shell - type 'help' for commands")

	for ctx.Err() == nil {
		line, err := state.Prompt("graphrec> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				o.Println()

				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		state.AppendHistory(line)

		err = session.Exec(line)
		if errors.Is(err, errQuit) {
			return nil
		}

		if err != nil {
			o.Println("error:", err)
		}
	}

	return ctx.Err()
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, historyFileName)
}

func saveHistory(state *liner.State, path string) {
	if path == "" {
		return
	}

	f, err := os.Create(path) //nolint:gosec // history path is derived from the home dir
	if err != nil {
		return
	}

	_, _ = state.WriteHistory(f)
	_ = f.Close()
}

func completer(line string) []string {
	var completions []string

	lower := strings.ToLower(line)

	for _, c := range sessionCommands {
		name, _, _ := strings.Cut(c.usage, " ")
		if strings.HasPrefix(name, lower) {
			completions = append(completions, name)
		}
	}

	return completions
}
