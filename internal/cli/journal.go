package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/graphrec/pkg/journal"
	"github.com/calvinalkan/graphrec/pkg/recordaccess"
)

// JournalCmd returns the journal command.
func JournalCmd(s *settings) *Command {
	flags := flag.NewFlagSet("journal", flag.ContinueOnError)
	prune := flags.Bool("prune", false, "Delete batches that were already replayed")

	return &Command{
		Flags: flags,
		Usage: "journal [--prune]",
		Short: "List journaled batches not yet replayed",
		Long: "Print every batch committed with 'shell --journal' that has not been\n" +
			"replayed into the stores. With --prune, replayed batches are deleted first.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execJournal(ctx, o, s, *prune)
		},
	}
}

func execJournal(ctx context.Context, o *IO, s *settings, prune bool) (err error) {
	j, err := s.openJournal(ctx)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, j.Close())
	}()

	if prune {
		n, pruneErr := j.Prune(ctx)
		if pruneErr != nil {
			return pruneErr
		}

		o.Printf("pruned %d batches\n", n)
	}

	batches, err := j.Pending(ctx)
	if err != nil {
		return err
	}

	if len(batches) == 0 {
		o.Println("no pending batches")

		return nil
	}

	w := tabwriter.NewWriter(o.Out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SEQ\tCOMMANDS\tCREATED")

	for _, b := range batches {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\n", b.Seq, len(b.Commands), b.CreatedAt.UTC().Format(time.RFC3339))
	}

	err = w.Flush()
	if err != nil {
		return fmt.Errorf("write batches: %w", err)
	}

	return nil
}

// ReplayCmd returns the replay command.
func ReplayCmd(s *settings) *Command {
	return &Command{
		Flags: flag.NewFlagSet("replay", flag.ContinueOnError),
		Usage: "replay",
		Short: "Apply journaled batches to the stores",
		Long:  "Commit every pending journal batch to the stores in order and mark it replayed.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execReplay(ctx, o, s)
		},
	}
}

func execReplay(ctx context.Context, o *IO, s *settings) (err error) {
	stores, err := s.openStores()
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, stores.Close())
	}()

	j, err := s.openJournal(ctx)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, j.Close())
	}()

	n, err := journal.Replay(ctx, j, func() recordaccess.RecordAccessSet {
		return stores.NewDirect()
	})
	if err != nil {
		return fmt.Errorf("replayed %d batches: %w", n, err)
	}

	o.Printf("replayed %d batches\n", n)

	return nil
}
