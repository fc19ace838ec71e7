package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/graphrec/internal/metrics"
)

// capacityWarnPercent is the share of a kind's ids in use above which stat warns.
const capacityWarnPercent = 90

// StatCmd returns the stat command.
func StatCmd(s *settings) *Command {
	flags := flag.NewFlagSet("stat", flag.ContinueOnError)
	withMetrics := flags.Bool("metrics", false, "Print metrics in prometheus text format")

	return &Command{
		Flags: flags,
		Usage: "stat [--metrics]",
		Short: "Show id watermarks per record kind",
		Long:  "Print the high id and highest written id of every record kind.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			return execStat(o, s, *withMetrics)
		},
	}
}

func execStat(o *IO, s *settings, withMetrics bool) (err error) {
	stores, err := s.openStores()
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, stores.Close())
	}()

	o.Printf("store %s\n\n", stores.StoreID())

	w := tabwriter.NewWriter(o.Out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KIND\tHIGH_ID\tHIGHEST_WRITTEN")

	for _, st := range stores.HighIDs() {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\n", st.Kind, st.HighID, st.HighestWritten)

		if st.HighID*100 >= s.cfg.Capacity*capacityWarnPercent {
			o.Warn(fmt.Sprintf("%s ids %d of %d used", st.Kind, st.HighID, s.cfg.Capacity),
				"create a new store with a larger capacity")
		}
	}

	err = w.Flush()
	if err != nil {
		return fmt.Errorf("write stats: %w", err)
	}

	if !withMetrics {
		return nil
	}

	return writeMetrics(o)
}

func writeMetrics(o *IO) error {
	reg := prometheus.NewRegistry()

	collectors := append(metrics.StoreCollectors(), metrics.RecordAccessCollectors()...)
	collectors = append(collectors, metrics.JournalCollectors()...)

	for _, c := range collectors {
		err := reg.Register(c)
		if err != nil {
			return fmt.Errorf("register collector: %w", err)
		}
	}

	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	o.Println()

	return writeFamilies(o.Out(), families)
}

func writeFamilies(w io.Writer, families []*dto.MetricFamily) error {
	for _, mf := range families {
		if len(mf.GetMetric()) == 0 {
			continue
		}

		_, err := expfmt.MetricFamilyToText(w, mf)
		if err != nil {
			return fmt.Errorf("write %s: %w", mf.GetName(), err)
		}
	}

	return nil
}
