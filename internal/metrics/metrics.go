// Package metrics defines the prometheus collectors of graphrec.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Key constants are exported primarily for documentation reasons. Typically,
// they will not be used programmatically outside of defining the collectors.

// Keys for record access metrics.
const (
	CommitsTotalKey          = "graphrec_commits_total"
	FailedCommitsTotalKey    = "graphrec_failed_commits_total"
	FlushedRecordsTotalKey   = "graphrec_flushed_records_total"
	CommitDurationSecondsKey = "graphrec_commit_duration_seconds"
)

// Collectors for record access metrics.
var (
	CommitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: CommitsTotalKey,
		Help: "Cumulative number of record access sets committed.",
	})
	FailedCommitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: FailedCommitsTotalKey,
		Help: "Cumulative number of commits that failed writing a record.",
	})
	FlushedRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: FlushedRecordsTotalKey,
		Help: "Cumulative number of records written to stores by commits.",
	}, []string{"kind"})
	CommitDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: CommitDurationSecondsKey,
		Help: "Duration of record access set commits, including id reconciliation.",
	})
)

// RecordAccessCollectors returns the record access collectors.
func RecordAccessCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		CommitsTotal,
		FailedCommitsTotal,
		FlushedRecordsTotal,
		CommitDurationSeconds,
	}
}

// Keys for store metrics.
const (
	IDHighWaterKey      = "graphrec_id_high_water"
	IDHighestWrittenKey = "graphrec_id_highest_written"
)

// Collectors for store metrics.
var (
	IDHighWater = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: IDHighWaterKey,
		Help: "Next id the generator of a record kind hands out.",
	}, []string{"kind"})
	IDHighestWritten = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: IDHighestWrittenKey,
		Help: "Highest written id of a record kind at the last reconciliation.",
	}, []string{"kind"})
)

// StoreCollectors returns the store collectors.
func StoreCollectors() []prometheus.Collector {
	return []prometheus.Collector{IDHighWater, IDHighestWritten}
}

// Keys for command journal metrics.
const (
	JournalAppendedBatchesTotalKey = "graphrec_journal_appended_batches_total"
	JournalReplayedBatchesTotalKey = "graphrec_journal_replayed_batches_total"
)

// Collectors for command journal metrics.
var (
	JournalAppendedBatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: JournalAppendedBatchesTotalKey,
		Help: "Cumulative number of command batches appended to journals.",
	})
	JournalReplayedBatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: JournalReplayedBatchesTotalKey,
		Help: "Cumulative number of journal batches replayed into stores.",
	})
)

// JournalCollectors returns the command journal collectors.
func JournalCollectors() []prometheus.Collector {
	return []prometheus.Collector{JournalAppendedBatchesTotal, JournalReplayedBatchesTotal}
}
