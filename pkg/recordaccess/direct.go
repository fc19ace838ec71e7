package recordaccess

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/calvinalkan/graphrec/internal/metrics"
	"github.com/calvinalkan/graphrec/pkg/idgen"
)

// Direct is a record access set that writes straight to the stores.
//
// Commit flushes the trackers in [record.Kinds] order and only then
// reconciles every id generator, including generators of kinds without
// changes. Records may have been written at ids that bypassed allocation, so
// the reconciliation has to see all writes of the commit.
type Direct struct {
	trackers

	ids       IDGenerators
	committed bool
}

// NewDirect returns a set over stores whose generators ids are reconciled
// after commit. Panics if a store or ids is nil.
func NewDirect(stores StoreSet, ids IDGenerators) *Direct {
	if ids == nil {
		panic("recordaccess: id generators are nil")
	}

	return &Direct{
		trackers: newTrackers(stores),
		ids:      ids,
	}
}

// Commit writes every changed record, then marks each id generator's
// highest written id at its high id.
//
// Every changed record is validated before the first write. A record that
// does not fit its layout rejects the commit with [record.ErrInvalid] and
// nothing is written. A failed store update aborts the commit: records of
// earlier kinds (and earlier ids of the failing kind) stay written, nothing
// is reconciled, and the error is returned. Commit runs at most once; later calls return
// [ErrCommitted].
func (s *Direct) Commit() error {
	if s.committed {
		return ErrCommitted
	}

	s.committed = true

	err := s.check()
	if err != nil {
		metrics.FailedCommitsTotal.Inc()
		log.WithField("err", err).Warn("record commit rejected")

		return err
	}

	start := time.Now()
	flushed := 0

	for _, tr := range s.all {
		n, err := tr.commit()
		metrics.FlushedRecordsTotal.WithLabelValues(tr.Kind().String()).Add(float64(n))
		flushed += n

		if err != nil {
			metrics.FailedCommitsTotal.Inc()
			log.WithFields(log.Fields{
				"kind":    tr.Kind().String(),
				"flushed": flushed,
				"err":     err,
			}).Warn("record commit failed")

			return fmt.Errorf("commit %s records: %w", tr.Kind(), err)
		}
	}

	s.ids.Visit(func(g idgen.Reconciler) {
		g.MarkHighestWrittenAtHighID()
	})

	elapsed := time.Since(start)

	metrics.CommitsTotal.Inc()
	metrics.CommitDurationSeconds.Observe(elapsed.Seconds())
	log.WithFields(log.Fields{
		"flushed":  flushed,
		"duration": elapsed,
	}).Debug("committed record access set")

	return nil
}
