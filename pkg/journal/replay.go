package journal

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/calvinalkan/graphrec/internal/metrics"
	"github.com/calvinalkan/graphrec/pkg/record"
	"github.com/calvinalkan/graphrec/pkg/recordaccess"
)

// Replay commits every pending batch of j through a fresh set from newSet
// and marks it applied. It stops at the first failure; earlier batches stay
// applied. Returns the number of batches replayed.
func Replay(ctx context.Context, j *Journal, newSet func() recordaccess.RecordAccessSet) (int, error) {
	batches, err := j.Pending(ctx)
	if err != nil {
		return 0, err
	}

	replayed := 0

	for _, b := range batches {
		err = ctx.Err()
		if err != nil {
			return replayed, err
		}

		set := newSet()

		for _, c := range b.Commands {
			err = stage(set, c)
			if err != nil {
				return replayed, fmt.Errorf("replay batch %d: %w", b.Seq, err)
			}
		}

		err = set.Commit()
		if err != nil {
			return replayed, fmt.Errorf("replay batch %d: %w", b.Seq, err)
		}

		err = j.MarkApplied(ctx, b.Seq)
		if err != nil {
			return replayed, err
		}

		replayed++

		metrics.JournalReplayedBatchesTotal.Inc()
		log.WithFields(log.Fields{
			"seq":      b.Seq,
			"commands": len(b.Commands),
		}).Debug("replayed journal batch")
	}

	return replayed, nil
}

// stage tracks the after image of c in set as a created record, so commit
// writes it without reading the store.
func stage(set recordaccess.RecordAccessSet, c recordaccess.Command) error {
	switch after := c.After.(type) {
	case *record.Node:
		*set.NodeRecords().Create(c.ID).ForChanging() = *after.Clone()
	case *record.Property:
		*set.PropertyRecords().Create(c.ID).ForChanging() = *after.Clone()
	case *record.Relationship:
		*set.RelationshipRecords().Create(c.ID).ForChanging() = *after.Clone()
	case *record.RelationshipGroup:
		*set.RelationshipGroupRecords().Create(c.ID).ForChanging() = *after.Clone()
	case *record.PropertyKeyToken:
		*set.PropertyKeyTokenRecords().Create(c.ID).ForChanging() = *after.Clone()
	case *record.RelationshipTypeToken:
		*set.RelationshipTypeTokenRecords().Create(c.ID).ForChanging() = *after.Clone()
	case *record.LabelToken:
		*set.LabelTokenRecords().Create(c.ID).ForChanging() = *after.Clone()
	default:
		return fmt.Errorf("%s %d: %T: %w", c.Kind, c.ID, c.After, record.ErrUnknownKind)
	}

	return nil
}
