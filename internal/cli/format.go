package cli

import (
	"fmt"
	"strings"

	"github.com/calvinalkan/graphrec/pkg/record"
)

// formatRecord renders rec as one line of key=value pairs.
func formatRecord(rec record.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %d in_use=%t", rec.Kind(), rec.RecordID(), rec.IsInUse())

	switch r := rec.(type) {
	case *record.Node:
		fmt.Fprintf(&b, " dense=%t labels=%s next_rel=%d next_prop=%d",
			r.Dense, formatLabels(r.Labels), r.NextRel, r.NextProp)
	case *record.Relationship:
		fmt.Fprintf(&b, " type=%d first=%d second=%d first_prev=%d first_next=%d second_prev=%d second_next=%d next_prop=%d",
			r.Type, r.FirstNode, r.SecondNode, r.FirstPrevRel, r.FirstNextRel, r.SecondPrevRel, r.SecondNextRel, r.NextProp)
	case *record.RelationshipGroup:
		fmt.Fprintf(&b, " type=%d next=%d out=%d in=%d loop=%d owner=%d",
			r.Type, r.Next, r.FirstOut, r.FirstIn, r.FirstLoop, r.OwningNode)
	case *record.Property:
		fmt.Fprintf(&b, " key=%d value=%s prev_prop=%d next_prop=%d", r.KeyID, r.Value, r.PrevProp, r.NextProp)
	case *record.PropertyKeyToken:
		fmt.Fprintf(&b, " name=%q internal=%t property_count=%d", r.Name, r.Internal, r.PropertyCount)
	case *record.RelationshipTypeToken:
		fmt.Fprintf(&b, " name=%q internal=%t", r.Name, r.Internal)
	case *record.LabelToken:
		fmt.Fprintf(&b, " name=%q internal=%t", r.Name, r.Internal)
	}

	return b.String()
}

func formatLabels(labels []uint32) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprint(l)
	}

	return "[" + strings.Join(parts, ",") + "]"
}
