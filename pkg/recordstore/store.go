package recordstore

import (
	"fmt"

	"github.com/calvinalkan/graphrec/pkg/record"
)

// IDMarker is told about every id a store writes. The id generators
// of package idgen implement it.
type IDMarker interface {
	MarkUsed(id int64)
}

func checkID(kind record.Kind, id int64, capacity int64) error {
	if id < 0 || id >= capacity {
		return fmt.Errorf("%s %d outside [0, %d): %w", kind, id, capacity, ErrInvalidID)
	}

	return nil
}
