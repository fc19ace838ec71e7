package idgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/calvinalkan/graphrec/pkg/fs"
	"github.com/calvinalkan/graphrec/pkg/record"
)

// Reconciler is the part of a generator a commit needs: after flushing
// records it moves the highest written id up to the high id.
type Reconciler interface {
	Kind() record.Kind
	MarkHighestWrittenAtHighID()
}

var _ Reconciler = (*Generator)(nil)

// State is a point-in-time snapshot of a generator. It is also the on-disk
// representation of file-backed generators.
type State struct {
	Kind           string `json:"kind"`
	HighID         int64  `json:"high_id"`         //nolint:tagliatelle // snake_case on disk
	HighestWritten int64  `json:"highest_written"` //nolint:tagliatelle // snake_case on disk
}

// Generator allocates ids for one record kind.
//
// Generator is safe for concurrent use.
type Generator struct {
	kind     record.Kind
	capacity int64
	fsys     fs.FS
	path     string // empty for in-memory generators

	mu             sync.Mutex
	highID         int64
	highestWritten int64
}

// NewGenerator returns an in-memory generator for kind handing out ids in
// [0, capacity). Panics if capacity < 1.
func NewGenerator(kind record.Kind, capacity int64) *Generator {
	if capacity < 1 {
		panic(fmt.Sprintf("idgen: capacity must be >= 1, got %d", capacity))
	}

	return &Generator{
		kind:           kind,
		capacity:       capacity,
		highestWritten: record.NoID,
	}
}

// Kind returns the record kind the generator allocates for.
func (g *Generator) Kind() record.Kind {
	return g.kind
}

// NextID allocates the next id. Returns [ErrExhausted] at capacity.
func (g *Generator) NextID() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.highID >= g.capacity {
		return 0, fmt.Errorf("%s ids: capacity %d: %w", g.kind, g.capacity, ErrExhausted)
	}

	id := g.highID
	g.highID++

	return id, nil
}

// MarkUsed records that id was written. Writes at or above the high id move
// the high id to id+1 so later allocations never hand out a written id.
func (g *Generator) MarkUsed(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id >= g.highID {
		g.highID = id + 1
	}
}

// HighID returns the next id [Generator.NextID] would hand out.
func (g *Generator) HighID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.highID
}

// HighestWritten returns the highest written id as of the last
// reconciliation, or [record.NoID] if none.
func (g *Generator) HighestWritten() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.highestWritten
}

// MarkHighestWrittenAtHighID sets the highest written id to high id - 1.
// Calling it again without new writes is a no-op.
func (g *Generator) MarkHighestWrittenAtHighID() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.highestWritten = g.highID - 1
}

// State returns a snapshot of the generator.
func (g *Generator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.stateLocked()
}

func (g *Generator) stateLocked() State {
	return State{
		Kind:           g.kind.String(),
		HighID:         g.highID,
		HighestWritten: g.highestWritten,
	}
}

// Checkpoint persists the generator if it is file-backed.
func (g *Generator) Checkpoint() error {
	if g.path == "" {
		return nil
	}

	g.mu.Lock()
	state := g.stateLocked()
	g.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode %s watermark: %w", g.kind, err)
	}

	err = g.fsys.WriteFileAtomic(g.path, bytes.NewReader(append(data, '\n')))
	if err != nil {
		return fmt.Errorf("write %s watermark: %w", g.kind, err)
	}

	return nil
}

func (g *Generator) restore(state State) error {
	if state.Kind != g.kind.String() {
		return fmt.Errorf("watermark kind %q, want %q: %w", state.Kind, g.kind, ErrCorrupt)
	}

	if state.HighID < 0 || state.HighID > g.capacity {
		return fmt.Errorf("%s high id %d outside [0, %d]: %w", g.kind, state.HighID, g.capacity, ErrCorrupt)
	}

	if state.HighestWritten < record.NoID || state.HighestWritten >= state.HighID {
		return fmt.Errorf("%s highest written %d with high id %d: %w",
			g.kind, state.HighestWritten, state.HighID, ErrCorrupt)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.highID = state.HighID
	g.highestWritten = state.HighestWritten

	return nil
}
