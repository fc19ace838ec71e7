package recordstore

import (
	"fmt"
	"slices"
	"sync"

	"github.com/calvinalkan/graphrec/pkg/record"
)

// Memory is an in-memory store with the same semantics as [File].
//
// Records are kept encoded, so loaded records never alias each other or
// the caller's values. Memory also records the ids passed to Load and Update
// in call order, which tests use to assert which I/O happened.
//
// Memory is safe for concurrent use.
type Memory[R record.Record] struct {
	format   record.Format[R]
	capacity int64

	mu        sync.Mutex
	slots     map[int64][]byte
	loads     []int64
	updates   []int64
	ids       IDMarker
	updateErr error
}

// NewMemory returns an empty store for format's kind with ids in
// [0, capacity). Panics if capacity < 1.
func NewMemory[R record.Record](format record.Format[R], capacity int64) *Memory[R] {
	if capacity < 1 {
		panic(fmt.Sprintf("recordstore: capacity must be >= 1, got %d", capacity))
	}

	return &Memory[R]{
		format:   format,
		capacity: capacity,
		slots:    make(map[int64][]byte),
	}
}

// Kind returns the kind of records in the store.
func (m *Memory[R]) Kind() record.Kind { return m.format.Kind() }

// Capacity returns the number of addressable ids.
func (m *Memory[R]) Capacity() int64 { return m.capacity }

// SetIDMarker sets the marker notified on every Update.
func (m *Memory[R]) SetIDMarker(ids IDMarker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ids = ids
}

// FailUpdates makes every following Update return err. Pass nil to stop.
func (m *Memory[R]) FailUpdates(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateErr = err
}

// Load returns the in-use record at id.
func (m *Memory[R]) Load(id int64) (R, error) {
	var zero R

	kind := m.format.Kind()

	err := checkID(kind, id, m.capacity)
	if err != nil {
		return zero, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.loads = append(m.loads, id)

	slot, ok := m.slots[id]
	if !ok {
		return zero, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}

	return decodeSlot(m.format, id, slot)
}

// Update stores rec at its id.
func (m *Memory[R]) Update(rec R) error {
	kind := m.format.Kind()
	id := rec.RecordID()

	err := checkID(kind, id, m.capacity)
	if err != nil {
		return err
	}

	slot, err := encodeSlot(m.format, m.format.Size()+checksumSize, rec)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return fmt.Errorf("write %s %d: %w", kind, id, m.updateErr)
	}

	m.updates = append(m.updates, id)
	m.slots[id] = slot

	if m.ids != nil {
		m.ids.MarkUsed(id)
	}

	return nil
}

// Put stores rec without recording the call. Used to seed stores.
// Panics if rec cannot be encoded.
func (m *Memory[R]) Put(rec R) {
	slot, err := encodeSlot(m.format, m.format.Size()+checksumSize, rec)
	if err != nil {
		panic(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.slots[rec.RecordID()] = slot
}

// Get returns the stored record at id, in use or not, without recording
// the call.
func (m *Memory[R]) Get(id int64) (R, bool) {
	var zero R

	m.mu.Lock()
	defer m.mu.Unlock()

	slot, ok := m.slots[id]
	if !ok {
		return zero, false
	}

	rec, err := m.format.Decode(id, slot[:len(slot)-checksumSize])
	if err != nil {
		return zero, false
	}

	return rec, true
}

// Loads returns the ids passed to Load, in call order.
func (m *Memory[R]) Loads() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.loads)
}

// Updates returns the ids successfully written by Update, in call order.
func (m *Memory[R]) Updates() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.updates)
}
