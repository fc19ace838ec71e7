package recordaccess

import (
	"fmt"
	"maps"
	"slices"

	"github.com/calvinalkan/graphrec/pkg/record"
)

// Store is the record store a [Tracker] loads from and commits to.
//
// The File and Memory stores of package recordstore implement it.
type Store[R record.Record] interface {
	// Load returns the stored record at id.
	Load(id int64) (R, error)

	// Update writes rec at rec.RecordID().
	Update(rec R) error
}

// trackable is the kind-independent view of a tracker the sets aggregate.
type trackable interface {
	Kind() record.Kind
	ChangeSize() int
	Len() int

	// check validates every changed working copy without writing it.
	check() error

	// commit writes every changed proxy and returns how many were written.
	commit() (int, error)

	// appendCommands appends a Command per changed proxy, ascending ids.
	appendCommands(dst []Command) []Command
}

// Tracker caches the proxies of one record kind, keyed by id.
//
// Once an id is tracked every call for it returns the same proxy, so changes
// made through one handle are visible through every other.
type Tracker[R record.Record] struct {
	kind    record.Kind
	store   Store[R]
	loader  Loader[R]
	proxies map[int64]*Proxy[R]
}

func newTracker[R record.Record](kind record.Kind, store Store[R], loader Loader[R]) *Tracker[R] {
	if store == nil {
		panic(fmt.Sprintf("recordaccess: %s store is nil", kind))
	}

	return &Tracker[R]{
		kind:    kind,
		store:   store,
		loader:  loader,
		proxies: make(map[int64]*Proxy[R]),
	}
}

// Kind returns the kind of records tracked.
func (t *Tracker[R]) Kind() record.Kind {
	return t.kind
}

// GetOrLoad returns the tracked proxy for id, loading the record from the
// store on first use.
//
// Load failures are returned with the store's error wrapped, and leave id
// untracked so the call can be retried.
func (t *Tracker[R]) GetOrLoad(id int64) (*Proxy[R], error) {
	if p, ok := t.proxies[id]; ok {
		return p, nil
	}

	rec, err := t.store.Load(id)
	if err != nil {
		return nil, fmt.Errorf("load %s %d: %w", t.kind, id, err)
	}

	p := &Proxy[R]{
		id:     id,
		before: rec,
		after:  t.loader.Copy(rec),
	}
	t.proxies[id] = p

	return p, nil
}

// Create tracks a blank record at id without reading the store. The proxy
// is created and changed, so it is always written on commit.
//
// Creating an id that is already tracked resets that same proxy to a blank
// record; handles obtained earlier observe the reset.
func (t *Tracker[R]) Create(id int64) *Proxy[R] {
	blank := t.loader.Blank(id)

	p, ok := t.proxies[id]
	if !ok {
		p = &Proxy[R]{id: id}
		t.proxies[id] = p
	}

	p.before = blank
	p.after = t.loader.Copy(blank)
	p.created = true
	p.changed = true

	return p
}

// GetIfLoaded returns the proxy for id if it is tracked. It never does I/O.
func (t *Tracker[R]) GetIfLoaded(id int64) (*Proxy[R], bool) {
	p, ok := t.proxies[id]

	return p, ok
}

// ChangeSize returns the number of changed proxies.
func (t *Tracker[R]) ChangeSize() int {
	n := 0

	for _, p := range t.proxies {
		if p.changed {
			n++
		}
	}

	return n
}

// Len returns the number of tracked proxies, changed or not.
func (t *Tracker[R]) Len() int {
	return len(t.proxies)
}

// Changed returns the changed proxies in ascending id order.
func (t *Tracker[R]) Changed() []*Proxy[R] {
	ids := slices.Sorted(maps.Keys(t.proxies))

	changed := make([]*Proxy[R], 0, len(ids))

	for _, id := range ids {
		if p := t.proxies[id]; p.changed {
			changed = append(changed, p)
		}
	}

	return changed
}

func (t *Tracker[R]) check() error {
	for _, p := range t.Changed() {
		err := record.Validate(p.after)
		if err != nil {
			return fmt.Errorf("check %s %d: %w", t.kind, p.id, err)
		}
	}

	return nil
}

func (t *Tracker[R]) commit() (int, error) {
	written := 0

	for _, p := range t.Changed() {
		err := t.store.Update(p.after)
		if err != nil {
			return written, fmt.Errorf("update %s %d: %w", t.kind, p.id, err)
		}

		written++
	}

	return written, nil
}

func (t *Tracker[R]) appendCommands(dst []Command) []Command {
	for _, p := range t.Changed() {
		dst = append(dst, Command{
			Kind:    t.kind,
			ID:      p.id,
			Before:  p.before,
			After:   p.after,
			Created: p.created,
		})
	}

	return dst
}
