package graphstore

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/calvinalkan/graphrec/internal/metrics"
	"github.com/calvinalkan/graphrec/pkg/fs"
	"github.com/calvinalkan/graphrec/pkg/idgen"
	"github.com/calvinalkan/graphrec/pkg/record"
	"github.com/calvinalkan/graphrec/pkg/recordaccess"
	"github.com/calvinalkan/graphrec/pkg/recordstore"
)

const (
	// LockFileName is the name of the directory lock file.
	LockFileName = "graphrec.lock"

	// StoreFileSuffix is appended to the kind name to form a store file name.
	StoreFileSuffix = ".store"

	dirPerm = 0o755
)

// Options configure [Open].
type Options struct {
	// Dir is the database directory. Created if missing.
	Dir string

	// Capacity bounds every kind's ids to [0, Capacity). A directory must
	// always be opened with the capacity it was created with.
	Capacity int64

	// FS performs all file operations. Defaults to [fs.NewReal].
	FS fs.FS

	// SyncOnClose syncs every store file in Close.
	SyncOnClose bool
}

// storeFile is the kind-independent view of a store file.
type storeFile interface {
	Kind() record.Kind
	Path() string
	Sync() error
	Close() error
}

// Stores is an open database directory.
//
// Record access is not synchronized beyond the individual stores: a
// [recordaccess.Direct] set is meant for one goroutine at a time.
type Stores struct {
	dir         string
	syncOnClose bool

	lock    *fs.Lock
	ids     *idgen.Factory
	storeID uuid.UUID

	nodes                  *recordstore.File[*record.Node]
	properties             *recordstore.File[*record.Property]
	relationships          *recordstore.File[*record.Relationship]
	relationshipGroups     *recordstore.File[*record.RelationshipGroup]
	propertyKeyTokens      *recordstore.File[*record.PropertyKeyToken]
	relationshipTypeTokens *recordstore.File[*record.RelationshipTypeToken]
	labelTokens            *recordstore.File[*record.LabelToken]

	// files lists the opened store files in kind order.
	files []storeFile

	mu     sync.Mutex
	closed bool
}

var _ recordaccess.IDGenerators = (*Stores)(nil)

// Open opens the database in opts.Dir, creating missing files.
//
// Returns [ErrBusy] if the directory is locked,
// [recordstore.ErrIncompatible] if a store file was created with a different
// capacity or belongs to another store set, and [idgen.ErrCorrupt] or [recordstore.ErrCorrupt] for damaged
// files.
func Open(opts Options) (*Stores, error) {
	if opts.Dir == "" {
		return nil, errors.New("graphstore: dir is required")
	}

	if opts.Capacity < 1 {
		return nil, fmt.Errorf("graphstore: capacity must be >= 1, got %d", opts.Capacity)
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = fs.NewReal()
	}

	err := fsys.MkdirAll(opts.Dir, dirPerm)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", opts.Dir, err)
	}

	lock, err := fs.NewLocker(fsys).TryLock(filepath.Join(opts.Dir, LockFileName))
	if err != nil {
		if errors.Is(err, fs.ErrWouldBlock) {
			return nil, fmt.Errorf("%s: %w", opts.Dir, ErrBusy)
		}

		return nil, fmt.Errorf("lock %s: %w", opts.Dir, err)
	}

	ids, err := idgen.OpenFactory(fsys, opts.Dir, opts.Capacity)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open id generators: %w", err), lock.Close())
	}

	s := &Stores{
		dir:         opts.Dir,
		syncOnClose: opts.SyncOnClose,
		lock:        lock,
		ids:         ids,
	}

	err = s.openFiles(fsys, opts.Capacity)
	if err != nil {
		return nil, errors.Join(err, s.closeFiles(), lock.Close())
	}

	s.publish()

	log.WithFields(log.Fields{
		"dir":      s.dir,
		"store_id": s.storeID,
		"capacity": opts.Capacity,
		"high_ids": s.highIDFields(),
	}).Info("opened graph stores")

	return s, nil
}

func (s *Stores) openFiles(fsys fs.FS, capacity int64) error {
	var err error

	// The node store decides the store id; every other file must match it.
	if s.nodes, err = openStore(s, fsys, record.NodeFormat, capacity); err != nil {
		return err
	}

	s.storeID = s.nodes.StoreID()

	if s.properties, err = openStore(s, fsys, record.PropertyFormat, capacity); err != nil {
		return err
	}

	if s.relationships, err = openStore(s, fsys, record.RelationshipFormat, capacity); err != nil {
		return err
	}

	if s.relationshipGroups, err = openStore(s, fsys, record.RelationshipGroupFormat, capacity); err != nil {
		return err
	}

	if s.propertyKeyTokens, err = openStore(s, fsys, record.PropertyKeyTokenFormat, capacity); err != nil {
		return err
	}

	if s.relationshipTypeTokens, err = openStore(s, fsys, record.RelationshipTypeTokenFormat, capacity); err != nil {
		return err
	}

	if s.labelTokens, err = openStore(s, fsys, record.LabelTokenFormat, capacity); err != nil {
		return err
	}

	return nil
}

func openStore[R record.Record](s *Stores, fsys fs.FS, format record.Format[R], capacity int64) (*recordstore.File[R], error) {
	kind := format.Kind()

	f, err := recordstore.OpenFile(recordstore.FileOptions[R]{
		FS:       fsys,
		Path:     filepath.Join(s.dir, kind.String()+StoreFileSuffix),
		Format:   format,
		Capacity: capacity,
		IDs:      s.ids.Get(kind),
		StoreID:  s.storeID,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", kind, err)
	}

	s.files = append(s.files, f)

	return f, nil
}

// Dir returns the database directory.
func (s *Stores) Dir() string { return s.dir }

// StoreID returns the id recorded in every store file of the directory.
func (s *Stores) StoreID() uuid.UUID { return s.storeID }

// Nodes returns the node store.
func (s *Stores) Nodes() *recordstore.File[*record.Node] { return s.nodes }

// Properties returns the property store.
func (s *Stores) Properties() *recordstore.File[*record.Property] { return s.properties }

// Relationships returns the relationship store.
func (s *Stores) Relationships() *recordstore.File[*record.Relationship] { return s.relationships }

// RelationshipGroups returns the relationship group store.
func (s *Stores) RelationshipGroups() *recordstore.File[*record.RelationshipGroup] {
	return s.relationshipGroups
}

// PropertyKeyTokens returns the property key token store.
func (s *Stores) PropertyKeyTokens() *recordstore.File[*record.PropertyKeyToken] {
	return s.propertyKeyTokens
}

// RelationshipTypeTokens returns the relationship type token store.
func (s *Stores) RelationshipTypeTokens() *recordstore.File[*record.RelationshipTypeToken] {
	return s.relationshipTypeTokens
}

// LabelTokens returns the label token store.
func (s *Stores) LabelTokens() *recordstore.File[*record.LabelToken] { return s.labelTokens }

// AccessStores returns the stores as a [recordaccess.StoreSet].
func (s *Stores) AccessStores() recordaccess.StoreSet {
	return recordaccess.StoreSet{
		Nodes:                  s.nodes,
		Properties:             s.properties,
		Relationships:          s.relationships,
		RelationshipGroups:     s.relationshipGroups,
		PropertyKeyTokens:      s.propertyKeyTokens,
		RelationshipTypeTokens: s.relationshipTypeTokens,
		LabelTokens:            s.labelTokens,
	}
}

// IDs returns the id generators.
func (s *Stores) IDs() *idgen.Factory { return s.ids }

// Visit calls fn with every id generator in kind order and publishes the
// resulting watermarks as metrics.
func (s *Stores) Visit(fn func(idgen.Reconciler)) {
	s.ids.Visit(fn)
	s.publish()
}

// NewDirect returns a set writing to these stores.
func (s *Stores) NewDirect() *recordaccess.Direct {
	return recordaccess.NewDirect(s.AccessStores(), s)
}

// NewBuffered returns a set loading from these stores and committing to sink.
func (s *Stores) NewBuffered(sink recordaccess.CommandSink) *recordaccess.Buffered {
	return recordaccess.NewBuffered(s.AccessStores(), sink)
}

// HighIDs returns a snapshot of every id generator in kind order.
func (s *Stores) HighIDs() []idgen.State {
	return s.ids.States()
}

// Checkpoint persists the id watermarks.
func (s *Stores) Checkpoint() error {
	err := s.ids.Checkpoint()
	if err != nil {
		return fmt.Errorf("checkpoint ids: %w", err)
	}

	return nil
}

// Sync flushes every store file. All files are attempted.
func (s *Stores) Sync() error {
	var errs []error

	for _, f := range s.files {
		err := f.Sync()
		if err != nil {
			errs = append(errs, fmt.Errorf("sync %s store: %w", f.Kind(), err))
		}
	}

	return errors.Join(errs...)
}

// Close syncs the store files if configured, persists the id watermarks,
// closes the files and releases the directory lock. Every step runs even if
// an earlier one failed. Close is idempotent.
func (s *Stores) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	var errs []error

	if s.syncOnClose {
		errs = append(errs, s.Sync())
	}

	errs = append(errs, s.Checkpoint(), s.closeFiles())

	lockErr := s.lock.Close()
	if lockErr != nil {
		errs = append(errs, fmt.Errorf("release lock: %w", lockErr))
	}

	err := errors.Join(errs...)

	log.WithFields(log.Fields{
		"dir":      s.dir,
		"high_ids": s.highIDFields(),
		"err":      err,
	}).Info("closed graph stores")

	return err
}

func (s *Stores) closeFiles() error {
	var errs []error

	for _, f := range s.files {
		err := f.Close()
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *Stores) publish() {
	for _, st := range s.ids.States() {
		metrics.IDHighWater.WithLabelValues(st.Kind).Set(float64(st.HighID))
		metrics.IDHighestWritten.WithLabelValues(st.Kind).Set(float64(st.HighestWritten))
	}
}

func (s *Stores) highIDFields() map[string]int64 {
	fields := make(map[string]int64, record.KindCount)
	for _, st := range s.ids.States() {
		fields[st.Kind] = st.HighID
	}

	return fields
}
