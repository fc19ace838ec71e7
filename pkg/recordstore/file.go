package recordstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/calvinalkan/graphrec/pkg/fs"
	"github.com/calvinalkan/graphrec/pkg/record"
)

const storeFilePerm = 0o644

// FileOptions configure opening or creating a store file.
type FileOptions[R record.Record] struct {
	// FS performs all file operations. Required.
	FS fs.FS

	// Path of the store file. Created if missing.
	Path string

	// Format encodes the records. Required.
	Format record.Format[R]

	// Capacity bounds valid ids to [0, Capacity). Must match the capacity
	// the file was created with.
	Capacity int64

	// IDs is notified of every written id. Optional.
	IDs IDMarker

	// StoreID ties the file to a set of store files. A new file records it,
	// an existing file must carry it. [uuid.Nil] gives new files a random id
	// and accepts any existing one.
	StoreID uuid.UUID
}

// File is a store of fixed-size records in one file.
//
// File is safe for concurrent use. Updates go straight to the file; call
// [File.Sync] for durability.
type File[R record.Record] struct {
	path     string
	format   record.Format[R]
	slotSize int
	capacity int64
	ids      IDMarker
	storeID  uuid.UUID

	mu     sync.RWMutex
	file   fs.File
	closed bool
}

// OpenFile opens the store file at opts.Path, creating it if it does not
// exist. Returns [ErrIncompatible] if the file was created with another
// kind, record layout, or capacity, and [ErrCorrupt] if its header is damaged.
func OpenFile[R record.Record](opts FileOptions[R]) (*File[R], error) {
	if opts.FS == nil {
		panic("recordstore: FileOptions.FS is nil")
	}

	if opts.Format == nil {
		panic("recordstore: FileOptions.Format is nil")
	}

	if opts.Path == "" {
		return nil, errors.New("path is required")
	}

	if opts.Capacity < 1 {
		return nil, fmt.Errorf("capacity must be >= 1, got %d", opts.Capacity)
	}

	f, err := opts.FS.OpenFile(opts.Path, os.O_RDWR|os.O_CREATE, storeFilePerm)
	if err != nil {
		return nil, fmt.Errorf("open store file: %w", err)
	}

	s := &File[R]{
		path:     opts.Path,
		format:   opts.Format,
		slotSize: opts.Format.Size() + checksumSize,
		capacity: opts.Capacity,
		ids:      opts.IDs,
		storeID:  opts.StoreID,
		file:     f,
	}

	err = s.initHeader()
	if err != nil {
		return nil, errors.Join(err, f.Close())
	}

	return s, nil
}

func (s *File[R]) initHeader() error {
	want := fileHeader{
		version:  grs1Version,
		kind:     s.format.Kind(),
		slotSize: uint32(s.slotSize),
		capacity: uint64(s.capacity),
		storeID:  s.storeID,
	}

	info, err := s.file.Stat()
	if err != nil {
		return fmt.Errorf("stat store file: %w", err)
	}

	if info.Size() == 0 {
		if want.storeID == uuid.Nil {
			want.storeID = uuid.New()
			s.storeID = want.storeID
		}

		_, err = s.file.WriteAt(encodeHeader(want), 0)
		if err != nil {
			return fmt.Errorf("write store header: %w", err)
		}

		return nil
	}

	buf := make([]byte, headerSize)

	_, err = s.file.ReadAt(buf, 0)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: truncated header: %w", s.path, ErrCorrupt)
		}

		return fmt.Errorf("read store header: %w", err)
	}

	got, ok := decodeHeader(buf)
	if !ok {
		return fmt.Errorf("%s: bad header: %w", s.path, ErrCorrupt)
	}

	if want.storeID == uuid.Nil {
		want.storeID = got.storeID
	}

	if got != want {
		return fmt.Errorf("%s: created as %s/v%d slot=%d capacity=%d store=%s, opened as %s/v%d slot=%d capacity=%d store=%s: %w",
			s.path, got.kind, got.version, got.slotSize, got.capacity, got.storeID,
			want.kind, want.version, want.slotSize, want.capacity, want.storeID, ErrIncompatible)
	}

	s.storeID = got.storeID

	return nil
}

// Kind returns the kind of records in the store.
func (s *File[R]) Kind() record.Kind { return s.format.Kind() }

// Path returns the store file path.
func (s *File[R]) Path() string { return s.path }

// Capacity returns the number of addressable ids.
func (s *File[R]) Capacity() int64 { return s.capacity }

// StoreID returns the id of the store set the file belongs to.
func (s *File[R]) StoreID() uuid.UUID { return s.storeID }

func (s *File[R]) offset(id int64) int64 {
	return headerSize + id*int64(s.slotSize)
}

// Load reads the in-use record at id.
func (s *File[R]) Load(id int64) (R, error) {
	var zero R

	kind := s.format.Kind()

	err := checkID(kind, id, s.capacity)
	if err != nil {
		return zero, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return zero, ErrClosed
	}

	slot := make([]byte, s.slotSize)

	n, err := s.file.ReadAt(slot, s.offset(id))
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return zero, fmt.Errorf("read %s %d: %w", kind, id, err)
		}

		if n > 0 {
			return zero, fmt.Errorf("%s %d: torn slot (%d of %d bytes): %w", kind, id, n, s.slotSize, ErrCorrupt)
		}

		return zero, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}

	return decodeSlot(s.format, id, slot)
}

// Update writes rec into the slot of its id and notifies the id marker.
func (s *File[R]) Update(rec R) error {
	kind := s.format.Kind()
	id := rec.RecordID()

	err := checkID(kind, id, s.capacity)
	if err != nil {
		return err
	}

	slot, err := encodeSlot(s.format, s.slotSize, rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	_, err = s.file.WriteAt(slot, s.offset(id))
	if err != nil {
		return fmt.Errorf("write %s %d: %w", kind, id, err)
	}

	if s.ids != nil {
		s.ids.MarkUsed(id)
	}

	return nil
}

// Sync flushes written records to stable storage.
func (s *File[R]) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	err := s.file.Sync()
	if err != nil {
		return fmt.Errorf("sync %s: %w", s.path, err)
	}

	return nil
}

// Close closes the store file. Close is idempotent.
func (s *File[R]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	err := s.file.Close()
	if err != nil {
		return fmt.Errorf("close %s: %w", s.path, err)
	}

	return nil
}

func encodeSlot[R record.Record](format record.Format[R], slotSize int, rec R) ([]byte, error) {
	slot := make([]byte, slotSize)

	err := format.Encode(slot[:slotSize-checksumSize], rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s %d: %w", format.Kind(), rec.RecordID(), err)
	}

	sealSlot(slot)

	return slot, nil
}

func decodeSlot[R record.Record](format record.Format[R], id int64, slot []byte) (R, error) {
	var zero R

	kind := format.Kind()

	if isZero(slot) {
		return zero, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}

	if !slotIntact(slot) {
		return zero, fmt.Errorf("%s %d: checksum mismatch: %w", kind, id, ErrCorrupt)
	}

	rec, err := format.Decode(id, slot[:len(slot)-checksumSize])
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	if !rec.IsInUse() {
		return zero, fmt.Errorf("%s %d: not in use: %w", kind, id, ErrNotFound)
	}

	return rec, nil
}
