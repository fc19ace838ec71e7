package idgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calvinalkan/graphrec/pkg/fs"
	"github.com/calvinalkan/graphrec/pkg/record"
)

// FileSuffix is appended to the kind name to form a watermark file name.
const FileSuffix = ".id"

// Factory owns one [Generator] per record kind.
type Factory struct {
	gens [record.KindCount]*Generator
}

// NewFactory returns in-memory generators for every kind, each bounded by
// capacity.
func NewFactory(capacity int64) *Factory {
	f := &Factory{}
	for _, k := range record.Kinds() {
		f.gens[k.Index()] = NewGenerator(k, capacity)
	}

	return f
}

// OpenFactory returns file-backed generators persisted under dir. Existing
// watermark files are restored; missing ones start at zero.
func OpenFactory(fsys fs.FS, dir string, capacity int64) (*Factory, error) {
	f := NewFactory(capacity)

	for _, g := range f.gens {
		g.fsys = fsys
		g.path = filepath.Join(dir, g.kind.String()+FileSuffix)

		data, err := fsys.ReadFile(g.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}

			return nil, fmt.Errorf("read %s watermark: %w", g.kind, err)
		}

		var state State

		err = json.Unmarshal(data, &state)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", g.path, ErrCorrupt, err)
		}

		err = g.restore(state)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", g.path, err)
		}
	}

	return f, nil
}

// Get returns the generator for kind. Panics if kind is not valid.
func (f *Factory) Get(kind record.Kind) *Generator {
	return f.gens[kind.Index()]
}

// Visit calls fn with every generator in kind order.
func (f *Factory) Visit(fn func(Reconciler)) {
	for _, g := range f.gens {
		fn(g)
	}
}

// States returns a snapshot of every generator in kind order.
func (f *Factory) States() []State {
	states := make([]State, 0, len(f.gens))
	for _, g := range f.gens {
		states = append(states, g.State())
	}

	return states
}

// Checkpoint persists every file-backed generator. All generators are
// attempted; failures are joined.
func (f *Factory) Checkpoint() error {
	var errs []error

	for _, g := range f.gens {
		err := g.Checkpoint()
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
