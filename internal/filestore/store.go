package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/rplkit/internal/ctxlog"
	"github.com/specialistvlad/rplkit/internal/extern"
)

// Store holds the external files of one run, keyed by path. It is not safe
// for concurrent use.
type Store struct {
	files map[string]*file
	order []string
}

type file struct {
	path   string
	codec  extern.Codec
	claims []string

	loaded bool
	read   map[string]*extern.Record

	written map[string]*extern.Record
}

// New creates an empty store.
func New() *Store {
	return &Store{files: make(map[string]*file)}
}

// Claim registers name as a section of the file at path. All claims of one
// file must use the same form.
func (s *Store) Claim(path, name string, codec extern.Codec) error {

	f, ok := s.files[path]
	if !ok {
		f = &file{path: path, codec: codec, written: make(map[string]*extern.Record)}
		s.files[path] = f
		s.order = append(s.order, path)
	}
	if f.codec.Form() != codec.Form() {
		return fmt.Errorf("%s is already used with form %s, not %s", path, f.codec.Form(), codec.Form())
	}
	for _, c := range f.claims {
		if c == name {
			return nil
		}
	}
	if f.loaded {
		return fmt.Errorf("%s was already read before %s claimed it", path, name)
	}
	f.claims = append(f.claims, name)
	return nil
}

// Shared reports whether more than one struct claimed the file at path.
func (s *Store) Shared(path string) bool {
	f, ok := s.files[path]
	return ok && len(f.claims) > 1
}

// Put buffers the record of section name.
func (s *Store) Put(path, name string, rec *extern.Record) error {
	f, err := s.claimed(path, name)
	if err != nil {
		return err
	}
	f.written[name] = rec
	return nil
}

// Get returns the record of section name, reading the file on first use.
func (s *Store) Get(ctx context.Context, path, name string) (*extern.Record, error) {
	f, err := s.claimed(path, name)
	if err != nil {
		return nil, err
	}
	if !f.loaded {
		if err := f.load(ctx); err != nil {
			return nil, err
		}
	}
	rec, ok := f.read[name]
	if !ok {
		return nil, fmt.Errorf("%s has no section %s", path, name)
	}
	return rec, nil
}

func (s *Store) claimed(path, name string) (*file, error) {
	f, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("%s was never claimed", path)
	}
	for _, c := range f.claims {
		if c == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%s did not claim %s", name, path)
}

func (f *file) load(ctx context.Context) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return err
	}
	f.read = make(map[string]*extern.Record)
	if len(f.claims) == 1 {
		rec, err := f.codec.Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", f.path, err)
		}
		f.read[f.claims[0]] = rec
	} else {
		secs, err := f.codec.DecodeSections(data)
		if err != nil {
			return fmt.Errorf("%s: %w", f.path, err)
		}
		for _, sec := range secs {
			f.read[sec.Name] = sec.Record
		}
	}
	f.loaded = true
	ctxlog.FromContext(ctx).Debug("Read external file.", "path", f.path, "sections", len(f.read))
	return nil
}

// Flush writes every file that received at least one record. Sections are
// written in claim order.
func (s *Store) Flush(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	for _, path := range s.order {
		f := s.files[path]
		if len(f.written) == 0 {
			continue
		}
		data, err := f.encode()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		logger.Debug("Wrote external file.", "path", path, "sections", len(f.written), "bytes", len(data))
		f.written = make(map[string]*extern.Record)
	}
	return nil
}

func (f *file) encode() ([]byte, error) {
	if len(f.claims) == 1 {
		return f.codec.Encode(f.written[f.claims[0]])
	}
	var secs []extern.Section
	for _, name := range f.claims {
		if rec, ok := f.written[name]; ok {
			secs = append(secs, extern.Section{Name: name, Record: rec})
		}
	}
	return f.codec.EncodeSections(secs)
}
