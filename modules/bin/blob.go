package bin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/rplkit/internal/codec"
	"github.com/specialistvlad/rplkit/internal/ctxlog"
	"github.com/specialistvlad/rplkit/internal/format"
	"github.com/specialistvlad/rplkit/internal/rpl"
)

// Blob is the behaviour of Bin structs: size bytes at base, stored as is in
// a file named after the struct.
type Blob struct {
	s *rpl.Struct
}

func (b *Blob) Bind(s *rpl.Struct) error {
	b.s = s
	return nil
}

func (b *Blob) span() (base, size int64, err error) {
	if base, err = b.s.Int("base"); err != nil {
		return 0, 0, err
	}
	if size, err = b.s.Int("size"); err != nil {
		return 0, 0, err
	}
	return base, size, nil
}

func (b *Blob) path(env *format.Env) (string, error) {
	file := b.s.Name + ".bin"
	if _, ok := b.s.Lookup("file"); ok {
		text, err := b.s.Text("file")
		if err != nil {
			return "", err
		}
		file = text
	}
	return filepath.Join(env.Folder, file), nil
}

func (b *Blob) ExportData(ctx context.Context, env *format.Env) error {
	base, size, err := b.span()
	if err != nil {
		return err
	}
	data, err := env.ROM.Slice(base, size)
	if err != nil {
		return err
	}
	path, err := b.path(env)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Writing binary file.", "struct", b.s.Name, "path", path, "bytes", size)
	return os.WriteFile(path, data, 0o644)
}

func (b *Blob) ImportData(ctx context.Context, env *format.Env) error {
	base, size, err := b.span()
	if err != nil {
		return err
	}
	path, err := b.path(env)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return &format.PackingError{
			Struct: b.s.Name,
			Msg:    fmt.Sprintf("reading %s", filepath.Base(path)),
			Err:    &codec.SizeError{Expected: int(size), Got: len(data)},
		}
	}
	ctxlog.FromContext(ctx).Debug("Reading binary file.", "struct", b.s.Name, "path", path, "bytes", size)
	_, err = env.ROM.WriteAt(data, base)
	return err
}
