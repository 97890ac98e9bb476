// Package rom holds the binary container an RPL document describes. The
// whole image is kept in memory; writes past the end grow it.
package rom

import (
	"context"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/specialistvlad/rplkit/internal/ctxlog"
)

// MaxLen bounds how far writes may grow a container.
const MaxLen = 1 << 30

// Buffer is a growable in-memory byte container. It implements io.ReaderAt
// and io.WriterAt.
type Buffer struct {
	data []byte
}

// New wraps data. The buffer takes ownership of the slice.
func New(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Load reads a container from disk.
func Load(ctx context.Context, path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read container: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Loaded container.", "path", path, "size", len(data))
	return New(data), nil
}

// Save writes the container to disk.
func (b *Buffer) Save(ctx context.Context, path string) error {
	if err := os.WriteFile(path, b.data, 0o644); err != nil {
		return fmt.Errorf("failed to write container: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Saved container.", "path", path, "size", len(b.data))
	return nil
}

func (b *Buffer) Len() int      { return len(b.data) }
func (b *Buffer) Bytes() []byte { return b.data }

// CRC32 returns the IEEE checksum of the whole container.
func (b *Buffer) CRC32() uint32 {
	return crc32.ChecksumIEEE(b.data)
}

// ReadAt implements io.ReaderAt.
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt. Writing past the end grows the buffer,
// filling any gap with zeros.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off > MaxLen || int64(len(p)) > MaxLen-off {
		return 0, fmt.Errorf("write of %d bytes at $%x grows the container past %d bytes", len(p), off, MaxLen)
	}
	if end := off + int64(len(p)); end > int64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	return copy(b.data[off:], p), nil
}

// Slice returns a copy of size bytes at off. Reading past the end is an
// error.
func (b *Buffer) Slice(off, size int64) ([]byte, error) {
	if off < 0 || size < 0 || off > int64(len(b.data)) || size > int64(len(b.data))-off {
		return nil, fmt.Errorf("range $%x+%d is outside the container of %d bytes", off, size, len(b.data))
	}
	out := make([]byte, size)
	copy(out, b.data[off:off+size])
	return out, nil
}
