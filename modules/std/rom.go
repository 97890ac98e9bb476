package std

import (
	"context"
	"fmt"

	"github.com/specialistvlad/rplkit/internal/format"
	"github.com/specialistvlad/rplkit/internal/rpl"
)

// ROM checks the container against the size and crc32 keys before any
// data moves in either direction.
type ROM struct {
	s *rpl.Struct
}

func (r *ROM) Bind(s *rpl.Struct) error {
	r.s = s
	return nil
}

func (r *ROM) ExportPrepare(ctx context.Context, env *format.Env) error {
	return r.verify(env)
}

func (r *ROM) ImportPrepare(ctx context.Context, env *format.Env) error {
	return r.verify(env)
}

func (r *ROM) verify(env *format.Env) error {
	if _, ok := r.s.Lookup("size"); ok {
		size, err := r.s.Int("size")
		if err != nil {
			return err
		}
		if int64(env.ROM.Len()) != size {
			return fmt.Errorf("container is %d bytes, expected %d", env.ROM.Len(), size)
		}
	}
	if _, ok := r.s.Lookup("crc32"); ok {
		sum, err := r.s.Int("crc32")
		if err != nil {
			return err
		}
		if got := env.ROM.CRC32(); int64(got) != sum {
			return fmt.Errorf("container CRC32 is $%08x, expected $%08x", got, sum)
		}
	}
	return nil
}
