package rpl

import (
	"context"

	"github.com/specialistvlad/rplkit/internal/value"
)

// Behaviours are the values returned by registry.StructDef.New. Each one is
// attached to a single struct and may implement any of the interfaces
// below.

// Binder is called once the struct a behaviour belongs to exists.
type Binder interface {
	Bind(s *Struct) error
}

// FieldStore lets a behaviour own the values of some keys. Reads and writes
// of an owned key go to the behaviour only; the struct's slot of the same
// name, if any, stays reachable through Raw.
type FieldStore interface {
	OwnsField(key string) bool
	FieldValue(key string) (value.Slot, bool)
	SetFieldValue(key string, v value.Value, src value.Source) error
}

// BasicValuer overrides the basic value returned for a struct.
type BasicValuer interface {
	Basic() (value.Value, error)
}

// Finalizer runs after the whole document is parsed and checked.
type Finalizer interface {
	Finalize(ctx context.Context) error
}
