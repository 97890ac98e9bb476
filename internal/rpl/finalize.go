package rpl

import (
	"context"
	"errors"

	"github.com/specialistvlad/rplkit/internal/ctxlog"
	"github.com/specialistvlad/rplkit/internal/refpath"
	"github.com/specialistvlad/rplkit/internal/value"
)

// MissingKeys returns the required keys of the struct's type that have no
// value after bubbling and defaulting.
func (s *Struct) MissingKeys() []string {
	var missing []string
	for _, def := range s.doc.reg.Keys(s.Type) {
		if def.Default != nil || def.Optional {
			continue
		}
		if _, ok := s.Lookup(def.Name); !ok {
			missing = append(missing, def.Name)
		}
	}
	return missing
}

// Finalize reports every struct with missing keys and then runs the
// Finalizer behaviours in document order.
func (d *Document) Finalize(ctx context.Context) error {
	var errs []error
	for _, s := range d.All() {
		if missing := s.MissingKeys(); len(missing) > 0 {
			errs = append(errs, &Error{Pos: s.Pos, Struct: s.Name, Err: &MissingKeysError{Keys: missing}})
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	err := d.Walk(func(s *Struct) error {
		f, ok := s.behavior.(Finalizer)
		if !ok {
			return nil
		}
		if err := f.Finalize(ctx); err != nil {
			return &Error{Pos: s.Pos, Struct: s.Name, Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Document finalized.", "file", d.Filename, "structs", len(d.names))
	return nil
}

// CheckReferences resolves every reference stored in the document and
// returns all failures. References to keys of their own struct are skipped
// since those are filled in by the format engine, and so are references
// through the caller chain, which only exists while one is followed. A
// reference without a key, or to a key owned by a behaviour, only needs its
// target to exist.
func (d *Document) CheckReferences() error {
	var errs []error
	for _, s := range d.All() {
		for _, key := range s.keys {
			for _, ref := range references(s.slots[key].Value) {
				var err error
				switch {
				case ref.IsSelf() || ref.Path.Kind == refpath.Back:
					continue
				case ref.Path.HasKey():
					err = checkKeyed(ref)
				default:
					_, err = ref.Target(nil)
				}
				if err != nil {
					errs = append(errs, &Error{Pos: ref.Pos, Struct: s.Name, Key: key, Err: err})
				}
			}
		}
	}
	return errors.Join(errs...)
}

func checkKeyed(ref *Reference) error {
	target, err := ref.Target(nil)
	if err != nil {
		return err
	}
	if fs, ok := target.behavior.(FieldStore); ok && fs.OwnsField(ref.Path.Key) {
		return nil
	}
	_, err = ref.Resolve(nil)
	return err
}

func references(v value.Value) []*Reference {
	switch x := v.(type) {
	case *Reference:
		return []*Reference{x}
	case value.List:
		var out []*Reference
		for _, item := range x.Items {
			out = append(out, references(item)...)
		}
		return out
	}
	return nil
}
