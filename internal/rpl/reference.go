package rpl

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/rplkit/internal/refpath"
	"github.com/specialistvlad/rplkit/internal/syntax"
	"github.com/specialistvlad/rplkit/internal/value"
)

// Reference is an unresolved pointer to another struct's key. It is stored
// as a value and followed at read time.
type Reference struct {
	Path *refpath.Path
	// Origin is the struct the reference was written in. Relative paths
	// start from it.
	Origin *Struct
	// Key is the key the reference was assigned to on Origin.
	Key string
	Pos syntax.Pos

	doc *Document
}

// NewReference creates a reference resolved against doc.
func NewReference(doc *Document, path *refpath.Path, origin *Struct, key string) *Reference {
	return &Reference{Path: path, Origin: origin, Key: key, doc: doc}
}

func (r *Reference) Type() string   { return value.TypeReference }
func (r *Reference) Get() any       { return r.Path }
func (r *Reference) String() string { return "@" + r.Path.String() }

// IsSelf reports whether the reference points at another key of the struct
// it was written in.
func (r *Reference) IsSelf() bool {
	return r.Path.Kind == refpath.This && r.Path.HasKey()
}

func (r *Reference) errorf(format string, args ...any) error {
	return &ReferenceError{Ref: r.Path.String(), Msg: fmt.Sprintf(format, args...)}
}

// Target returns the struct the reference points at. callers is the chain of
// references being followed, innermost last.
func (r *Reference) Target(callers []*Reference) (*Struct, error) {
	p := r.Path
	var s *Struct
	switch p.Kind {
	case refpath.Named:
		found, ok := r.doc.Lookup(p.Name)
		if !ok {
			return nil, r.errorf("no struct named %q", p.Name)
		}
		return found, nil
	case refpath.Back:
		if p.Back > len(callers) {
			return nil, r.errorf("only %d callers to go back through", len(callers))
		}
		s = callers[len(callers)-p.Back].Origin
	default:
		s = r.Origin
	}
	if s == nil {
		return nil, r.errorf("relative reference used outside of a struct")
	}
	for i := 0; i < p.Up; i++ {
		if s.parent == nil {
			return nil, r.errorf("%s has no parent", s)
		}
		s = s.parent
	}
	return s, nil
}

// Resolve follows the reference, and any reference it leads to, down to a
// plain value.
func (r *Reference) Resolve(callers []*Reference) (value.Value, error) {
	if slices.Contains(callers, r) {
		return nil, r.errorf("reference cycle")
	}
	target, err := r.Target(callers)
	if err != nil {
		return nil, err
	}
	chain := append(slices.Clone(callers), r)

	var v value.Value
	if r.Path.HasKey() {
		sl, ok := target.Lookup(r.Path.Key)
		if !ok {
			return nil, r.errorf("%s has no key %s", target, r.Path.Key)
		}
		v = sl.Value
	} else if v, err = target.basic(); err != nil {
		return nil, r.errorf("%v", err)
	}

	for _, idx := range r.Path.Indices {
		if ref, ok := v.(*Reference); ok {
			if v, err = ref.Resolve(chain); err != nil {
				return nil, err
			}
		}
		seq, ok := v.(value.Sequence)
		if !ok || idx >= len(seq.Elements()) {
			return nil, r.errorf("list not deep enough")
		}
		v = seq.Elements()[idx]
	}
	return resolveDeep(v, chain)
}

// Assign writes v through the reference. A target key that itself holds a
// reference is written through in turn.
func (r *Reference) Assign(v value.Value, callers []*Reference) error {
	if slices.Contains(callers, r) {
		return r.errorf("reference cycle")
	}
	target, err := r.Target(callers)
	if err != nil {
		return err
	}
	key := r.Path.Key
	if key == "" {
		if key = target.BasicKey(); key == "" {
			return r.errorf("%s has no basic value to assign", target)
		}
	}
	chain := append(slices.Clone(callers), r)

	if len(r.Path.Indices) == 0 {
		if sl, ok := target.Raw(key); ok {
			if ref, ok := sl.Value.(*Reference); ok {
				return ref.Assign(v, chain)
			}
		}
		return target.Set(key, v, value.Calculated)
	}

	sl, ok := target.Lookup(key)
	if !ok {
		return r.errorf("%s has no key %s", target, key)
	}
	current, err := resolveDeep(sl.Value, chain)
	if err != nil {
		return err
	}
	updated, err := replaceAt(current, r.Path.Indices, v)
	if err != nil {
		return r.errorf("%v", err)
	}
	return target.Set(key, updated, value.Calculated)
}

// replaceAt returns a copy of v with the element at the index path replaced.
func replaceAt(v value.Value, indices []int, with value.Value) (value.Value, error) {
	if len(indices) == 0 {
		return with, nil
	}
	seq, ok := v.(value.Sequence)
	if !ok || indices[0] >= len(seq.Elements()) {
		return nil, fmt.Errorf("list not deep enough")
	}
	items := slices.Clone(seq.Elements())
	inner, err := replaceAt(items[indices[0]], indices[1:], with)
	if err != nil {
		return nil, err
	}
	items[indices[0]] = inner
	if _, isRange := v.(value.Range); isRange && value.IsRangeElement(inner) {
		return value.Range{Items: items}, nil
	}
	return value.List{Items: items}, nil
}

// Resolve returns v with every reference in it followed.
func Resolve(v value.Value) (value.Value, error) {
	return resolveDeep(v, nil)
}

func resolveDeep(v value.Value, callers []*Reference) (value.Value, error) {
	switch x := v.(type) {
	case *Reference:
		return x.Resolve(callers)
	case value.List:
		if !hasReference(x) {
			return x, nil
		}
		items := make([]value.Value, len(x.Items))
		for i, item := range x.Items {
			r, err := resolveDeep(item, callers)
			if err != nil {
				return nil, err
			}
			items[i] = r
		}
		return value.List{Items: items}, nil
	}
	return v, nil
}

func hasReference(v value.Value) bool {
	switch x := v.(type) {
	case *Reference:
		return true
	case value.List:
		for _, item := range x.Items {
			if hasReference(item) {
				return true
			}
		}
	}
	return false
}
