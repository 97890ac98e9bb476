package rpl

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/rplkit/internal/registry"
	"github.com/specialistvlad/rplkit/internal/syntax"
	"github.com/specialistvlad/rplkit/internal/typespec"
	"github.com/specialistvlad/rplkit/internal/value"
)

// Struct is a typed node of a document.
type Struct struct {
	Type string
	Name string
	// Generated is set when Name was made up by the document.
	Generated bool
	Pos       syntax.Pos

	doc      *Document
	parent   *Struct
	keys     []string
	slots    map[string]*value.Slot
	children []*Struct
	inherit  map[string]cachedLookup
	behavior any
}

// cachedLookup remembers where a bubbled key was found.
type cachedLookup struct {
	slot  value.Slot
	src   *value.Slot
	stamp uint64
	at    uint64
}

func (s *Struct) Document() *Document { return s.doc }
func (s *Struct) Parent() *Struct     { return s.parent }
func (s *Struct) Children() []*Struct { return s.children }
func (s *Struct) Behavior() any       { return s.behavior }

func (s *Struct) String() string {
	return s.Type + " " + s.Name
}

// Keys returns the keys stored on the struct itself, in the order they were
// first set.
func (s *Struct) Keys() []string {
	return s.keys
}

// Raw returns the slot stored on the struct itself, without bubbling,
// defaults or reference resolution.
func (s *Struct) Raw(key string) (value.Slot, bool) {
	sl, ok := s.slots[key]
	if !ok {
		return value.Slot{}, false
	}
	return *sl, true
}

// Lookup finds the unresolved value of key: first on the behaviour, then on
// the struct, then on its ancestors, then as the registered default.
func (s *Struct) Lookup(key string) (value.Slot, bool) {
	if fs, ok := s.behavior.(FieldStore); ok && fs.OwnsField(key) {
		return fs.FieldValue(key)
	}
	if sl, ok := s.slots[key]; ok {
		return *sl, true
	}
	if sl, ok := s.bubble(key); ok {
		return sl, true
	}
	if def, ok := s.doc.reg.Key(s.Type, key); ok && def.Default != nil {
		return value.Slot{Value: def.Default, Source: value.Defaulted}, true
	}
	return value.Slot{}, false
}

func (s *Struct) bubble(key string) (value.Slot, bool) {
	if def, ok := s.doc.reg.Key(s.Type, key); ok && def.NoBubble {
		return value.Slot{}, false
	}
	if c, ok := s.inherit[key]; ok && c.src.Stamp == c.stamp && c.at >= s.doc.shape {
		return c.slot, true
	}
	for p := s.parent; p != nil; p = p.parent {
		src, ok := p.slots[key]
		if !ok {
			continue
		}
		found := value.Slot{Value: src.Value, Source: value.Inherited, Stamp: src.Stamp}
		s.inherit[key] = cachedLookup{slot: found, src: src, stamp: src.Stamp, at: s.doc.clock}
		return found, true
	}
	return value.Slot{}, false
}

// Get returns the fully resolved value of key, checked against the key's
// type.
func (s *Struct) Get(key string) (value.Value, error) {
	sl, ok := s.Lookup(key)
	if !ok {
		return nil, s.wrap(key, &MissingKeysError{Keys: []string{key}})
	}
	if !hasReference(sl.Value) {
		return sl.Value, nil
	}
	v, err := resolveDeep(sl.Value, nil)
	if err != nil {
		return nil, s.wrap(key, err)
	}
	out, err := s.check(key, v)
	if err != nil {
		return nil, s.wrap(key, err)
	}
	return out, nil
}

// Int returns key resolved to an integer.
func (s *Struct) Int(key string) (int64, error) {
	v, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	n, ok := value.AsInt(v)
	if !ok {
		return 0, s.wrap(key, fmt.Errorf("%s is not a number", v.String()))
	}
	return n, nil
}

// Text returns key resolved to a string or literal.
func (s *Struct) Text(key string) (string, error) {
	v, err := s.Get(key)
	if err != nil {
		return "", err
	}
	text, ok := value.AsText(v)
	if !ok {
		return "", s.wrap(key, fmt.Errorf("%s is not a string", v.String()))
	}
	return text, nil
}

// Set checks v against the key's type and stores it. A behaviour that owns
// the key receives the value instead.
func (s *Struct) Set(key string, v value.Value, src value.Source) error {
	if fs, ok := s.behavior.(FieldStore); ok && fs.OwnsField(key) {
		if err := fs.SetFieldValue(key, v, src); err != nil {
			return s.wrap(key, err)
		}
		return nil
	}
	out, err := s.check(key, v)
	if err != nil {
		return s.wrap(key, err)
	}
	s.store(key, out, src)
	return nil
}

// check verifies v against the declared type of key. Undeclared keys on
// types that accept any key are stored as given.
func (s *Struct) check(key string, v value.Value) (value.Value, error) {
	reg := s.doc.reg
	if !reg.AllowsKey(s.Type, key) {
		return nil, &registry.UndefinedError{Kind: "key", Name: key, Struct: s.Type}
	}
	spec, err := s.spec(key)
	if err != nil || spec == nil {
		return v, err
	}
	out, ok := typespec.Verify(spec, v, reg)
	if !ok {
		return nil, &TypeMismatchError{Value: v, Spec: spec}
	}
	return out, nil
}

func (s *Struct) spec(key string) (*typespec.Spec, error) {
	def, ok := s.doc.reg.Key(s.Type, key)
	if !ok {
		return nil, nil
	}
	return def.Spec()
}

func (s *Struct) store(key string, v value.Value, src value.Source) {
	stamp := s.doc.tick()
	if sl, ok := s.slots[key]; ok {
		sl.Value, sl.Source, sl.Stamp = v, src, stamp
		return
	}
	s.slots[key] = &value.Slot{Value: v, Source: src, Stamp: stamp}
	s.keys = append(s.keys, key)
	s.doc.shape = stamp
}

// BasicKey returns the key read when a reference names the struct without
// selecting a key.
func (s *Struct) BasicKey() string {
	return s.doc.reg.Basic(s.Type)
}

// Basic returns the resolved basic value of the struct.
func (s *Struct) Basic() (value.Value, error) {
	v, err := s.basic()
	if err != nil {
		return nil, err
	}
	return resolveDeep(v, nil)
}

func (s *Struct) basic() (value.Value, error) {
	if b, ok := s.behavior.(BasicValuer); ok {
		return b.Basic()
	}
	key := s.BasicKey()
	if key == "" {
		return nil, fmt.Errorf("%s has no basic value", s)
	}
	sl, ok := s.Lookup(key)
	if !ok {
		return nil, s.wrap(key, &MissingKeysError{Keys: []string{key}})
	}
	return sl.Value, nil
}

// Ancestor returns the nearest ancestor of type typ or one of its subtypes.
func (s *Struct) Ancestor(typ string) (*Struct, bool) {
	for p := s.parent; p != nil; p = p.parent {
		if s.doc.reg.Inherits(p.Type, typ) {
			return p, true
		}
	}
	return nil, false
}

// Clone copies the struct and its descendants under parent. The copy is not
// attached to parent's children and its names are not registered in the
// document. References that originate inside the copied subtree are rebound
// to the copy.
func (s *Struct) Clone(parent *Struct, name string) (*Struct, error) {
	mapping := make(map[*Struct]*Struct)
	var order []*Struct
	var copyTree func(src, parent *Struct, name string) *Struct
	copyTree = func(src, parent *Struct, name string) *Struct {
		c := s.doc.newStruct(parent, src.Type, name)
		c.Generated = src.Generated
		c.Pos = src.Pos
		mapping[src] = c
		order = append(order, c)
		for _, key := range src.keys {
			sl := *src.slots[key]
			c.slots[key] = &sl
			c.keys = append(c.keys, key)
		}
		for _, child := range src.children {
			c.children = append(c.children, copyTree(child, c, child.Name))
		}
		return c
	}
	clone := copyTree(s, parent, name)

	for _, c := range order {
		for _, sl := range c.slots {
			sl.Value = rebind(sl.Value, mapping)
		}
	}
	s.doc.shape = s.doc.tick()
	for _, c := range order {
		if err := c.bind(); err != nil {
			return nil, err
		}
	}
	return clone, nil
}

func rebind(v value.Value, mapping map[*Struct]*Struct) value.Value {
	switch x := v.(type) {
	case *Reference:
		if to, ok := mapping[x.Origin]; ok {
			r := *x
			r.Origin = to
			return &r
		}
	case value.List:
		items := make([]value.Value, len(x.Items))
		for i, item := range x.Items {
			items[i] = rebind(item, mapping)
		}
		return value.List{Items: items}
	}
	return v
}

func (s *Struct) bind() error {
	b, ok := s.behavior.(Binder)
	if !ok {
		return nil
	}
	if err := b.Bind(s); err != nil {
		return &Error{Pos: s.Pos, Struct: s.Name, Err: err}
	}
	return nil
}

func (s *Struct) wrap(key string, err error) error {
	var located *Error
	if errors.As(err, &located) {
		return err
	}
	return &Error{Pos: s.Pos, Struct: s.Name, Key: key, Err: err}
}
