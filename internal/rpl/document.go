package rpl

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/rplkit/internal/registry"
	"github.com/specialistvlad/rplkit/internal/value"
)

// Document owns a tree of structs built from one or more RPL sources.
type Document struct {
	Filename string

	reg      *registry.Registry
	structs  []*Struct
	names    map[string]*Struct
	counters map[string]int

	// clock stamps every slot change. shape is the stamp of the last change
	// that can alter which ancestor a bubbled key is found on.
	clock uint64
	shape uint64
}

// New creates an empty document bound to reg.
func New(reg *registry.Registry) *Document {
	return &Document{
		reg:      reg,
		names:    make(map[string]*Struct),
		counters: make(map[string]int),
	}
}

func (d *Document) Registry() *registry.Registry { return d.reg }

// Structs returns the top level structs in declaration order.
func (d *Document) Structs() []*Struct {
	return d.structs
}

// Lookup finds a struct by its global name.
func (d *Document) Lookup(name string) (*Struct, bool) {
	s, ok := d.names[name]
	return s, ok
}

// All returns every struct depth first, parents before children, in
// declaration order.
func (d *Document) All() []*Struct {
	var out []*Struct
	var visit func([]*Struct)
	visit = func(list []*Struct) {
		for _, s := range list {
			out = append(out, s)
			visit(s.children)
		}
	}
	visit(d.structs)
	return out
}

// Walk calls fn for every struct in the order of All. A non-nil error from
// fn stops the walk.
func (d *Document) Walk(fn func(*Struct) error) error {
	for _, s := range d.All() {
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

// AddStruct creates a struct of type typ under parent, or at the top level
// when parent is nil. An empty name is replaced by a generated one.
func (d *Document) AddStruct(parent *Struct, typ, name string) (*Struct, error) {
	parentType := ""
	if parent != nil {
		parentType = parent.Type
	}
	if err := d.reg.CheckChild(parentType, typ); err != nil {
		return nil, err
	}

	generated := false
	if name == "" {
		name = d.generateName(typ)
		generated = true
	} else if _, taken := d.names[name]; taken {
		return nil, fmt.Errorf("struct name %q is already in use", name)
	}

	s := d.newStruct(parent, typ, name)
	s.Generated = generated
	d.names[name] = s
	if parent != nil {
		parent.children = append(parent.children, s)
	} else {
		d.structs = append(d.structs, s)
	}
	d.shape = d.tick()

	if err := s.bind(); err != nil {
		return nil, err
	}
	return s, nil
}

func (d *Document) newStruct(parent *Struct, typ, name string) *Struct {
	return &Struct{
		doc:      d,
		Type:     typ,
		Name:     name,
		parent:   parent,
		slots:    make(map[string]*value.Slot),
		inherit:  make(map[string]cachedLookup),
		behavior: d.reg.Behavior(typ),
	}
}

func (d *Document) generateName(typ string) string {
	base := strings.ToLower(typ)
	for {
		d.counters[typ]++
		name := fmt.Sprintf("%s%d", base, d.counters[typ])
		if _, taken := d.names[name]; !taken {
			return name
		}
	}
}

func (d *Document) tick() uint64 {
	d.clock++
	return d.clock
}
