package registry

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/specialistvlad/rplkit/internal/typespec"
	"github.com/specialistvlad/rplkit/internal/value"
)

// KeyDef declares one key of a struct type.
type KeyDef struct {
	Name string
	// Type is the type grammar values of the key must match.
	Type string
	// Default is used when the key is absent after bubbling. A nil Default
	// marks the key as required unless Optional is set.
	Default  value.Value
	Optional bool
	// NoBubble hides the key from children looking it up on their parents.
	NoBubble bool

	spec *typespec.Spec
}

// Spec returns the compiled type grammar of the key, compiling it on first
// use.
func (k *KeyDef) Spec() (*typespec.Spec, error) {
	if k.spec != nil {
		return k.spec, nil
	}
	s, err := typespec.Compile(k.Type)
	if err != nil {
		return nil, fmt.Errorf("key %s: %w", k.Name, err)
	}
	k.spec = s
	return s, nil
}

// StructDef declares a struct type.
type StructDef struct {
	Name string
	// Base names a struct type whose keys are inherited. Keys declared here
	// override base keys of the same name.
	Base string
	// Children lists the struct types allowed as children.
	Children []string
	AnyChild bool
	Keys     []*KeyDef
	AnyKey   bool
	// Static types accept any key and any child without checks.
	Static bool
	// TopLevel types may appear at the top of a document.
	TopLevel bool
	// Basic names the key read when a reference selects no key.
	Basic string
	// New constructs the behaviour attached to each struct of this type.
	// The result is type-asserted against the behaviour interfaces of the
	// packages that consume it.
	New func() any
}

// RegisterStruct registers a struct type.
func (r *Registry) RegisterStruct(def *StructDef) {
	if _, exists := r.Structs[def.Name]; exists {
		panic(fmt.Sprintf("struct type with name '%s' already registered", def.Name))
	}
	slog.Debug("Registering struct type.", "name", def.Name, "base", def.Base, "keys", len(def.Keys))
	r.Structs[def.Name] = def
	r.structOrder = append(r.structOrder, def.Name)
}

// RegisterValueType registers a value type.
func (r *Registry) RegisterValueType(t value.Type) {
	name := t.Name()
	if _, exists := r.ValueTypes[name]; exists {
		panic(fmt.Sprintf("value type with name '%s' already registered", name))
	}
	slog.Debug("Registering value type.", "name", name, "base", t.Base())
	r.ValueTypes[name] = t
	r.typeOrder = append(r.typeOrder, name)
}

// ValueType looks up a registered value type.
func (r *Registry) ValueType(name string) (value.Type, bool) {
	t, ok := r.ValueTypes[name]
	return t, ok
}

// Struct looks up a registered struct type.
func (r *Registry) Struct(name string) (*StructDef, error) {
	def, ok := r.Structs[name]
	if !ok {
		return nil, &UndefinedError{Kind: "struct type", Name: name}
	}
	return def, nil
}

// StructTypes returns the registered struct type names in registration
// order.
func (r *Registry) StructTypes() []string {
	return slices.Clone(r.structOrder)
}

// Lineage returns the struct type followed by its bases, nearest first.
func (r *Registry) Lineage(name string) []*StructDef {
	var out []*StructDef
	for name != "" && len(out) <= len(r.Structs) {
		def, ok := r.Structs[name]
		if !ok {
			break
		}
		out = append(out, def)
		name = def.Base
	}
	return out
}

// Inherits reports whether struct type name is base or derives from it.
func (r *Registry) Inherits(name, base string) bool {
	for _, def := range r.Lineage(name) {
		if def.Name == base {
			return true
		}
	}
	return false
}

// Key resolves a key declaration on a struct type, searching base types.
func (r *Registry) Key(structType, key string) (*KeyDef, bool) {
	for _, def := range r.Lineage(structType) {
		for _, k := range def.Keys {
			if k.Name == key {
				return k, true
			}
		}
	}
	return nil, false
}

// Keys returns the effective keys of a struct type: base keys first, in
// declaration order, with overrides replacing the inherited entry.
func (r *Registry) Keys(structType string) []*KeyDef {
	lineage := r.Lineage(structType)
	var out []*KeyDef
	index := map[string]int{}
	for i := len(lineage) - 1; i >= 0; i-- {
		for _, k := range lineage[i].Keys {
			if at, ok := index[k.Name]; ok {
				out[at] = k
				continue
			}
			index[k.Name] = len(out)
			out = append(out, k)
		}
	}
	return out
}

// AllowsKey reports whether a struct type accepts key.
func (r *Registry) AllowsKey(structType, key string) bool {
	for _, def := range r.Lineage(structType) {
		if def.Static || def.AnyKey {
			return true
		}
	}
	_, ok := r.Key(structType, key)
	return ok
}

// IsDeclared reports whether key is explicitly declared on the struct type
// or one of its bases, as opposed to accepted through AnyKey.
func (r *Registry) IsDeclared(structType, key string) bool {
	_, ok := r.Key(structType, key)
	return ok
}

// CheckChild returns an UndefinedError when childType may not appear inside
// parentType. An empty parentType stands for the document itself.
func (r *Registry) CheckChild(parentType, childType string) error {
	child, err := r.Struct(childType)
	if err != nil {
		return err
	}
	if parentType == "" {
		if child.TopLevel {
			return nil
		}
		return &UndefinedError{Kind: "child", Name: childType, Struct: "the document"}
	}
	for _, def := range r.Lineage(parentType) {
		if def.Static || def.AnyChild {
			return nil
		}
		for _, allowed := range def.Children {
			if r.Inherits(childType, allowed) {
				return nil
			}
		}
	}
	return &UndefinedError{Kind: "child", Name: childType, Struct: parentType}
}

// Behavior constructs the behaviour of a struct type, or returns nil when
// neither the type nor its bases declare one.
func (r *Registry) Behavior(structType string) any {
	for _, def := range r.Lineage(structType) {
		if def.New != nil {
			return def.New()
		}
	}
	return nil
}

// Basic returns the basic key of a struct type, searching base types.
func (r *Registry) Basic(structType string) string {
	for _, def := range r.Lineage(structType) {
		if def.Basic != "" {
			return def.Basic
		}
	}
	return ""
}
