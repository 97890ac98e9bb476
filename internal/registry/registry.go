package registry

import (
	"log/slog"

	"github.com/specialistvlad/rplkit/internal/value"
)

// StaticType is the struct type that accepts any key and any child. It is
// always registered.
const StaticType = "Static"

// Module is the interface that all modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the struct types, value types and named constants known to
// a single application instance.
type Registry struct {
	Structs    map[string]*StructDef
	ValueTypes map[string]value.Type
	Statics    map[string]value.Value

	structOrder []string
	typeOrder   []string
}

// New creates a Registry holding the built-in value types, the Static struct
// type and the true/false constants.
func New() *Registry {
	r := &Registry{
		Structs:    make(map[string]*StructDef),
		ValueTypes: make(map[string]value.Type),
		Statics:    make(map[string]value.Value),
	}
	for _, t := range value.Builtins() {
		r.RegisterValueType(t)
	}
	r.RegisterStruct(&StructDef{Name: StaticType, Static: true, TopLevel: true})
	r.SetStatic("true", value.Number{Int: 1})
	r.SetStatic("false", value.Number{Int: 0})
	return r
}

// SetStatic defines or replaces a named constant.
func (r *Registry) SetStatic(name string, v value.Value) {
	slog.Debug("Setting static.", "name", name, "value", v.String())
	r.Statics[name] = v
}

// Static looks up a named constant.
func (r *Registry) Static(name string) (value.Value, bool) {
	v, ok := r.Statics[name]
	return v, ok
}
