package testutil

import (
	"github.com/specialistvlad/rplkit/internal/registry"
	"github.com/specialistvlad/rplkit/internal/value"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers struct types and value types.
type SimpleModule struct {
	Structs    []*registry.StructDef
	ValueTypes []value.Type
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	for _, t := range m.ValueTypes {
		r.RegisterValueType(t)
	}
	for _, def := range m.Structs {
		r.RegisterStruct(def)
	}
}
