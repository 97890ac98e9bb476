// Package bin copies raw byte ranges of the container to and from binary
// files, and adds the bin value type for fields holding opaque bytes.
package bin

import "github.com/specialistvlad/rplkit/internal/registry"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register adds the Bin struct type and the bin value type.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterValueType(Type{})

	r.RegisterStruct(&registry.StructDef{
		Name:     "Bin",
		TopLevel: true,
		Basic:    "base",
		Keys: []*registry.KeyDef{
			{Name: "base", Type: "hexnum", NoBubble: true},
			{Name: "size", Type: "number", NoBubble: true},
			{Name: "file", Type: "string", Optional: true, NoBubble: true},
		},
		New: func() any { return new(Blob) },
	})
}
