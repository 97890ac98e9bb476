package testutil

import "github.com/specialistvlad/rplkit/internal/registry"

// NoOpModule registers a "Note" struct type that accepts any key and has
// no behaviour. It is useful for descriptions that should parse and
// validate but move no data.
type NoOpModule struct{}

// Register implements the registry.Module interface.
func (m *NoOpModule) Register(r *registry.Registry) {
	r.RegisterStruct(&registry.StructDef{
		Name:     "Note",
		TopLevel: true,
		AnyKey:   true,
	})
}
