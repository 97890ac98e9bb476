// Package std registers the struct types every RPL description builds on:
// ROM, the root that carries packing defaults and checks the container,
// Format, a reusable field layout, and Data, a field layout backed by an
// external file. It also adds the bool value type.
package std

import (
	"github.com/specialistvlad/rplkit/internal/format"
	"github.com/specialistvlad/rplkit/internal/registry"
	"github.com/specialistvlad/rplkit/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const (
	endianType = "literal:(little,big)"
	signType   = "literal:(signed,unsigned)"
	alignType  = "literal:(left,right,center,rcenter)"
)

// Register adds the standard struct and value types.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterValueType(BoolType{})

	r.RegisterStruct(&registry.StructDef{
		Name:     "ROM",
		TopLevel: true,
		AnyChild: true,
		Keys: []*registry.KeyDef{
			{Name: "endian", Type: endianType, Default: value.Literal{Text: "little"}},
			{Name: "sign", Type: signType, Default: value.Literal{Text: "unsigned"}},
			{Name: "pad", Type: "string", Default: value.String{Text: "\x00"}},
			{Name: "align", Type: alignType, Default: value.Literal{Text: "left"}},
			{Name: "size", Type: "number", Optional: true, NoBubble: true},
			{Name: "crc32", Type: "hexnum", Optional: true, NoBubble: true},
		},
		New: func() any { return new(ROM) },
	})

	r.RegisterStruct(&registry.StructDef{
		Name:     format.FormatType,
		TopLevel: true,
		AnyKey:   true,
		Keys: []*registry.KeyDef{
			{Name: "base", Type: "hexnum", Default: value.HexNum{}, NoBubble: true},
			{Name: "endian", Type: endianType, Optional: true},
			{Name: "sign", Type: signType, Optional: true},
			{Name: "pad", Type: "string", Optional: true},
			{Name: "align", Type: alignType, Optional: true},
		},
		New: func() any { return format.NewInstance() },
	})

	r.RegisterStruct(&registry.StructDef{
		Name:     format.DataType,
		Base:     format.FormatType,
		TopLevel: true,
		Keys: []*registry.KeyDef{
			{Name: "file", Type: "string", Optional: true, NoBubble: true},
			{Name: "form", Type: "literal:(rpl,json,yaml,yml,txt)", Optional: true},
			{Name: "format", Type: "reference", Optional: true, NoBubble: true},
		},
		New: func() any { return format.NewData() },
	})
}
