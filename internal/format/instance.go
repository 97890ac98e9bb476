package format

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/rplkit/internal/codec"
	"github.com/specialistvlad/rplkit/internal/registry"
	"github.com/specialistvlad/rplkit/internal/rpl"
	"github.com/specialistvlad/rplkit/internal/value"
)

// Struct type names the engine recognizes.
const (
	FormatType = "Format"
	DataType   = "Data"
)

// Instance is the behaviour of Format structs and of every clone made of
// one. It owns the values of the struct's fields: the keys holding field
// declarations read back as the values last exported or imported.
type Instance struct {
	s   *rpl.Struct
	reg *registry.Registry

	compiled bool
	fields   []*field
	byKey    map[string]*field
	values   map[string]value.Slot
}

// NewInstance returns an unbound Instance.
func NewInstance() *Instance {
	return &Instance{}
}

func (in *Instance) Bind(s *rpl.Struct) error {
	in.s = s
	in.reg = s.Document().Registry()
	in.values = make(map[string]value.Slot)
	return nil
}

// Struct returns the struct the instance is bound to.
func (in *Instance) Struct() *rpl.Struct { return in.s }

// declaration returns the struct whose keys declare the fields: the Format
// named by the format key when there is one, the struct itself otherwise.
func (in *Instance) declaration() *rpl.Struct {
	if !in.reg.IsDeclared(in.s.Type, "format") {
		return in.s
	}
	sl, ok := in.s.Raw("format")
	if !ok {
		return in.s
	}
	ref, ok := sl.Value.(*rpl.Reference)
	if !ok {
		return in.s
	}
	target, err := ref.Target(nil)
	if err != nil {
		return in.s
	}
	return target
}

func (in *Instance) OwnsField(key string) bool {
	if in.s == nil || in.reg.IsDeclared(in.s.Type, key) {
		return false
	}
	decl := in.declaration()
	if decl != in.s && in.reg.IsDeclared(decl.Type, key) {
		return false
	}
	_, ok := decl.Raw(key)
	return ok
}

func (in *Instance) FieldValue(key string) (value.Slot, bool) {
	sl, ok := in.values[key]
	return sl, ok
}

func (in *Instance) SetFieldValue(key string, v value.Value, src value.Source) error {
	if err := in.compile(); err != nil {
		return err
	}
	f, ok := in.byKey[key]
	if !ok {
		return fmt.Errorf("%s is not a field of %s", key, in.s)
	}
	if f.typeName != "" {
		coerced, err := coerce(in.reg, f.typeName, v)
		if err != nil {
			return err
		}
		v = coerced
	}
	in.values[key] = value.Slot{Value: v, Source: src}
	return nil
}

// Fields returns the field keys in declaration order.
func (in *Instance) Fields() ([]string, error) {
	if err := in.compile(); err != nil {
		return nil, err
	}
	keys := make([]string, len(in.fields))
	for i, f := range in.fields {
		keys[i] = f.key
	}
	return keys, nil
}

// RecordKeys returns the keys of the fields that appear in external
// records, which leaves out derived fields.
func (in *Instance) RecordKeys() ([]string, error) {
	if err := in.compile(); err != nil {
		return nil, err
	}
	var keys []string
	for _, f := range in.fields {
		if f.derived == cmdNone {
			keys = append(keys, f.key)
		}
	}
	return keys, nil
}

func (in *Instance) compile() error {
	if in.compiled {
		return nil
	}
	decl := in.declaration()
	opts, err := in.defaults(decl)
	if err != nil {
		return in.fail("", err)
	}

	var fields []*field
	byKey := make(map[string]*field)
	for _, key := range decl.Keys() {
		if in.reg.IsDeclared(decl.Type, key) || in.reg.IsDeclared(in.s.Type, key) {
			continue
		}
		sl, _ := decl.Raw(key)
		v := sl.Value
		if decl != in.s {
			v = rebind(v, decl, in.s)
		}
		f, err := in.compileField(key, len(fields), v, opts)
		if err != nil {
			return in.fail(key, err)
		}
		fields = append(fields, f)
		byKey[key] = f
	}

	for _, f := range fields {
		if f.sizeFrom != "" {
			cmd := cmdLen
			if f.sub != nil {
				cmd = cmdCount
			}
			if err := derive(byKey, f.sizeFrom, cmd, f, f.sizeRef); err != nil {
				return in.fail(f.key, err)
			}
		}
		if f.offsetFrom != "" {
			if err := derive(byKey, f.offsetFrom, cmdOffset, f, f.offsetVia); err != nil {
				return in.fail(f.key, err)
			}
		}
		if f.typeFrom != "" {
			if _, ok := byKey[f.typeFrom]; !ok {
				return in.fail(f.key, fmt.Errorf("@this.%s does not name a field", f.typeFrom))
			}
		}
	}
	in.fields, in.byKey, in.compiled = fields, byKey, true
	return nil
}

// defaults reads the packing settings of the struct. Settings on the
// struct itself win over those of its declaring Format, which win over
// inherited ones.
func (in *Instance) defaults(decl *rpl.Struct) (codec.Options, error) {
	opts := codec.Options{Endian: codec.Little}

	if text, ok, err := in.setting(decl, "endian"); err != nil {
		return opts, err
	} else if ok {
		if opts.Endian, err = codec.ParseEndian(text); err != nil {
			return opts, err
		}
	}
	if text, ok, err := in.setting(decl, "sign"); err != nil {
		return opts, err
	} else if ok {
		switch text {
		case "signed":
			opts.Signed = true
		case "unsigned":
		default:
			return opts, fmt.Errorf("unknown sign %q", text)
		}
	}
	if text, ok, err := in.setting(decl, "pad"); err != nil {
		return opts, err
	} else if ok {
		if len(text) != 1 {
			return opts, fmt.Errorf("pad must be a single character, got %q", text)
		}
		opts.Pad = text[0]
	}
	if text, ok, err := in.setting(decl, "align"); err != nil {
		return opts, err
	} else if ok {
		if opts.Align, err = codec.ParseAlign(text); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func (in *Instance) setting(decl *rpl.Struct, key string) (string, bool, error) {
	sl, ok := in.s.Raw(key)
	if !ok && decl != in.s {
		sl, ok = decl.Raw(key)
	}
	if !ok {
		sl, ok = in.s.Lookup(key)
	}
	if !ok {
		return "", false, nil
	}
	v, err := rpl.Resolve(sl.Value)
	if err != nil {
		return "", false, err
	}
	text, ok := value.AsText(v)
	if !ok {
		return "", false, fmt.Errorf("%s must be text, got %s", key, v)
	}
	return text, true, nil
}

func (in *Instance) fail(key string, err error) error {
	var pe *PackingError
	if errors.As(err, &pe) {
		if pe.Struct == "" {
			pe.Struct, pe.Key = in.s.Name, key
		}
		return err
	}
	return &PackingError{Struct: in.s.Name, Key: key, Err: err}
}

// rebind points references written in from at to instead.
func rebind(v value.Value, from, to *rpl.Struct) value.Value {
	switch x := v.(type) {
	case *rpl.Reference:
		if x.Origin == from {
			r := *x
			r.Origin = to
			return &r
		}
	case value.List:
		items := make([]value.Value, len(x.Items))
		for i, item := range x.Items {
			items[i] = rebind(item, from, to)
		}
		return value.List{Items: items}
	}
	return v
}

// instanceOf returns the Instance behind a Format or Data struct.
func instanceOf(s *rpl.Struct) (*Instance, bool) {
	switch b := s.Behavior().(type) {
	case *Instance:
		return b, true
	case *Data:
		return b.Instance, true
	}
	return nil, false
}

// coerce converts v to the value type called name.
func coerce(reg *registry.Registry, name string, v value.Value) (value.Value, error) {
	if value.IsA(reg, v.Type(), name) {
		return v, nil
	}
	t, ok := reg.ValueType(name)
	if !ok {
		return nil, fmt.Errorf("unknown value type %s", name)
	}
	if out, ok := t.Coerce(v); ok {
		return out, nil
	}
	// Text that is not a valid word still packs into a literal field.
	if str, ok := v.(value.String); ok && value.IsA(reg, name, value.TypeString) {
		return str, nil
	}
	if text, ok := value.AsText(v); ok {
		out, err := t.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s as %s: %w", v, name, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot use %s as %s", v, name)
}
