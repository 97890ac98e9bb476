package format

import (
	"fmt"

	"github.com/specialistvlad/rplkit/internal/codec"
	"github.com/specialistvlad/rplkit/internal/rpl"
	"github.com/specialistvlad/rplkit/internal/value"
)

type sizeKind uint8

const (
	sizeFixed  sizeKind = iota
	sizeExpand          // up to the next explicitly positioned field
	sizeToEnd           // up to the end of the container
	sizeField           // stored in another field of the same struct
	sizeRef             // read through a reference
)

// command names what a derived field holds.
type command uint8

const (
	cmdNone command = iota
	cmdLen
	cmdCount
	cmdOffset
)

func (c command) String() string {
	switch c {
	case cmdLen:
		return "length"
	case cmdCount:
		return "count"
	case cmdOffset:
		return "offset"
	}
	return "none"
}

// field is a compiled field declaration.
type field struct {
	key   string
	index int

	typeName string
	sub      *rpl.Struct
	typeFrom string
	typeRef  *rpl.Reference

	sizeKind sizeKind
	size     int64
	sizeFrom string
	sizeRef  *rpl.Reference
	endBound bool

	explicit   bool
	offset     int64
	offsetRefs []*rpl.Reference
	offsetFrom string
	offsetVia  *rpl.Reference

	opts codec.Options

	// derived is set on a field that holds the length, count or offset of
	// the field named by source. via is the reference written back through.
	derived command
	source  string
	via     *rpl.Reference
}

// byBytes reports whether the size of a repeating sub-format is a byte
// limit rather than a number of clones.
func (f *field) byBytes() bool {
	return f.endBound || f.sizeKind == sizeExpand || f.sizeKind == sizeToEnd
}

// positioned reports whether the field has an offset of its own on import.
func (f *field) positioned() bool {
	return f.explicit && f.offsetFrom == ""
}

func (in *Instance) compileField(key string, index int, decl value.Value, defaults codec.Options) (*field, error) {
	seq, ok := decl.(value.Sequence)
	if !ok || len(seq.Elements()) < 2 {
		return nil, fmt.Errorf("expected [type, size, modifiers...], got %s", decl)
	}
	items := seq.Elements()
	f := &field{key: key, index: index, opts: defaults}

	switch t := items[0].(type) {
	case *rpl.Reference:
		switch {
		case t.IsSelf():
			f.typeFrom = t.Path.Key
		case !t.Path.HasKey():
			target, err := t.Target(nil)
			if err != nil {
				return nil, err
			}
			if !in.reg.Inherits(target.Type, FormatType) {
				return nil, fmt.Errorf("%s is not a %s", target, FormatType)
			}
			f.sub = target
		default:
			f.typeRef = t
		}
	default:
		name, ok := value.AsText(t)
		if !ok {
			return nil, fmt.Errorf("field type must be a type name or a reference, got %s", t)
		}
		if _, ok := in.reg.ValueType(name); !ok {
			return nil, fmt.Errorf("unknown value type %s", name)
		}
		f.typeName = name
	}

	switch s := items[1].(type) {
	case *rpl.Reference:
		if s.IsSelf() {
			f.sizeKind, f.sizeFrom = sizeField, s.Path.Key
		} else {
			f.sizeKind = sizeRef
		}
		f.sizeRef = s
	default:
		if n, ok := value.AsInt(s); ok {
			f.sizeKind, f.size = sizeFixed, n
			break
		}
		switch text, _ := value.AsText(s); text {
		case "expand":
			f.sizeKind = sizeExpand
		case "end":
			f.sizeKind = sizeToEnd
		default:
			return nil, fmt.Errorf("field size must be a number, expand, end or a reference, got %s", s)
		}
	}

	for _, m := range items[2:] {
		if err := f.modifier(m); err != nil {
			return nil, err
		}
	}
	if f.endBound && f.sizeKind != sizeFixed && f.sizeKind != sizeRef {
		return nil, fmt.Errorf("end needs a size that is an end address")
	}
	return f, nil
}

func (f *field) modifier(m value.Value) error {
	if ref, ok := m.(*rpl.Reference); ok {
		if !ref.IsSelf() {
			f.offsetRefs = append(f.offsetRefs, ref)
			f.explicit = true
			return nil
		}
		if f.offsetFrom != "" {
			return &PackingError{Msg: "cannot split multiple offset references"}
		}
		f.offsetFrom, f.offsetVia = ref.Path.Key, ref
		return nil
	}
	if n, ok := value.AsInt(m); ok {
		f.offset += n
		f.explicit = true
		return nil
	}
	text, ok := value.AsText(m)
	if !ok {
		return fmt.Errorf("unknown field modifier %s", m)
	}
	switch text {
	case "little":
		f.opts.Endian = codec.Little
	case "big":
		f.opts.Endian = codec.Big
	case "signed":
		f.opts.Signed = true
	case "unsigned":
		f.opts.Signed = false
	case "left", "right", "center", "rcenter":
		f.opts.Align, _ = codec.ParseAlign(text)
	case "end":
		f.endBound = true
	default:
		if len(text) != 1 {
			return fmt.Errorf("unknown field modifier %s", text)
		}
		f.opts.Pad = text[0]
	}
	return nil
}

// derive marks target as holding the given quantity of source.
func derive(byKey map[string]*field, target string, cmd command, source *field, via *rpl.Reference) error {
	f, ok := byKey[target]
	if !ok {
		return fmt.Errorf("%s does not name a field", via)
	}
	if f.derived != cmdNone && (f.derived != cmd || f.source != source.key) {
		return fmt.Errorf("%s already holds the %s of %s", target, f.derived, f.source)
	}
	f.derived, f.source, f.via = cmd, source.key, via
	return nil
}
