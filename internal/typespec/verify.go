package typespec

import (
	"github.com/specialistvlad/rplkit/internal/value"
)

// Verify checks v against s and returns its normalized form. types resolves
// the atom type names and their subtype relations.
func Verify(s *Spec, v value.Value, types value.Types) (value.Value, bool) {
	vr := &verifier{types: types}
	return vr.verify(s, v, 0)
}

// frame is an enclosing List together with the input depth it was entered
// at. Recursion is only allowed against deeper input.
type frame struct {
	spec  *Spec
	depth int
}

type verifier struct {
	types  value.Types
	frames []frame
}

func (vr *verifier) verify(s *Spec, v value.Value, depth int) (value.Value, bool) {
	if v == nil {
		return nil, false
	}
	if v.Type() == value.TypeReference {
		// Checked again once resolved.
		return v, true
	}
	switch s.Kind {
	case Atom:
		return vr.atom(s, v)
	case Or:
		for _, alt := range s.Children {
			if out, ok := vr.verify(alt, v, depth); ok {
				return out, true
			}
		}
		return nil, false
	case Recurse:
		if len(vr.frames) == 0 {
			return nil, false
		}
		f := vr.frames[len(vr.frames)-1]
		if depth <= f.depth {
			return nil, false
		}
		return vr.verify(f.spec, v, depth)
	}

	vr.frames = append(vr.frames, frame{spec: s, depth: depth})
	defer func() { vr.frames = vr.frames[:len(vr.frames)-1] }()
	return vr.list(s, v, depth)
}

func (vr *verifier) atom(s *Spec, v value.Value) (value.Value, bool) {
	if s.Type == value.TypeAll {
		return v, true
	}
	var out value.Value
	switch {
	case value.IsA(vr.types, v.Type(), s.Type):
		out = v
	case value.IsA(vr.types, s.Type, v.Type()):
		t, ok := vr.types.ValueType(s.Type)
		if !ok {
			return nil, false
		}
		if out, ok = t.Coerce(v); !ok {
			return nil, false
		}
	default:
		return nil, false
	}
	if len(s.Allowed) > 0 && !isAllowed(s.Allowed, out) {
		return nil, false
	}
	return out, true
}

func isAllowed(allowed []string, v value.Value) bool {
	if n, ok := value.AsInt(v); ok {
		for _, a := range allowed {
			av, err := value.NumberType{}.Parse(a)
			if err != nil {
				continue
			}
			if m, _ := value.AsInt(av); m == n {
				return true
			}
		}
		return false
	}
	text, ok := value.AsText(v)
	if !ok {
		text = v.String()
	}
	for _, a := range allowed {
		if a == text {
			return true
		}
	}
	return false
}

func (vr *verifier) list(s *Spec, v value.Value, depth int) (value.Value, bool) {
	seq, isSeq := v.(value.Sequence)
	switch s.Repeat {
	case RepeatNone:
		if !isSeq {
			return nil, false
		}
		items, ok := vr.positional(s.Children, seq.Elements(), depth+1)
		if !ok {
			return nil, false
		}
		return rebuild(v, items), true

	case RepeatPlus:
		if !isSeq {
			return nil, false
		}
		items, ok := vr.repeated(s, seq.Elements(), depth+1, 1)
		if !ok {
			return nil, false
		}
		return rebuild(v, items), true

	case RepeatStar, RepeatStarLoose:
		if out, ok := vr.standalone(s, v, depth); ok {
			return out, true
		}
		if !isSeq {
			return nil, false
		}
		items, ok := vr.repeated(s, seq.Elements(), depth+1, 0)
		if !ok {
			return nil, false
		}
		return rebuild(v, items), true

	case RepeatOne, RepeatOneLoose:
		if out, ok := vr.standalone(s, v, depth); ok {
			return out, true
		}
		if !isSeq {
			return nil, false
		}
		items, ok := vr.positional(s.Children, seq.Elements(), depth+1)
		if !ok {
			return nil, false
		}
		return rebuild(v, items), true
	}
	return nil, false
}

// standalone matches v as a single instance of the indexed child, wrapping
// the result in a one element list unless the policy is non-normalizing.
func (vr *verifier) standalone(s *Spec, v value.Value, depth int) (value.Value, bool) {
	idx := 0
	if s.N != noIndex {
		idx = s.N
	}
	if idx >= len(s.Children) {
		return nil, false
	}
	out, ok := vr.verify(s.Children[idx], v, depth)
	if !ok {
		return nil, false
	}
	if s.Repeat == RepeatStarLoose || s.Repeat == RepeatOneLoose {
		return out, true
	}
	return value.NewList(out), true
}

// positional matches items one to one against specs.
func (vr *verifier) positional(specs []*Spec, items []value.Value, depth int) ([]value.Value, bool) {
	if len(specs) != len(items) {
		return nil, false
	}
	out := make([]value.Value, len(items))
	for i, item := range items {
		r, ok := vr.verify(specs[i], item, depth)
		if !ok {
			return nil, false
		}
		out[i] = r
	}
	return out, true
}

// repeated matches items as a fixed prefix followed by at least min
// repetitions of the repeating children. Only `+` with a count has a fixed
// prefix.
func (vr *verifier) repeated(s *Spec, items []value.Value, depth, min int) ([]value.Value, bool) {
	fixed, rep := []*Spec(nil), s.Children
	if s.Repeat == RepeatPlus && s.N != noIndex {
		cut := len(s.Children) - s.N
		fixed, rep = s.Children[:cut], s.Children[cut:]
	}
	if len(items) < len(fixed) {
		return nil, false
	}
	out, ok := vr.positional(fixed, items[:len(fixed)], depth)
	if !ok {
		return nil, false
	}
	rest := items[len(fixed):]
	if len(rest)%len(rep) != 0 || len(rest)/len(rep) < min {
		return nil, false
	}
	for i := 0; i < len(rest); i += len(rep) {
		chunk, ok := vr.positional(rep, rest[i:i+len(rep)], depth)
		if !ok {
			return nil, false
		}
		out = append(out, chunk...)
	}
	return out, true
}

// rebuild keeps a range a range when every normalized item still fits.
func rebuild(orig value.Value, items []value.Value) value.Value {
	if orig.Type() == value.TypeRange {
		if r, ok := (value.RangeType{}).Coerce(value.List{Items: items}); ok {
			return r
		}
	}
	return value.List{Items: items}
}
