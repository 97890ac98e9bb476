package format

import (
	"fmt"

	"github.com/specialistvlad/rplkit/internal/dag"
	"github.com/specialistvlad/rplkit/internal/rom"
	"github.com/specialistvlad/rplkit/internal/rpl"
	"github.com/specialistvlad/rplkit/internal/value"
)

// MaxFieldSize bounds the size of a single field.
const MaxFieldSize = rom.MaxLen

type quantity uint8

const (
	qOffset quantity = iota
	qValue
	qLength
	// qPack serializes a field on import.
	qPack
)

var quantityNames = [...]string{qOffset: "off", qValue: "val", qLength: "len", qPack: "pack"}

type step struct {
	q quantity
	f *field
}

func nodeID(q quantity, key string) string {
	return quantityNames[q] + ":" + key
}

// plan is one pass over the fields of an instance. Offsets are relative to
// the start of the instance.
type plan struct {
	in    *Instance
	dir   Direction
	steps []step

	off  map[string]int64
	size map[string]int64
	// next maps a field using expand to the field that bounds it.
	next map[string]*field

	// count and natural record the clones packed for each sub-format field
	// and the bytes they span.
	count   map[string]int
	natural map[string]int64
}

func (in *Instance) newPlan(dir Direction) (*plan, error) {
	if err := in.compile(); err != nil {
		return nil, err
	}
	p := &plan{
		in:   in,
		dir:  dir,
		off:  make(map[string]int64),
		size: make(map[string]int64),
		next: make(map[string]*field),

		count:   make(map[string]int),
		natural: make(map[string]int64),
	}

	quantities := []quantity{qOffset, qValue, qLength}
	if dir == Import {
		quantities = append(quantities, qPack)
	}
	g := dag.New()
	byID := make(map[string]step)
	for _, f := range in.fields {
		for _, q := range quantities {
			id := nodeID(q, f.key)
			g.AddNode(id)
			byID[id] = step{q: q, f: f}
		}
	}
	for _, f := range in.fields {
		if f.sizeKind == sizeExpand {
			next, err := in.nextPositioned(f)
			if err != nil {
				return nil, in.fail(f.key, err)
			}
			p.next[f.key] = next
		}
		for _, e := range p.edges(f) {
			if err := g.AddEdge(e[0], e[1]); err != nil {
				return nil, in.fail(f.key, err)
			}
		}
	}

	order, err := g.TopoOrder()
	if err != nil {
		return nil, in.fail("", err)
	}
	for _, id := range order {
		p.steps = append(p.steps, byID[id])
	}
	return p, nil
}

func (in *Instance) nextPositioned(f *field) (*field, error) {
	for _, next := range in.fields[f.index+1:] {
		if next.positioned() {
			return next, nil
		}
	}
	return nil, fmt.Errorf("expand needs a later field with an explicit offset")
}

// edges returns the dependencies of the quantities of f as
// {dependency, dependent} pairs.
func (p *plan) edges(f *field) [][2]string {
	var out [][2]string
	need := func(q quantity, key string, dq quantity, dkey string) {
		out = append(out, [2]string{nodeID(dq, dkey), nodeID(q, key)})
	}
	prev := func() *field {
		if f.index == 0 {
			return nil
		}
		return p.in.fields[f.index-1]
	}()

	if p.dir == Export {
		switch {
		case f.offsetFrom != "":
			need(qOffset, f.key, qValue, f.offsetFrom)
		case !f.explicit && prev != nil:
			need(qOffset, f.key, qOffset, prev.key)
			need(qOffset, f.key, qLength, prev.key)
		}
		need(qValue, f.key, qOffset, f.key)
		if next, ok := p.next[f.key]; ok {
			need(qValue, f.key, qOffset, next.key)
		}
		if f.sizeFrom != "" {
			need(qValue, f.key, qValue, f.sizeFrom)
		}
		if f.typeFrom != "" {
			need(qValue, f.key, qValue, f.typeFrom)
		}
		need(qLength, f.key, qValue, f.key)
		return out
	}

	switch f.derived {
	case cmdLen:
		need(qValue, f.key, qLength, f.source)
	case cmdCount:
		need(qValue, f.key, qValue, f.source)
	case cmdOffset:
		need(qValue, f.key, qOffset, f.source)
	}
	if f.typeFrom != "" {
		need(qValue, f.key, qValue, f.typeFrom)
	}
	need(qPack, f.key, qValue, f.key)
	if p.presized(f) {
		need(qPack, f.key, qLength, f.key)
	} else {
		need(qLength, f.key, qPack, f.key)
	}
	if next, ok := p.next[f.key]; ok {
		need(qLength, f.key, qOffset, f.key)
		need(qLength, f.key, qOffset, next.key)
	}
	if f.endBound {
		need(qLength, f.key, qOffset, f.key)
	}
	if !f.positioned() && prev != nil {
		need(qOffset, f.key, qOffset, prev.key)
		need(qOffset, f.key, qLength, prev.key)
	}
	return out
}

// presized reports whether the size of f on import follows from its
// declaration alone. Other fields take the length of what they pack.
func (p *plan) presized(f *field) bool {
	switch f.sizeKind {
	case sizeFixed, sizeRef, sizeExpand:
		return f.sub == nil || f.byBytes()
	}
	return false
}

// fixedOffset sums the offset contributions of f that do not come from
// another field of the same struct.
func (p *plan) fixedOffset(f *field) (int64, error) {
	off := f.offset
	for _, ref := range f.offsetRefs {
		n, err := resolveInt(ref)
		if err != nil {
			return 0, err
		}
		off += n
	}
	return off, nil
}

// following returns the offset right after the previous field.
func (p *plan) following(f *field) int64 {
	if f.index == 0 {
		return 0
	}
	prev := p.in.fields[f.index-1]
	return p.off[prev.key] + p.size[prev.key]
}

// sizeValue evaluates the size expression of f. For sizes that end at an
// address, the result is already relative to the start of the field.
func (p *plan) sizeValue(f *field, limit int64) (int64, error) {
	var n int64
	switch f.sizeKind {
	case sizeFixed:
		n = f.size
	case sizeExpand:
		n = p.off[p.next[f.key].key] - p.off[f.key]
	case sizeToEnd:
		n = limit - p.off[f.key]
	case sizeField:
		sl, ok := p.in.values[f.sizeFrom]
		if !ok {
			return 0, fmt.Errorf("%s has no value yet", f.sizeFrom)
		}
		v, ok := value.AsInt(sl.Value)
		if !ok {
			return 0, fmt.Errorf("%s holds %s, not a number", f.sizeFrom, sl.Value)
		}
		n = v
	case sizeRef:
		v, err := resolveInt(f.sizeRef)
		if err != nil {
			return 0, err
		}
		n = v
	}
	if f.endBound {
		n -= p.off[f.key]
	}
	if n < 0 {
		return 0, fmt.Errorf("size %d is negative", n)
	}
	if n > MaxFieldSize {
		return 0, fmt.Errorf("size %d is larger than %d bytes", n, MaxFieldSize)
	}
	return n, nil
}

// typeOf returns the value type of a field that is not a sub-format.
func (p *plan) typeOf(f *field) (string, error) {
	switch {
	case f.typeName != "":
		return f.typeName, nil
	case f.typeFrom != "":
		sl, ok := p.in.values[f.typeFrom]
		if !ok {
			return "", fmt.Errorf("%s has no value yet", f.typeFrom)
		}
		return p.typeName(sl.Value)
	}
	v, err := f.typeRef.Resolve(nil)
	if err != nil {
		return "", err
	}
	return p.typeName(v)
}

func (p *plan) typeName(v value.Value) (string, error) {
	name, ok := value.AsText(v)
	if !ok {
		return "", fmt.Errorf("%s is not a type name", v)
	}
	if _, ok := p.in.reg.ValueType(name); !ok {
		return "", fmt.Errorf("unknown value type %s", name)
	}
	return name, nil
}

// extent returns the number of bytes the planned fields span.
func (p *plan) extent() int64 {
	var end int64
	for _, f := range p.in.fields {
		if e := p.off[f.key] + p.size[f.key]; e > end {
			end = e
		}
	}
	return end
}

func resolveInt(ref *rpl.Reference) (int64, error) {
	v, err := ref.Resolve(nil)
	if err != nil {
		return 0, err
	}
	n, ok := value.AsInt(v)
	if !ok {
		return 0, fmt.Errorf("%s is %s, not a number", ref, v)
	}
	return n, nil
}
