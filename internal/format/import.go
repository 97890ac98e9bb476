package format

import (
	"bytes"
	"context"
	"fmt"

	"github.com/specialistvlad/rplkit/internal/codec"
	"github.com/specialistvlad/rplkit/internal/ctxlog"
	"github.com/specialistvlad/rplkit/internal/extern"
	"github.com/specialistvlad/rplkit/internal/value"
)

// Chunk is a run of packed bytes at an offset.
type Chunk struct {
	Offset int64
	Data   []byte
}

// Import packs rec into chunks positioned relative to the start of the
// instance. Derived fields are computed from the fields they describe and
// written back through their references. The second result is the number
// of bytes the fields span.
func (in *Instance) Import(ctx context.Context, rec *extern.Record) ([]Chunk, int64, error) {
	p, err := in.newPlan(Import)
	if err != nil {
		return nil, 0, err
	}
	in.values = make(map[string]value.Slot)
	staged := make(map[string][]Chunk)

	for _, st := range p.steps {
		if err := p.importStep(ctx, st, rec, staged); err != nil {
			return nil, 0, in.fail(st.f.key, err)
		}
	}

	var out []Chunk
	for _, f := range in.fields {
		for _, c := range staged[f.key] {
			out = append(out, Chunk{Offset: p.off[f.key] + c.Offset, Data: c.Data})
		}
	}
	ctxlog.FromContext(ctx).Debug("Imported struct.", "struct", in.s.Name, "chunks", len(out), "bytes", p.extent())
	return out, p.extent(), nil
}

func (p *plan) importStep(ctx context.Context, st step, rec *extern.Record, staged map[string][]Chunk) error {
	f := st.f
	switch st.q {
	case qOffset:
		if !f.positioned() {
			p.off[f.key] = p.following(f)
			return nil
		}
		off, err := p.fixedOffset(f)
		if err != nil {
			return err
		}
		p.off[f.key] = off

	case qValue:
		if f.derived != cmdNone {
			return p.derive(f)
		}
		e, ok := rec.Lookup(f.key)
		if !ok {
			return fmt.Errorf("missing from the external record")
		}
		if f.sub != nil {
			return p.importClones(ctx, f, e, staged)
		}
		if e.Repeated {
			return fmt.Errorf("expected a single value, got a list of records")
		}
		name, err := p.typeOf(f)
		if err != nil {
			return err
		}
		v, err := coerce(p.in.reg, name, e.Value)
		if err != nil {
			return err
		}
		p.in.values[f.key] = value.Slot{Value: v, Source: value.Sourced}

	case qLength:
		if !p.presized(f) {
			return nil
		}
		n, err := p.sizeValue(f, 0)
		if err != nil {
			return err
		}
		p.size[f.key] = n

	case qPack:
		if f.sub != nil {
			return p.fitClones(f, staged)
		}
		return p.pack(f, staged)
	}
	return nil
}

// derive computes the length, count or offset held by f.
func (p *plan) derive(f *field) error {
	var n int64
	switch f.derived {
	case cmdLen:
		n = p.size[f.source]
	case cmdCount:
		n = int64(p.count[f.source])
	case cmdOffset:
		src := p.in.byKey[f.source]
		fixed, err := p.fixedOffset(src)
		if err != nil {
			return err
		}
		n = p.off[src.key] - fixed
	}
	return f.via.Assign(value.Number{Int: n}, nil)
}

// pack serializes the value of f at its declared size.
func (p *plan) pack(f *field, staged map[string][]Chunk) error {
	name, err := p.typeOf(f)
	if err != nil {
		return err
	}
	sl, ok := p.in.values[f.key]
	if !ok {
		return fmt.Errorf("no value to pack")
	}
	v, err := coerce(p.in.reg, name, sl.Value)
	if err != nil {
		return err
	}
	ser, ok := v.(value.Serializer)
	if !ok {
		return fmt.Errorf("%s values cannot be packed", v.Type())
	}

	presized := p.presized(f)
	var n int64
	if presized {
		n = p.size[f.key]
	}
	opts := f.opts
	opts.Size = int(n)
	data, err := ser.Serialize(opts)
	if err != nil {
		return err
	}
	if presized && int64(len(data)) != n {
		return &codec.SizeError{Expected: int(n), Got: len(data)}
	}
	staged[f.key] = []Chunk{{Data: data}}
	if !presized {
		p.size[f.key] = int64(len(data))
	}
	return nil
}

// importClones packs one clone of the sub-format of f per entry. Entries
// are records, or lists holding the clone's record fields in order.
func (p *plan) importClones(ctx context.Context, f *field, e extern.Entry, staged map[string][]Chunk) error {
	recs := e.Records
	var positional []value.Value
	if !e.Repeated {
		seq, ok := e.Value.(value.Sequence)
		if !ok {
			return fmt.Errorf("expected a list of entries, got %s", e.Value)
		}
		positional = seq.Elements()
	}
	count := len(recs)
	if !e.Repeated {
		count = len(positional)
	}

	var chunks []Chunk
	var items []value.Value
	var used int64
	for i := 0; i < count; i++ {
		ci, err := p.in.clone(f, i)
		if err != nil {
			return err
		}
		var rec *extern.Record
		if e.Repeated {
			rec = recs[i]
		} else {
			keys, err := ci.RecordKeys()
			if err != nil {
				return err
			}
			if rec, err = extern.FromPositional(keys, positional[i]); err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
		}
		cs, length, err := ci.Import(ctx, rec)
		if err != nil {
			return err
		}
		for _, c := range cs {
			chunks = append(chunks, Chunk{Offset: used + c.Offset, Data: c.Data})
		}
		used += length
		items = append(items, rec.Positional())
	}
	p.count[f.key] = count
	p.natural[f.key] = used
	staged[f.key] = chunks
	p.in.values[f.key] = value.Slot{Value: value.List{Items: items}, Source: value.Sourced}
	return nil
}

// fitClones checks the packed clones of f against its size and pads them
// out to a byte limit.
func (p *plan) fitClones(f *field, staged map[string][]Chunk) error {
	used, count := p.natural[f.key], p.count[f.key]
	switch {
	case f.sizeKind == sizeToEnd || f.sizeKind == sizeField:
		p.size[f.key] = used
	case f.byBytes():
		n := p.size[f.key]
		if used > n {
			return &codec.SizeError{Expected: int(n), Got: int(used)}
		}
		if used < n {
			pad := bytes.Repeat([]byte{f.opts.Pad}, int(n-used))
			staged[f.key] = append(staged[f.key], Chunk{Offset: used, Data: pad})
		}
		p.size[f.key] = n
	default:
		n, err := p.sizeValue(f, 0)
		if err != nil {
			return err
		}
		if int64(count) != n {
			return fmt.Errorf("expected %d entries but got %d", n, count)
		}
		p.size[f.key] = used
	}
	return nil
}
