package format

import (
	"context"
	"fmt"

	"github.com/specialistvlad/rplkit/internal/codec"
	"github.com/specialistvlad/rplkit/internal/ctxlog"
	"github.com/specialistvlad/rplkit/internal/extern"
	"github.com/specialistvlad/rplkit/internal/rom"
	"github.com/specialistvlad/rplkit/internal/value"
)

// Export reads the fields of the instance from buf, starting at the
// absolute offset base. It returns the external record, which leaves out
// derived fields, and the number of bytes the fields span.
func (in *Instance) Export(ctx context.Context, buf *rom.Buffer, base int64) (*extern.Record, int64, error) {
	p, err := in.newPlan(Export)
	if err != nil {
		return nil, 0, err
	}
	in.values = make(map[string]value.Slot)
	subs := make(map[string][]*extern.Record)
	limit := int64(buf.Len()) - base

	for _, st := range p.steps {
		if err := p.exportStep(ctx, st, buf, base, limit, subs); err != nil {
			return nil, 0, in.fail(st.f.key, err)
		}
	}

	rec := &extern.Record{}
	for _, f := range in.fields {
		switch {
		case f.derived != cmdNone:
		case f.sub != nil:
			rec.SetRecords(f.key, subs[f.key])
		default:
			rec.Set(f.key, in.values[f.key].Value)
		}
	}
	ctxlog.FromContext(ctx).Debug("Exported struct.", "struct", in.s.Name, "base", base, "bytes", p.extent())
	return rec, p.extent(), nil
}

func (p *plan) exportStep(ctx context.Context, st step, buf *rom.Buffer, base, limit int64, subs map[string][]*extern.Record) error {
	f := st.f
	switch st.q {
	case qOffset:
		if !f.explicit && f.offsetFrom == "" {
			p.off[f.key] = p.following(f)
			return nil
		}
		off, err := p.fixedOffset(f)
		if err != nil {
			return err
		}
		if f.offsetFrom != "" {
			sl, ok := p.in.values[f.offsetFrom]
			n, isInt := value.AsInt(sl.Value)
			if !ok || !isInt {
				return fmt.Errorf("offset field %s holds no number", f.offsetFrom)
			}
			off += n
		}
		p.off[f.key] = off

	case qValue:
		n, err := p.sizeValue(f, limit)
		if err != nil {
			return err
		}
		at := base + p.off[f.key]
		if f.sub != nil {
			return p.exportClones(ctx, f, buf, at, n, subs)
		}
		name, err := p.typeOf(f)
		if err != nil {
			return err
		}
		t, _ := p.in.reg.ValueType(name)
		data, err := buf.Slice(at, n)
		if err != nil {
			return err
		}
		opts := f.opts
		opts.Size = int(n)
		v, err := t.Unserialize(data, opts)
		if err != nil {
			return err
		}
		p.in.values[f.key] = value.Slot{Value: v, Source: value.Sourced}
		p.size[f.key] = n
	}
	return nil
}

// exportClones reads n clones of the sub-format of f, or clones until n
// bytes are used up when the size is a byte limit.
func (p *plan) exportClones(ctx context.Context, f *field, buf *rom.Buffer, at, n int64, subs map[string][]*extern.Record) error {
	var recs []*extern.Record
	var items []value.Value
	var used int64
	for i := 0; ; i++ {
		if f.byBytes() && used >= n || !f.byBytes() && int64(i) >= n {
			break
		}
		ci, err := p.in.clone(f, i)
		if err != nil {
			return err
		}
		rec, length, err := ci.Export(ctx, buf, at+used)
		if err != nil {
			return err
		}
		if length == 0 && f.byBytes() {
			return fmt.Errorf("%s spans no bytes", f.sub)
		}
		used += length
		recs = append(recs, rec)
		items = append(items, rec.Positional())
	}
	size := used
	if f.byBytes() {
		if used > n {
			return &codec.SizeError{Expected: int(n), Got: int(used)}
		}
		size = n
	}
	p.size[f.key] = size
	p.in.values[f.key] = value.Slot{Value: value.List{Items: items}, Source: value.Sourced}
	subs[f.key] = recs
	return nil
}

// clone makes the i-th instance of the sub-format of f, parented to the
// struct being processed so that settings bubble from it.
func (in *Instance) clone(f *field, i int) (*Instance, error) {
	c, err := f.sub.Clone(in.s, fmt.Sprintf("%s%d", f.key, i))
	if err != nil {
		return nil, err
	}
	ci, ok := instanceOf(c)
	if !ok {
		return nil, fmt.Errorf("%s has no field layout", f.sub)
	}
	return ci, nil
}
