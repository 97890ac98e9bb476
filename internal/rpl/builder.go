package rpl

import (
	"context"
	"fmt"

	"github.com/specialistvlad/rplkit/internal/ctxlog"
	"github.com/specialistvlad/rplkit/internal/refpath"
	"github.com/specialistvlad/rplkit/internal/registry"
	"github.com/specialistvlad/rplkit/internal/syntax"
	"github.com/specialistvlad/rplkit/internal/value"
)

// Parse builds a new document from src.
func Parse(ctx context.Context, reg *registry.Registry, filename string, src []byte) (*Document, error) {
	doc := New(reg)
	doc.Filename = filename
	if err := doc.Parse(ctx, filename, src); err != nil {
		return nil, err
	}
	return doc, nil
}

// Parse adds the structs described by src to the document.
func (d *Document) Parse(ctx context.Context, filename string, src []byte) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing RPL source.", "file", filename, "bytes", len(src))

	toks, err := syntax.Tokenize(filename, src)
	if err != nil {
		return err
	}
	b := &builder{doc: d, reg: d.reg}
	if err := b.run(toks); err != nil {
		return err
	}
	logger.Debug("Parsed RPL source.", "file", filename, "structs", len(d.names))
	return nil
}

// ParseBody parses a bare sequence of `key: value` lines into a Static
// struct of a new document. External representation files use this form.
func ParseBody(ctx context.Context, reg *registry.Registry, filename string, src []byte) (*Struct, error) {
	doc := New(reg)
	doc.Filename = filename
	root, err := doc.AddStruct(nil, registry.StaticType, "")
	if err != nil {
		return nil, err
	}
	root.Pos = syntax.NewPos(filename, 1, 1)

	toks, err := syntax.Tokenize(filename, src)
	if err != nil {
		return nil, err
	}
	b := &builder{doc: doc, reg: reg, stack: []*Struct{root}, implicit: 1}
	if err := b.run(toks); err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Parsed RPL body.", "file", filename, "keys", len(root.keys))
	return root, nil
}

// ParseValue parses the source form of a single value.
func ParseValue(reg *registry.Registry, text string) (value.Value, error) {
	root, err := ParseBody(context.Background(), reg, "", []byte("v: "+text))
	if err != nil {
		return nil, err
	}
	sl, ok := root.Raw("v")
	if !ok {
		return nil, fmt.Errorf("no value in %q", text)
	}
	return sl.Value, nil
}

// builder turns a token stream into structs.
type builder struct {
	doc *Document
	reg *registry.Registry

	stack []*Struct
	lists []*openList
	key   *pendingKey

	// implicit counts the structs at the bottom of the stack that have no
	// braces in the source.
	implicit int

	// head collects bare literals outside of lists until the next token
	// decides whether they form a struct head or a value.
	head []syntax.Token
}

type openList struct {
	pos   syntax.Pos
	items []value.Value
}

type pendingKey struct {
	name string
	pos  syntax.Pos
}

func (b *builder) current() *Struct {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *builder) errorf(pos syntax.Pos, format string, args ...any) error {
	return &syntax.Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// located attaches the current struct and key to err.
func (b *builder) located(pos syntax.Pos, err error) error {
	e := &Error{Pos: pos, Err: err}
	if s := b.current(); s != nil {
		e.Struct = s.Name
	}
	if b.key != nil {
		e.Key = b.key.name
	}
	return e
}

func (b *builder) run(toks []syntax.Token) error {
	for _, tok := range toks {
		if err := b.step(tok); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) step(tok syntax.Token) error {
	if tok.Kind == syntax.Literal && len(b.lists) == 0 {
		b.head = append(b.head, tok)
		return nil
	}
	if tok.Is('{') {
		return b.openStruct(tok)
	}
	if err := b.flushHead(); err != nil {
		return err
	}

	switch tok.Kind {
	case syntax.EOF:
		return b.finish(tok)
	case syntax.Key:
		return b.openKey(tok)
	case syntax.Flow:
		switch {
		case tok.Is('}'):
			return b.closeStruct(tok)
		case tok.Is('['):
			b.lists = append(b.lists, &openList{pos: tok.Pos})
			return nil
		case tok.Is(']'):
			if len(b.lists) == 0 {
				return b.errorf(tok.Pos, "unexpected ]")
			}
			l := b.lists[len(b.lists)-1]
			b.lists = b.lists[:len(b.lists)-1]
			return b.emit(tok.Pos, value.List{Items: l.items})
		}
		// Commas only separate.
		return nil
	}

	v, err := b.tokenValue(tok)
	if err != nil {
		return err
	}
	return b.emit(tok.Pos, v)
}

// flushHead turns buffered literals into a value for the pending key.
func (b *builder) flushHead() error {
	if len(b.head) == 0 {
		return nil
	}
	head := b.head
	b.head = nil
	if b.key == nil {
		return b.errorf(head[0].Pos, "unused value %s", head[0].Text)
	}
	if len(head) > 1 {
		return b.errorf(head[1].Pos, "unused value %s", head[1].Text)
	}
	return b.emit(head[0].Pos, b.literal(head[0]))
}

func (b *builder) openStruct(tok syntax.Token) error {
	if len(b.lists) > 0 {
		return b.errorf(tok.Pos, "struct inside a list")
	}
	head := b.head
	b.head = nil
	if b.key != nil {
		// The first literal belongs to the key; the rest is the head.
		if len(head) < 2 {
			return b.errorf(tok.Pos, "struct head with a bound key %s", b.key.name)
		}
		if err := b.emit(head[0].Pos, b.literal(head[0])); err != nil {
			return err
		}
		head = head[1:]
	}
	switch {
	case len(head) == 0:
		return b.errorf(tok.Pos, "struct without a type")
	case len(head) > 2:
		return b.errorf(head[2].Pos, "struct head has more than two words")
	}

	typ, name := head[0].Text, ""
	if len(head) == 2 {
		name = head[1].Text
	}
	s, err := b.doc.AddStruct(b.current(), typ, name)
	if err != nil {
		return b.located(head[0].Pos, err)
	}
	s.Pos = head[0].Pos
	b.stack = append(b.stack, s)
	return nil
}

func (b *builder) closeStruct(tok syntax.Token) error {
	if len(b.lists) > 0 {
		return b.errorf(b.lists[len(b.lists)-1].pos, "unclosed list")
	}
	if b.key != nil {
		return b.errorf(b.key.pos, "key %s has no value", b.key.name)
	}
	if len(b.stack) <= b.implicit {
		return b.errorf(tok.Pos, "unexpected }")
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

func (b *builder) openKey(tok syntax.Token) error {
	s := b.current()
	switch {
	case s == nil:
		return b.errorf(tok.Pos, "key %s outside of a struct", tok.Text)
	case len(b.lists) > 0:
		return b.errorf(tok.Pos, "key %s inside a list", tok.Text)
	case b.key != nil:
		return b.errorf(b.key.pos, "key %s has no value", b.key.name)
	}
	if !b.reg.AllowsKey(s.Type, tok.Text) {
		return &Error{
			Pos:    tok.Pos,
			Struct: s.Name,
			Err:    &registry.UndefinedError{Kind: "key", Name: tok.Text, Struct: s.Type},
		}
	}
	b.key = &pendingKey{name: tok.Text, pos: tok.Pos}
	return nil
}

func (b *builder) finish(tok syntax.Token) error {
	if len(b.lists) > 0 {
		return b.errorf(b.lists[len(b.lists)-1].pos, "unclosed list")
	}
	if b.key != nil {
		return b.errorf(b.key.pos, "key %s has no value", b.key.name)
	}
	if len(b.stack) > b.implicit {
		s := b.current()
		return b.errorf(s.Pos, "unclosed struct %s", s)
	}
	return nil
}

// literal resolves a bare word against the statics.
func (b *builder) literal(tok syntax.Token) value.Value {
	if v, ok := b.reg.Static(tok.Text); ok {
		return v
	}
	return value.Literal{Text: tok.Text}
}

func (b *builder) tokenValue(tok syntax.Token) (value.Value, error) {
	switch tok.Kind {
	case syntax.String:
		return value.String{Text: tok.Text}, nil
	case syntax.Literal:
		return b.literal(tok), nil
	case syntax.Number:
		items := make([]value.Value, len(tok.Scalars))
		for i, sc := range tok.Scalars {
			items[i] = scalarValue(sc)
		}
		if !tok.Chain && len(items) == 1 {
			return items[0], nil
		}
		return value.Range{Items: items}, nil
	case syntax.Reference:
		path, err := refpath.Parse(tok.Text)
		if err != nil {
			return nil, b.errorf(tok.Pos, "%v", err)
		}
		key := ""
		if b.key != nil {
			key = b.key.name
		}
		ref := NewReference(b.doc, path, b.current(), key)
		ref.Pos = tok.Pos
		return ref, nil
	}
	return nil, b.errorf(tok.Pos, "unexpected %s", tok)
}

func scalarValue(sc syntax.Scalar) value.Value {
	switch sc.Kind {
	case syntax.ScalarHex:
		return value.HexNum{Int: sc.Int}
	case syntax.ScalarLetter:
		return value.Literal{Text: string(sc.Char)}
	}
	return value.Number{Int: sc.Int}
}

// emit hands a finished value to the open list or the pending key.
func (b *builder) emit(pos syntax.Pos, v value.Value) error {
	if len(b.lists) > 0 {
		l := b.lists[len(b.lists)-1]
		l.items = append(l.items, v)
		return nil
	}
	if b.key == nil {
		return b.errorf(pos, "unused value %s", v)
	}
	if err := b.assign(pos, v); err != nil {
		return err
	}
	b.key = nil
	return nil
}

// assign stores v under the pending key. Keys of a list-shaped type
// accumulate when repeated.
func (b *builder) assign(pos syntax.Pos, v value.Value) error {
	s, key := b.current(), b.key.name
	nv, err := s.check(key, v)
	if err != nil {
		return b.located(pos, err)
	}
	existing, ok := s.slots[key]
	if !ok {
		s.store(key, nv, value.Set)
		return nil
	}

	spec, err := s.spec(key)
	if err != nil {
		return b.located(pos, err)
	}
	prev, prevSeq := existing.Value.(value.Sequence)
	next, nextSeq := nv.(value.Sequence)
	if spec == nil || !spec.IsList() || !prevSeq || !nextSeq {
		return b.located(pos, fmt.Errorf("key %s is already set", key))
	}
	items := append(append([]value.Value{}, prev.Elements()...), next.Elements()...)
	combined, err := s.check(key, value.List{Items: items})
	if err != nil {
		return b.located(pos, err)
	}
	s.store(key, combined, value.Set)
	return nil
}
