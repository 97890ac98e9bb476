// Package typespec compiles compact type grammars such as "[number,string]+1"
// into immutable validator trees and verifies values against them.
//
// Grammar:
//
//	alt    := item ('|' item)*
//	item   := '^' | list | atom
//	list   := '[' (alt (',' alt)*)? ']' [repeat [digits]]
//	repeat := '*' | '+' | '!' | '~' | '.'
//	atom   := name [':' '(' value (',' value)* ')']
//
// A mismatch during verification is data, not an error: Verify reports it
// with ok == false.
package typespec

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the node kind of a compiled Spec.
type Kind uint8

const (
	Atom Kind = iota
	List
	Or
	Recurse
)

// Repeat policies for List nodes.
const (
	RepeatNone      byte = 0
	RepeatPlus      byte = '+'
	RepeatStar      byte = '*'
	RepeatOne       byte = '!'
	RepeatOneLoose  byte = '.'
	RepeatStarLoose byte = '~'
)

const (
	noIndex          = -1
	maxGrammarLength = 4096
)

// Spec is a compiled type specification node.
type Spec struct {
	Kind     Kind
	Type     string   // Atom
	Allowed  []string // Atom, optional discrete values
	Children []*Spec  // List and Or
	Repeat   byte     // List
	N        int      // List: repeat count or standalone index, -1 if absent

	source string
}

// String returns the grammar the spec was compiled from.
func (s *Spec) String() string {
	if s.source != "" {
		return s.source
	}
	return s.format()
}

func (s *Spec) format() string {
	switch s.Kind {
	case Atom:
		if len(s.Allowed) == 0 {
			return s.Type
		}
		return s.Type + ":(" + strings.Join(s.Allowed, ",") + ")"
	case Recurse:
		return "^"
	case Or:
		parts := make([]string, len(s.Children))
		for i, c := range s.Children {
			parts[i] = c.format()
		}
		return strings.Join(parts, "|")
	}
	parts := make([]string, len(s.Children))
	for i, c := range s.Children {
		parts[i] = c.format()
	}
	out := "[" + strings.Join(parts, ",") + "]"
	if s.Repeat != RepeatNone {
		out += string(s.Repeat)
		if s.N != noIndex {
			out += strconv.Itoa(s.N)
		}
	}
	return out
}

// IsList reports whether the outermost shape of the spec is a list.
func (s *Spec) IsList() bool {
	switch s.Kind {
	case List:
		return true
	case Or:
		for _, c := range s.Children {
			if c.IsList() {
				return true
			}
		}
	}
	return false
}

// TypeNames returns every atom type name used by the spec, in order of
// first appearance.
func (s *Spec) TypeNames() []string {
	seen := map[string]bool{}
	var out []string
	var walk func(*Spec)
	walk = func(n *Spec) {
		if n.Kind == Atom && !seen[n.Type] {
			seen[n.Type] = true
			out = append(out, n.Type)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(s)
	return out
}

// Error is a grammar compile error.
type Error struct {
	Grammar string
	Offset  int
	Msg     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("type spec %q: %s at offset %d", e.Grammar, e.Msg, e.Offset)
}

// Compile parses grammar into a Spec.
func Compile(grammar string) (*Spec, error) {
	if len(grammar) > maxGrammarLength {
		return nil, &Error{Grammar: grammar, Msg: "grammar too long"}
	}
	p := &compiler{src: grammar}
	p.skipSpace()
	spec, err := p.alt(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	}
	spec.source = grammar
	return spec, nil
}

// MustCompile is like Compile but panics on error. It is meant for grammars
// fixed at compile time.
func MustCompile(grammar string) *Spec {
	s, err := Compile(grammar)
	if err != nil {
		panic(err)
	}
	return s
}

type compiler struct {
	src string
	pos int
}

func (p *compiler) errorf(format string, args ...any) error {
	return &Error{Grammar: p.src, Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *compiler) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *compiler) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *compiler) alt(listDepth int) (*Spec, error) {
	first, err := p.item(listDepth)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != '|' {
		return first, nil
	}
	or := &Spec{Kind: Or, Children: []*Spec{first}, N: noIndex}
	for p.peek() == '|' {
		p.pos++
		p.skipSpace()
		next, err := p.item(listDepth)
		if err != nil {
			return nil, err
		}
		or.Children = append(or.Children, next)
		p.skipSpace()
	}
	return or, nil
}

func (p *compiler) item(listDepth int) (*Spec, error) {
	p.skipSpace()
	switch ch := p.peek(); {
	case ch == '^':
		if listDepth == 0 {
			return nil, p.errorf("recursion outside of a list")
		}
		p.pos++
		return &Spec{Kind: Recurse, N: noIndex}, nil
	case ch == '[':
		return p.list(listDepth)
	case isNameStart(ch):
		return p.atom()
	case ch == 0:
		return nil, p.errorf("unexpected end of grammar")
	default:
		return nil, p.errorf("unexpected %q", ch)
	}
}

func (p *compiler) list(listDepth int) (*Spec, error) {
	p.pos++ // [
	spec := &Spec{Kind: List, N: noIndex}
	p.skipSpace()
	if p.peek() != ']' {
		for {
			child, err := p.alt(listDepth + 1)
			if err != nil {
				return nil, err
			}
			spec.Children = append(spec.Children, child)
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			break
		}
	}
	if p.peek() != ']' {
		return nil, p.errorf("expected ']'")
	}
	p.pos++

	switch ch := p.peek(); ch {
	case RepeatPlus, RepeatStar, RepeatOne, RepeatOneLoose, RepeatStarLoose:
		spec.Repeat = ch
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
		if p.pos > start {
			n, err := strconv.Atoi(p.src[start:p.pos])
			if err != nil {
				return nil, p.errorf("invalid count")
			}
			spec.N = n
		}
	}

	if err := p.checkList(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

func (p *compiler) checkList(spec *Spec) error {
	if spec.Repeat != RepeatNone && len(spec.Children) == 0 {
		return p.errorf("repeated list has no children")
	}
	if spec.N == noIndex {
		return nil
	}
	switch spec.Repeat {
	case RepeatPlus:
		if spec.N == 0 || spec.N > len(spec.Children) {
			return p.errorf("repeat count %d out of range for %d children", spec.N, len(spec.Children))
		}
	default:
		if spec.N >= len(spec.Children) {
			return p.errorf("index %d out of range for %d children", spec.N, len(spec.Children))
		}
	}
	return nil
}

func (p *compiler) atom() (*Spec, error) {
	start := p.pos
	for p.pos < len(p.src) && isNameChar(p.src[p.pos]) {
		p.pos++
	}
	spec := &Spec{Kind: Atom, Type: p.src[start:p.pos], N: noIndex}
	if p.peek() != ':' {
		return spec, nil
	}
	p.pos++
	if p.peek() != '(' {
		return nil, p.errorf("expected '(' after ':'")
	}
	p.pos++
	end := strings.IndexByte(p.src[p.pos:], ')')
	if end < 0 {
		return nil, p.errorf("unterminated value restriction")
	}
	for _, v := range strings.Split(p.src[p.pos:p.pos+end], ",") {
		v = strings.Trim(strings.TrimSpace(v), `"`)
		if v == "" {
			return nil, p.errorf("empty value in restriction")
		}
		spec.Allowed = append(spec.Allowed, v)
	}
	p.pos += end + 1
	return spec, nil
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

func isNameStart(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || b == '_'
}

func isNameChar(b byte) bool {
	return isNameStart(b) || isDigit(b)
}
