package syntax

import (
	"fmt"
	"strconv"
	"strings"
)

// maxExpansion bounds the number of scalars a single range token may
// expand to.
const maxExpansion = 1 << 16

// Error is a fatal lexical or syntactic error with its source position.
type Error struct {
	Pos Pos
	Msg string
}

func (e *Error) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// Scanner performs lexical analysis on RPL source.
type Scanner struct {
	filename string
	buf      []byte

	offs int    // byte offset of the next unread byte
	line uint32 // position of buf[offs]
	col  uint32
}

// NewScanner creates a Scanner over src.
func NewScanner(filename string, src []byte) *Scanner {
	return &Scanner{filename: filename, buf: src, line: 1, col: 1}
}

// Tokenize scans the whole of src and returns its tokens, terminated by an
// EOF token.
func Tokenize(filename string, src []byte) ([]Token, error) {
	s := NewScanner(filename, src)
	var toks []Token
	for {
		tok, err := s.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, nil
		}
	}
}

// Next scans and returns the next token.
func (s *Scanner) Next() (Token, error) {
	for {
		s.skipSpace()
		if s.offs >= len(s.buf) {
			return Token{Kind: EOF, Pos: s.pos()}, nil
		}
		if s.buf[s.offs] != '#' {
			break
		}
		for s.offs < len(s.buf) && s.buf[s.offs] != '\n' {
			s.advance(1)
		}
	}

	start := s.pos()
	ch := s.buf[s.offs]
	switch {
	case ch == '"':
		return s.scanString(start)
	case ch == '@':
		return s.scanReference(start)
	case strings.IndexByte("{}[],", ch) >= 0:
		s.advance(1)
		return Token{Kind: Flow, Pos: start, Text: string(ch)}, nil
	case ch == '-' && isDigit(s.at(s.offs+1)):
		if tok, ok := s.scanNegative(start); ok {
			return tok, nil
		}
	}

	tok, ok, err := s.scanChain(start)
	if err != nil {
		return Token{}, err
	}
	if ok {
		return tok, nil
	}
	return s.scanWord(start)
}

func (s *Scanner) pos() Pos {
	return NewPos(s.filename, s.line, s.col)
}

func (s *Scanner) errorf(pos Pos, format string, args ...any) error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// at returns the byte at offset i, or 0 past the end of input.
func (s *Scanner) at(i int) byte {
	if i < 0 || i >= len(s.buf) {
		return 0
	}
	return s.buf[i]
}

// advance consumes n bytes, keeping line and column current.
func (s *Scanner) advance(n int) {
	for ; n > 0 && s.offs < len(s.buf); n-- {
		b := s.buf[s.offs]
		s.offs++
		switch {
		case b == '\n':
			s.line++
			s.col = 1
		case b&0xC0 != 0x80:
			s.col++
		}
	}
}

func (s *Scanner) skipSpace() {
	for s.offs < len(s.buf) && isSpace(s.buf[s.offs]) {
		s.advance(1)
	}
}

// scanString scans a double quoted string and decodes its escapes.
func (s *Scanner) scanString(start Pos) (Token, error) {
	s.advance(1)
	var sb strings.Builder
	for {
		if s.offs >= len(s.buf) {
			return Token{}, s.errorf(start, "unterminated string")
		}
		ch := s.buf[s.offs]
		switch ch {
		case '"':
			s.advance(1)
			return Token{Kind: String, Pos: start, Text: sb.String()}, nil
		case '\\':
			escPos := s.pos()
			s.advance(1)
			esc := s.at(s.offs)
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '0':
				sb.WriteByte(0)
			case '\\', '"':
				sb.WriteByte(esc)
			case 'x':
				hex := string(s.buf[min(s.offs+1, len(s.buf)):min(s.offs+3, len(s.buf))])
				v, err := strconv.ParseUint(hex, 16, 8)
				if err != nil || len(hex) != 2 {
					return Token{}, s.errorf(escPos, "invalid hex escape in string")
				}
				sb.WriteByte(byte(v))
				s.advance(2)
			default:
				return Token{}, s.errorf(escPos, "unknown escape sequence \\%c", esc)
			}
			s.advance(1)
		default:
			sb.WriteByte(ch)
			s.advance(1)
		}
	}
}

// scanReference scans `@name(.key)*([n])*`. Validation of the path shape is
// left to the reference parser.
func (s *Scanner) scanReference(start Pos) (Token, error) {
	s.advance(1)
	i := s.offs
	j := scanName(s.buf, i)
	if j == i {
		return Token{}, s.errorf(start, "empty reference")
	}
	for s.at(j) == '.' {
		k := scanName(s.buf, j+1)
		if k == j+1 {
			return Token{}, s.errorf(start, "empty key in reference")
		}
		j = k
	}
	for s.at(j) == '[' {
		k := j + 1
		for isDigit(s.at(k)) {
			k++
		}
		if k == j+1 || s.at(k) != ']' {
			return Token{}, s.errorf(start, "malformed index in reference")
		}
		j = k + 1
	}
	text := string(s.buf[i:j])
	s.advance(j - s.offs)
	return Token{Kind: Reference, Pos: start, Text: text}, nil
}

// scanNegative scans a lone negative decimal number such as -12.
func (s *Scanner) scanNegative(start Pos) (Token, bool) {
	j := s.offs + 1
	for isDigit(s.at(j)) {
		j++
	}
	if isWordChar(s.at(j)) || s.at(j) == ':' {
		return Token{}, false
	}
	v, err := strconv.ParseInt(string(s.buf[s.offs:j]), 10, 64)
	if err != nil {
		return Token{}, false
	}
	s.advance(j - s.offs)
	return Token{Kind: Number, Pos: start, Text: strconv.FormatInt(v, 10), Scalars: []Scalar{{Kind: ScalarNumber, Int: v}}}, true
}

// scanChain tries to scan a number or range chain at the current offset.
// It reports ok == false without consuming input when the text is not a
// chain, so the caller can fall back to a key or literal.
func (s *Scanner) scanChain(start Pos) (Token, bool, error) {
	i := s.offs
	var out []Scalar
	chain := false
	for {
		first, n, ok := s.element(i)
		if !ok {
			return Token{}, false, nil
		}
		i += n
		switch s.at(i) {
		case '-':
			last, m, ok := s.element(i + 1)
			if !ok || (first.Kind == ScalarLetter) != (last.Kind == ScalarLetter) {
				return Token{}, false, nil
			}
			i += 1 + m
			span, err := expandSpan(first, last)
			if err != nil {
				return Token{}, false, s.errorf(start, "%v", err)
			}
			out = append(out, span...)
			chain = true
		case '*':
			count, m, ok := s.element(i + 1)
			if !ok || count.Kind == ScalarLetter {
				return Token{}, false, nil
			}
			if count.Int > maxExpansion || len(out)+int(count.Int) > maxExpansion {
				return Token{}, false, s.errorf(start, "repetition count %d too large", count.Int)
			}
			i += 1 + m
			for k := int64(0); k < count.Int; k++ {
				out = append(out, first)
			}
			chain = true
		default:
			out = append(out, first)
		}
		if s.at(i) == ':' {
			if _, _, ok := s.element(i + 1); ok {
				i++
				chain = true
				continue
			}
		}
		break
	}
	if isWordChar(s.at(i)) || s.at(i) == ':' {
		return Token{}, false, nil
	}
	if !chain && out[0].Kind == ScalarLetter {
		return Token{}, false, nil
	}
	text := string(s.buf[s.offs:i])
	s.advance(i - s.offs)
	return Token{Kind: Number, Pos: start, Text: text, Scalars: out, Chain: chain}, true, nil
}

// element scans one chain element at offset i and returns it together with
// its length in bytes.
func (s *Scanner) element(i int) (Scalar, int, bool) {
	ch := s.at(i)
	switch {
	case ch == '$':
		j := i + 1
		for isHexDigit(s.at(j)) {
			j++
		}
		if j == i+1 {
			return Scalar{}, 0, false
		}
		v, err := strconv.ParseInt(string(s.buf[i+1:j]), 16, 64)
		if err != nil {
			return Scalar{}, 0, false
		}
		return Scalar{Kind: ScalarHex, Int: v}, j - i, true
	case isDigit(ch):
		j := i
		for isDigit(s.at(j)) {
			j++
		}
		v, err := strconv.ParseInt(string(s.buf[i:j]), 10, 64)
		if err != nil {
			return Scalar{}, 0, false
		}
		return Scalar{Kind: ScalarNumber, Int: v}, j - i, true
	case isLetter(ch):
		next := s.at(i + 1)
		if isLetter(next) || isDigit(next) || next == '_' {
			return Scalar{}, 0, false
		}
		return Scalar{Kind: ScalarLetter, Char: rune(ch)}, 1, true
	}
	return Scalar{}, 0, false
}

// expandSpan expands an inclusive ascending or descending range.
func expandSpan(first, last Scalar) ([]Scalar, error) {
	if first.Kind == ScalarLetter {
		step := rune(1)
		if last.Char < first.Char {
			step = -1
		}
		var out []Scalar
		for c := first.Char; ; c += step {
			out = append(out, Scalar{Kind: ScalarLetter, Char: c})
			if c == last.Char {
				return out, nil
			}
		}
	}

	kind := first.Kind
	if last.Kind != kind {
		kind = ScalarNumber
	}
	lo, hi := first.Int, last.Int
	step := int64(1)
	if hi < lo {
		step = -1
	}
	if n := (hi-lo)*step + 1; n > maxExpansion {
		return nil, fmt.Errorf("range %d-%d too large", lo, hi)
	}
	var out []Scalar
	for v := lo; ; v += step {
		out = append(out, Scalar{Kind: kind, Int: v})
		if v == hi {
			return out, nil
		}
	}
}

// scanWord scans a key (`name:`) or a bare literal.
func (s *Scanner) scanWord(start Pos) (Token, error) {
	j := s.offs
	for j < len(s.buf) && isWordChar(s.buf[j]) {
		j++
	}
	if j == s.offs {
		return Token{}, s.errorf(start, "unexpected character %q", s.buf[s.offs])
	}
	word := string(s.buf[s.offs:j])
	if s.at(j) == ':' && isKeyName(word) {
		s.advance(j + 1 - s.offs)
		return Token{Kind: Key, Pos: start, Text: word}, nil
	}
	s.advance(j - s.offs)
	return Token{Kind: Literal, Pos: start, Text: word}, nil
}

// scanName returns the end offset of the name starting at i.
func scanName(buf []byte, i int) int {
	for i < len(buf) && isNameChar(buf[i]) {
		i++
	}
	return i
}

func isKeyName(word string) bool {
	for i := 0; i < len(word); i++ {
		if !isNameChar(word[i]) {
			return false
		}
	}
	return word != ""
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || 'a' <= b && b <= 'f' || 'A' <= b && b <= 'F'
}

func isLetter(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

func isNameChar(b byte) bool {
	return isLetter(b) || isDigit(b) || b == '_' || b == '-'
}

// isWordChar reports whether b may appear in a bare literal.
func isWordChar(b byte) bool {
	if b == 0 || isSpace(b) {
		return false
	}
	return strings.IndexByte(`[]{}:,"#@`, b) < 0
}
