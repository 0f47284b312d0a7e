package ntriples

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hupe1980/triplecheck/model"
)

// SyntaxError describes a malformed line.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("ntriples: col %d: %s", e.Col, e.Msg)
	}
	return fmt.Sprintf("ntriples: line %d col %d: %s", e.Line, e.Col, e.Msg)
}

// ParseLine parses one N-Triples line. It reports ok=false for blank and
// comment-only lines.
func ParseLine(line string) (st model.Statement, ok bool, err error) {
	p := parser{s: line}
	p.skipSpace()
	if p.eof() || p.peek() == '#' {
		return model.Statement{}, false, nil
	}

	subj, err := p.subject()
	if err != nil {
		return model.Statement{}, false, err
	}
	p.skipSpace()
	pred, err := p.iri()
	if err != nil {
		return model.Statement{}, false, err
	}
	p.skipSpace()
	obj, err := p.object()
	if err != nil {
		return model.Statement{}, false, err
	}
	p.skipSpace()
	if p.eof() || p.peek() != '.' {
		return model.Statement{}, false, p.errorf("expected '.'")
	}
	p.pos++
	p.skipSpace()
	if !p.eof() && p.peek() != '#' {
		return model.Statement{}, false, p.errorf("unexpected %q after '.'", p.s[p.pos:])
	}

	return model.NewStatement(subj, pred, obj), true, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Col: p.pos + 1, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool { return p.pos >= len(p.s) }

func (p *parser) peek() byte { return p.s[p.pos] }

func (p *parser) skipSpace() {
	for !p.eof() && (p.peek() == ' ' || p.peek() == '\t') {
		p.pos++
	}
}

func (p *parser) subject() (model.Term, error) {
	if p.eof() {
		return model.Term{}, p.errorf("expected subject")
	}
	switch {
	case p.peek() == '<':
		return p.iri()
	case strings.HasPrefix(p.s[p.pos:], "_:"):
		return p.blankNode()
	default:
		return model.Term{}, p.errorf("subject must be an IRI or blank node")
	}
}

func (p *parser) object() (model.Term, error) {
	if p.eof() {
		return model.Term{}, p.errorf("expected object")
	}
	switch {
	case p.peek() == '<':
		return p.iri()
	case p.peek() == '"':
		return p.literal()
	case strings.HasPrefix(p.s[p.pos:], "_:"):
		return p.blankNode()
	default:
		return model.Term{}, p.errorf("object must be an IRI, blank node or literal")
	}
}

func (p *parser) iri() (model.Term, error) {
	v, err := p.iriRef()
	if err != nil {
		return model.Term{}, err
	}
	return model.NewIRI(v), nil
}

func (p *parser) iriRef() (string, error) {
	if p.eof() || p.peek() != '<' {
		return "", p.errorf("expected '<'")
	}
	p.pos++

	var b strings.Builder
	for !p.eof() {
		c := p.peek()
		switch c {
		case '>':
			p.pos++
			return b.String(), nil
		case '\\':
			r, err := p.unicodeEscape()
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
		case ' ', '\t', '<', '"', '{', '}', '|', '^', '`':
			return "", p.errorf("invalid character %q in IRI", c)
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated IRI")
}

// unicodeEscape decodes \uXXXX or \UXXXXXXXX at the current position.
func (p *parser) unicodeEscape() (rune, error) {
	if p.pos+1 >= len(p.s) {
		return 0, p.errorf("truncated escape")
	}
	var n int
	switch p.s[p.pos+1] {
	case 'u':
		n = 4
	case 'U':
		n = 8
	default:
		return 0, p.errorf("invalid escape \\%c", p.s[p.pos+1])
	}
	start := p.pos + 2
	if start+n > len(p.s) {
		return 0, p.errorf("truncated escape")
	}
	v, err := strconv.ParseUint(p.s[start:start+n], 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, p.errorf("invalid code point %q", p.s[start:start+n])
	}
	p.pos = start + n
	return rune(v), nil
}

func (p *parser) blankNode() (model.Term, error) {
	p.pos += 2
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if c == ' ' || c == '\t' || c == '<' || c == '"' || c == '#' {
			break
		}
		p.pos++
	}
	// A label may contain '.' but not end with one.
	for p.pos > start && p.s[p.pos-1] == '.' {
		p.pos--
	}
	if p.pos == start {
		return model.Term{}, p.errorf("empty blank node label")
	}
	return model.NewBlankNode(p.s[start:p.pos]), nil
}

func (p *parser) literal() (model.Term, error) {
	p.pos++

	var b strings.Builder
	closed := false
	for !p.eof() && !closed {
		c := p.peek()
		switch c {
		case '"':
			p.pos++
			closed = true
		case '\\':
			if p.pos+1 >= len(p.s) {
				return model.Term{}, p.errorf("truncated escape")
			}
			switch e := p.s[p.pos+1]; e {
			case 't':
				b.WriteByte('\t')
			case 'b':
				b.WriteByte('\b')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 'f':
				b.WriteByte('\f')
			case '"', '\'', '\\':
				b.WriteByte(e)
			case 'u', 'U':
				r, err := p.unicodeEscape()
				if err != nil {
					return model.Term{}, err
				}
				b.WriteRune(r)
				continue
			default:
				return model.Term{}, p.errorf("invalid escape \\%c", e)
			}
			p.pos += 2
		case '\n', '\r':
			return model.Term{}, p.errorf("line break in literal")
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	if !closed {
		return model.Term{}, p.errorf("unterminated literal")
	}
	lexical := b.String()

	if p.eof() {
		return model.NewLiteral(lexical), nil
	}
	switch {
	case p.peek() == '@':
		p.pos++
		start := p.pos
		for !p.eof() && isLangChar(p.peek(), p.pos == start) {
			p.pos++
		}
		tag := p.s[start:p.pos]
		if tag == "" || strings.HasSuffix(tag, "-") {
			return model.Term{}, p.errorf("invalid language tag %q", tag)
		}
		return model.NewLangLiteral(lexical, tag), nil
	case strings.HasPrefix(p.s[p.pos:], "^^"):
		p.pos += 2
		dt, err := p.iriRef()
		if err != nil {
			return model.Term{}, err
		}
		return model.NewTypedLiteral(lexical, dt), nil
	default:
		return model.NewLiteral(lexical), nil
	}
}

func isLangChar(c byte, first bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case first:
		return false
	default:
		return c == '-' || (c >= '0' && c <= '9')
	}
}
