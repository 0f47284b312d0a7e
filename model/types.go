package model

import (
	"fmt"
	"strings"
)

// TermKind discriminates the three RDF term shapes.
type TermKind uint8

const (
	// KindIRI is a resource identifier.
	KindIRI TermKind = 1
	// KindLiteral is a plain, language-tagged or typed literal.
	KindLiteral TermKind = 2
	// KindBlankNode is an anonymous node.
	KindBlankNode TermKind = 3
)

func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindLiteral:
		return "literal"
	case KindBlankNode:
		return "bnode"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the known term kinds.
func (k TermKind) Valid() bool {
	return k >= KindIRI && k <= KindBlankNode
}

// Term is a single RDF value.
type Term struct {
	Kind     TermKind
	Value    string
	Lang     string
	Datatype string
}

// NewIRI returns an IRI term.
func NewIRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

// NewLiteral returns a plain literal.
func NewLiteral(lexical string) Term {
	return Term{Kind: KindLiteral, Value: lexical}
}

// NewLangLiteral returns a language-tagged literal.
func NewLangLiteral(lexical, lang string) Term {
	return Term{Kind: KindLiteral, Value: lexical, Lang: strings.ToLower(lang)}
}

// NewTypedLiteral returns a literal with an explicit datatype IRI.
func NewTypedLiteral(lexical, datatype string) Term {
	return Term{Kind: KindLiteral, Value: lexical, Datatype: datatype}
}

// NewBlankNode returns a blank node term.
func NewBlankNode(label string) Term {
	return Term{Kind: KindBlankNode, Value: label}
}

// StringValue returns the canonical string value of the term.
func (t Term) StringValue() string {
	return t.Value
}

// String renders the term in N-Triples syntax.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlankNode:
		return "_:" + t.Value
	case KindLiteral:
		s := quoteLiteral(t.Value)
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	default:
		return fmt.Sprintf("?%q", t.Value)
	}
}

func quoteLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Statement is a subject-predicate-object fact.
type Statement struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewStatement builds a statement from its three terms.
func NewStatement(s, p, o Term) Statement {
	return Statement{Subject: s, Predicate: p, Object: o}
}

// String renders the statement as an N-Triples line without the trailing newline.
func (st Statement) String() string {
	return st.Subject.String() + " " + st.Predicate.String() + " " + st.Object.String() + " ."
}
