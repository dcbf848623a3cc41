// Package rdf provides the fact codec for the Semgraph ingestion pipeline:
// a minimal triple model with a tagged literal/URI-reference object variant,
// a line-oriented parser, and batch serialization with namespace prefixes.
package rdf

import "fmt"

// Object is the object position of a triple: either a Literal or a URIRef.
// Implementations are comparable value types, so triples built from the same
// inputs compare equal with ==.
type Object interface {
	// Serialize returns the N-Triples text form of the object.
	Serialize() string

	// Value returns the unescaped string form used for comparison and for
	// audit previous/new values.
	Value() string
}

// Literal is a string-valued object with an optional datatype IRI.
// The value is held unescaped; escaping is applied on serialization.
type Literal struct {
	Val      string
	Datatype string
}

// Serialize returns the quoted, escaped literal, with a ^^<datatype> suffix
// when a datatype is set.
func (l Literal) Serialize() string {
	if l.Datatype != "" {
		return `"` + EscapeLiteral(l.Val) + `"^^<` + l.Datatype + `>`
	}
	return `"` + EscapeLiteral(l.Val) + `"`
}

// Value returns the unescaped literal value.
func (l Literal) Value() string { return l.Val }

// URIRef is an object referencing another resource by IRI.
type URIRef struct {
	IRI string
}

// Serialize returns the angle-bracketed IRI.
func (u URIRef) Serialize() string { return "<" + u.IRI + ">" }

// Value returns the IRI.
func (u URIRef) Value() string { return u.IRI }

// Triple is one (subject, predicate, object) fact. Subject and predicate are
// IRIs. Triples are immutable once constructed; equality is structural.
type Triple struct {
	Subject   string
	Predicate string
	Object    Object
}

// Line returns the single-line N-Triples form, terminated with " .".
func (t Triple) Line() string {
	return fmt.Sprintf("<%s> <%s> %s .", t.Subject, t.Predicate, t.Object.Serialize())
}

// NewLiteral builds a triple with a plain literal object.
func NewLiteral(subject, predicate, value string) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: Literal{Val: value}}
}

// NewTypedLiteral builds a triple with a datatyped literal object.
func NewTypedLiteral(subject, predicate, value, datatype string) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: Literal{Val: value, Datatype: datatype}}
}

// NewRef builds a triple whose object references another resource.
func NewRef(subject, predicate, iri string) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: URIRef{IRI: iri}}
}
