// Package model defines the statement and term types shared by every
// triplecheck component.
//
// # Terms
//
//   - IRI: a resource identifier, Value holds the IRI without angle brackets
//   - Literal: Value holds the lexical form, with optional Lang or Datatype
//   - BlankNode: Value holds the node label without the "_:" prefix
//
// A term's canonical string value is its Value. Fingerprints and the
// lexicon consistency check compare canonical string values only; the
// language tag and datatype of a literal do not take part.
//
// # Statements
//
//	st := model.NewStatement(
//	    model.NewIRI("http://www.wikidata.org/entity/Q42"),
//	    model.NewIRI("http://schema.org/name"),
//	    model.NewLangLiteral("Douglas Adams", "en"),
//	)
package model
