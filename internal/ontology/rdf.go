// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ontology

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"

	"github.com/pdiddy/stanbol/internal/errs"
	"github.com/pdiddy/stanbol/internal/vocabulary"
)

// declarations maps the OWL type of a declaration triple to the resource kind.
var declarations = map[string]Kind{
	vocabulary.OWLClass:            KindClass,
	vocabulary.OWLNamedIndividual:  KindIndividual,
	vocabulary.OWLObjectProperty:   KindObjectProperty,
	vocabulary.OWLDatatypeProperty: KindDatatypeProperty,
}

func declarationType(k Kind) string {
	for t, kind := range declarations {
		if kind == k {
			return t
		}
	}
	return ""
}

// ImportTriples reads N-Triples (or N-Quads, graph labels are ignored) into
// the ontology at path. Declaration triples create resources; subjects
// typed with a declared class become individuals. Triples with blank
// nodes are skipped. Returns the number of triples stored.
func (s *Store) ImportTriples(ctx context.Context, path string, r io.Reader) (int, error) {
	var parsed []triple
	qr := nquads.NewReader(r, true)
	for {
		q, err := qr.ReadQuad()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, errs.Invalidf("parsing triples: %v", err)
		}
		t, ok := fromQuad(q)
		if !ok {
			continue
		}
		parsed = append(parsed, t)
	}

	stored := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.ontologyURI(ctx, tx, path); err != nil {
			return err
		}

		var rest []triple
		for _, t := range parsed {
			kind, isDecl := declarations[t.object]
			if t.predicate != vocabulary.RDFType || t.literal || !isDecl {
				if !(t.predicate == vocabulary.RDFType && t.object == vocabulary.OWLOntology) {
					rest = append(rest, t)
				}
				continue
			}
			if err := declare(ctx, s, tx, path, t.subject, kind); err != nil {
				return err
			}
			stored++
		}

		for _, t := range rest {
			if t.predicate == vocabulary.RDFType && !t.literal {
				kind, ok, err := s.kindOf(ctx, tx, path, t.object)
				if err != nil {
					return err
				}
				if ok && kind == KindClass {
					if err := declare(ctx, s, tx, path, t.subject, KindIndividual); err != nil {
						return err
					}
				}
			}
			if err := addTriple(ctx, tx, path, t); err != nil {
				return err
			}
			stored++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return stored, nil
}

// declare records iri as a resource of kind, tolerating a repeated
// declaration of the same kind.
func declare(ctx context.Context, s *Store, q querier, path, iri string, kind Kind) error {
	got, ok, err := s.kindOf(ctx, q, path, iri)
	if err != nil {
		return err
	}
	if ok {
		if got != kind {
			return errs.Conflictf("%s declared as both %s and %s", iri, got, kind)
		}
		return nil
	}
	if _, err := q.ExecContext(ctx,
		`INSERT INTO resources (ontology, iri, kind) VALUES (?, ?, ?)`, path, iri, string(kind),
	); err != nil {
		return fmt.Errorf("declaring %s: %w", iri, err)
	}
	return nil
}

func fromQuad(q quad.Quad) (triple, bool) {
	subj, ok := iriOf(q.Subject)
	if !ok {
		return triple{}, false
	}
	pred, ok := iriOf(q.Predicate)
	if !ok {
		return triple{}, false
	}
	t := triple{subject: subj, predicate: pred}

	switch o := q.Object.(type) {
	case quad.IRI:
		t.object = string(o.Full())
	case quad.String:
		t.object, t.literal = string(o), true
	case quad.LangString:
		t.object, t.lang, t.literal = string(o.Value), o.Lang, true
	case quad.TypedString:
		t.object, t.datatype, t.literal = string(o.Value), string(o.Type.Full()), true
	case quad.TypedStringer:
		ts := o.TypedString()
		t.object, t.datatype, t.literal = string(ts.Value), string(ts.Type.Full()), true
	default:
		return triple{}, false
	}
	return t, true
}

func iriOf(v quad.Value) (string, bool) {
	iri, ok := v.(quad.IRI)
	if !ok {
		return "", false
	}
	return string(iri.Full()), true
}

// ExportTriples writes the ontology at path as N-Triples: the ontology
// header, one declaration per resource, then every stored axiom. Returns
// the number of triples written.
func (s *Store) ExportTriples(ctx context.Context, path string, w io.Writer) (int, error) {
	uri, err := s.ontologyURI(ctx, s.db, path)
	if err != nil {
		return 0, err
	}

	quads := []quad.Quad{
		statement(uri, vocabulary.RDFType, quad.IRI(vocabulary.OWLOntology)),
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT iri, kind FROM resources WHERE ontology = ? ORDER BY kind, iri`, path)
	if err != nil {
		return 0, fmt.Errorf("listing resources: %w", err)
	}
	for rows.Next() {
		var iri, kind string
		if err := rows.Scan(&iri, &kind); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning resource: %w", err)
		}
		quads = append(quads, statement(iri, vocabulary.RDFType, quad.IRI(declarationType(Kind(kind)))))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("listing resources: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT subject, predicate, object, literal, datatype, lang FROM triples
		 WHERE ontology = ? ORDER BY subject, predicate, literal, object`, path)
	if err != nil {
		return 0, fmt.Errorf("listing axioms: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t triple
		if err := rows.Scan(&t.subject, &t.predicate, &t.object, &t.literal, &t.datatype, &t.lang); err != nil {
			return 0, fmt.Errorf("scanning axiom: %w", err)
		}
		quads = append(quads, statement(t.subject, t.predicate, objectValue(t)))
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("listing axioms: %w", err)
	}

	// The writer buffers; Close flushes without closing w.
	qw := nquads.NewWriter(w)
	for i, q := range quads {
		if err := qw.WriteQuad(q); err != nil {
			return i, fmt.Errorf("writing triples: %w", err)
		}
	}
	if err := qw.Close(); err != nil {
		return 0, fmt.Errorf("writing triples: %w", err)
	}
	return len(quads), nil
}

func statement(subject, predicate string, object quad.Value) quad.Quad {
	return quad.Quad{Subject: quad.IRI(subject), Predicate: quad.IRI(predicate), Object: object}
}

func objectValue(t triple) quad.Value {
	switch {
	case !t.literal:
		return quad.IRI(t.object)
	case t.lang != "":
		return quad.LangString{Value: quad.String(t.object), Lang: t.lang}
	case t.datatype != "":
		return quad.TypedString{Value: quad.String(t.object), Type: quad.IRI(t.datatype)}
	}
	return quad.String(t.object)
}
