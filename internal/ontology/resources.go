// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ontology

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"

	"github.com/pdiddy/stanbol/internal/errs"
	"github.com/pdiddy/stanbol/internal/vocabulary"
	"github.com/pdiddy/stanbol/pkg/types"
)

// PersistenceStore is the ontology storage used by the REST layer.
// Resource arguments are absolute IRIs, registered CURIEs or local names
// resolved against the ontology uri.
type PersistenceStore interface {
	ListOntologies(ctx context.Context) ([]OntologyMetaInformation, error)
	CreateOntology(ctx context.Context, path, uri, description string) (OntologyMetaInformation, error)
	GetOntology(ctx context.Context, path string) (OntologyMetaInformation, error)
	DeleteOntology(ctx context.Context, path string) error
	ClearAll(ctx context.Context) error

	ImportTriples(ctx context.Context, path string, r io.Reader) (int, error)
	ExportTriples(ctx context.Context, path string, w io.Writer) (int, error)

	ListClasses(ctx context.Context, path string) (ResourceList, error)
	CreateClass(ctx context.Context, path, class string) (ResourceMetaInformation, error)
	GetClassContext(ctx context.Context, path, class string) (ClassContext, error)
	DeleteClass(ctx context.Context, path, class string) error
	AddSuperClass(ctx context.Context, path, class, super string) error
	RemoveSuperClass(ctx context.Context, path, class, super string) error
	AddEquivalentClass(ctx context.Context, path, class, other string) error
	RemoveEquivalentClass(ctx context.Context, path, class, other string) error
	AddDisjointClass(ctx context.Context, path, class, other string) error
	RemoveDisjointClass(ctx context.Context, path, class, other string) error
	Subsumers(ctx context.Context, path, class string) ([]string, error)

	ListIndividuals(ctx context.Context, path string) (ResourceList, error)
	CreateIndividual(ctx context.Context, path, individual, class string) (ResourceMetaInformation, error)
	GetIndividualContext(ctx context.Context, path, individual string) (IndividualContext, error)
	DeleteIndividual(ctx context.Context, path, individual string) error
	AddType(ctx context.Context, path, individual, class string) error
	RemoveType(ctx context.Context, path, individual, class string) error
	AssertObjectProperty(ctx context.Context, path, individual, property, object string) error
	AssertDataProperty(ctx context.Context, path, individual, property string, value Literal) error
	RemovePropertyAssertion(ctx context.Context, path, individual, property string, value Literal) error

	ListProperties(ctx context.Context, path string, kind Kind) (ResourceList, error)
	CreateProperty(ctx context.Context, path string, kind Kind, property string) (ResourceMetaInformation, error)
	GetPropertyContext(ctx context.Context, path string, kind Kind, property string) (PropertyContext, error)
	DeleteProperty(ctx context.Context, path string, kind Kind, property string) error
	AddDomain(ctx context.Context, path string, kind Kind, property, class string) error
	RemoveDomain(ctx context.Context, path string, kind Kind, property, class string) error
	AddRange(ctx context.Context, path string, kind Kind, property, rng string) error
	RemoveRange(ctx context.Context, path string, kind Kind, property, rng string) error
	AddSuperProperty(ctx context.Context, path string, kind Kind, property, super string) error
	RemoveSuperProperty(ctx context.Context, path string, kind Kind, property, super string) error
	SetCharacteristics(ctx context.Context, path string, kind Kind, property string, c Characteristics) error
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// relate resolves both ends to declared resources of the given kinds and
// adds (or removes) subject predicate object. Symmetric relations are
// mirrored.
func (s *Store) relate(ctx context.Context, path, from string, fromKind Kind, predicate, to string, toKind Kind, symmetric, add bool) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		subj, err := s.lookup(ctx, tx, path, from, fromKind)
		if err != nil {
			return err
		}
		obj, err := s.lookup(ctx, tx, path, to, toKind)
		if err != nil {
			return err
		}
		if subj == obj {
			return errs.Invalidf("%s cannot be related to itself by %s", subj, vocabulary.Shorten(predicate))
		}
		forward := triple{subject: subj, predicate: predicate, object: obj}
		backward := triple{subject: obj, predicate: predicate, object: subj}
		if add {
			if err := addTriple(ctx, tx, path, forward); err != nil {
				return err
			}
			if symmetric {
				return addTriple(ctx, tx, path, backward)
			}
			return nil
		}

		err = removeTriple(ctx, tx, path, forward)
		if !symmetric {
			return err
		}
		if err != nil && !errs.IsNotFound(err) {
			return err
		}
		if errBack := removeTriple(ctx, tx, path, backward); errBack == nil {
			return nil
		} else if !errs.IsNotFound(errBack) {
			return errBack
		}
		return err
	})
}

// --- classes ---

// ListClasses returns the classes declared in the ontology at path.
func (s *Store) ListClasses(ctx context.Context, path string) (ResourceList, error) {
	return s.listResources(ctx, path, KindClass)
}

// CreateClass declares a new class.
func (s *Store) CreateClass(ctx context.Context, path, class string) (ResourceMetaInformation, error) {
	return s.createResource(ctx, path, class, KindClass)
}

// GetClassContext returns class with its direct super, sub, equivalent and
// disjoint classes and its inferred super classes.
func (s *Store) GetClassContext(ctx context.Context, path, class string) (ClassContext, error) {
	iri, err := s.lookup(ctx, s.db, path, class, KindClass)
	if err != nil {
		return ClassContext{}, err
	}
	cc := ClassContext{Class: s.meta(path, KindClass, iri)}
	if cc.SuperClasses, err = objects(ctx, s.db, path, iri, vocabulary.RDFSSubClassOf); err != nil {
		return cc, err
	}
	if cc.SubClasses, err = subjects(ctx, s.db, path, vocabulary.RDFSSubClassOf, iri); err != nil {
		return cc, err
	}
	if cc.EquivalentClasses, err = objects(ctx, s.db, path, iri, vocabulary.OWLEquivalentClass); err != nil {
		return cc, err
	}
	if cc.DisjointClasses, err = objects(ctx, s.db, path, iri, vocabulary.OWLDisjointWith); err != nil {
		return cc, err
	}
	if cc.AllSuperClasses, err = closure(ctx, s.db, path, iri, vocabulary.RDFSSubClassOf, true); err != nil {
		return cc, err
	}
	return cc, nil
}

// DeleteClass removes class and every axiom mentioning it.
func (s *Store) DeleteClass(ctx context.Context, path, class string) error {
	return s.deleteResource(ctx, path, class, KindClass)
}

// AddSuperClass states class rdfs:subClassOf super.
func (s *Store) AddSuperClass(ctx context.Context, path, class, super string) error {
	return s.relate(ctx, path, class, KindClass, vocabulary.RDFSSubClassOf, super, KindClass, false, true)
}

// RemoveSuperClass retracts class rdfs:subClassOf super.
func (s *Store) RemoveSuperClass(ctx context.Context, path, class, super string) error {
	return s.relate(ctx, path, class, KindClass, vocabulary.RDFSSubClassOf, super, KindClass, false, false)
}

// AddEquivalentClass states owl:equivalentClass in both directions.
func (s *Store) AddEquivalentClass(ctx context.Context, path, class, other string) error {
	return s.relate(ctx, path, class, KindClass, vocabulary.OWLEquivalentClass, other, KindClass, true, true)
}

// RemoveEquivalentClass retracts owl:equivalentClass in both directions.
func (s *Store) RemoveEquivalentClass(ctx context.Context, path, class, other string) error {
	return s.relate(ctx, path, class, KindClass, vocabulary.OWLEquivalentClass, other, KindClass, true, false)
}

// AddDisjointClass states owl:disjointWith in both directions.
func (s *Store) AddDisjointClass(ctx context.Context, path, class, other string) error {
	return s.relate(ctx, path, class, KindClass, vocabulary.OWLDisjointWith, other, KindClass, true, true)
}

// RemoveDisjointClass retracts owl:disjointWith in both directions.
func (s *Store) RemoveDisjointClass(ctx context.Context, path, class, other string) error {
	return s.relate(ctx, path, class, KindClass, vocabulary.OWLDisjointWith, other, KindClass, true, false)
}

// Subsumers returns every class that transitively subsumes class through
// rdfs:subClassOf or owl:equivalentClass. Cycles are tolerated.
func (s *Store) Subsumers(ctx context.Context, path, class string) ([]string, error) {
	iri, err := s.lookup(ctx, s.db, path, class, KindClass)
	if err != nil {
		return nil, err
	}
	return closure(ctx, s.db, path, iri, vocabulary.RDFSSubClassOf, true)
}

// --- individuals ---

// ListIndividuals returns the individuals declared in the ontology at path.
func (s *Store) ListIndividuals(ctx context.Context, path string) (ResourceList, error) {
	return s.listResources(ctx, path, KindIndividual)
}

// CreateIndividual declares individual as an instance of class. The class
// must already exist.
func (s *Store) CreateIndividual(ctx context.Context, path, individual, class string) (ResourceMetaInformation, error) {
	var meta ResourceMetaInformation
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		classIRI, err := s.lookup(ctx, tx, path, class, KindClass)
		if err != nil {
			return err
		}
		uri, err := s.ontologyURI(ctx, tx, path)
		if err != nil {
			return err
		}
		iri, err := resolve(uri, individual)
		if err != nil {
			return err
		}
		if got, ok, err := s.kindOf(ctx, tx, path, iri); err != nil {
			return err
		} else if ok {
			return errs.Conflictf("%s already declared as %s in ontology %s", iri, got, path)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO resources (ontology, iri, kind) VALUES (?, ?, ?)`, path, iri, string(KindIndividual),
		); err != nil {
			return fmt.Errorf("declaring %s: %w", iri, err)
		}
		meta = s.meta(path, KindIndividual, iri)
		return addTriple(ctx, tx, path, triple{subject: iri, predicate: vocabulary.RDFType, object: classIRI})
	})
	return meta, err
}

// GetIndividualContext returns individual with its asserted and inferred
// classes and its property values grouped by property.
func (s *Store) GetIndividualContext(ctx context.Context, path, individual string) (IndividualContext, error) {
	iri, err := s.lookup(ctx, s.db, path, individual, KindIndividual)
	if err != nil {
		return IndividualContext{}, err
	}
	ic := IndividualContext{Individual: s.meta(path, KindIndividual, iri)}
	if ic.ContainerClasses, err = objects(ctx, s.db, path, iri, vocabulary.RDFType); err != nil {
		return ic, err
	}

	direct := make(map[string]bool, len(ic.ContainerClasses))
	for _, c := range ic.ContainerClasses {
		direct[c] = true
	}
	inferred := map[string]bool{}
	for _, c := range ic.ContainerClasses {
		supers, err := closure(ctx, s.db, path, c, vocabulary.RDFSSubClassOf, true)
		if err != nil {
			return ic, err
		}
		for _, sc := range supers {
			if !direct[sc] {
				inferred[sc] = true
			}
		}
	}
	ic.InferredClasses = sortedKeys(inferred)

	if ic.PropertyAssertions, err = s.assertions(ctx, path, iri); err != nil {
		return ic, err
	}
	return ic, nil
}

func (s *Store) assertions(ctx context.Context, path, iri string) ([]PropertyAssertion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT predicate, object, literal, datatype, lang FROM triples
		 WHERE ontology = ? AND subject = ? AND predicate != ?
		 ORDER BY predicate, literal, object`,
		path, iri, vocabulary.RDFType)
	if err != nil {
		return nil, fmt.Errorf("querying assertions of %s: %w", iri, err)
	}
	defer rows.Close()

	out := []PropertyAssertion{}
	for rows.Next() {
		var t triple
		if err := rows.Scan(&t.predicate, &t.object, &t.literal, &t.datatype, &t.lang); err != nil {
			return nil, fmt.Errorf("scanning assertion: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].Property != t.predicate {
			out = append(out, PropertyAssertion{Property: t.predicate})
		}
		pa := &out[len(out)-1]
		if t.literal {
			pa.Literals = append(pa.Literals, Literal{Value: t.object, Datatype: t.datatype, Lang: t.lang})
		} else {
			pa.Objects = append(pa.Objects, t.object)
		}
	}
	return out, rows.Err()
}

// DeleteIndividual removes individual and every axiom mentioning it.
func (s *Store) DeleteIndividual(ctx context.Context, path, individual string) error {
	return s.deleteResource(ctx, path, individual, KindIndividual)
}

// AddType states individual rdf:type class.
func (s *Store) AddType(ctx context.Context, path, individual, class string) error {
	return s.relate(ctx, path, individual, KindIndividual, vocabulary.RDFType, class, KindClass, false, true)
}

// RemoveType retracts individual rdf:type class.
func (s *Store) RemoveType(ctx context.Context, path, individual, class string) error {
	return s.relate(ctx, path, individual, KindIndividual, vocabulary.RDFType, class, KindClass, false, false)
}

// AssertObjectProperty states individual property object, where object is
// another individual of the ontology.
func (s *Store) AssertObjectProperty(ctx context.Context, path, individual, property, object string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		t, err := s.objectAssertion(ctx, tx, path, individual, property, object)
		if err != nil {
			return err
		}
		return addTriple(ctx, tx, path, t)
	})
}

// AssertDataProperty states individual property value.
func (s *Store) AssertDataProperty(ctx context.Context, path, individual, property string, value Literal) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		t, err := s.dataAssertion(ctx, tx, path, individual, property, value)
		if err != nil {
			return err
		}
		return addTriple(ctx, tx, path, t)
	})
}

// RemovePropertyAssertion retracts one assertion. For object properties
// value.Value names the object individual.
func (s *Store) RemovePropertyAssertion(ctx context.Context, path, individual, property string, value Literal) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		uri, err := s.ontologyURI(ctx, tx, path)
		if err != nil {
			return err
		}
		propIRI, err := resolve(uri, property)
		if err != nil {
			return err
		}
		kind, ok, err := s.kindOf(ctx, tx, path, propIRI)
		if err != nil {
			return err
		}
		if !ok {
			return errs.NotFoundf("property %s not found in ontology %s", propIRI, path)
		}

		var t triple
		switch kind {
		case KindObjectProperty:
			t, err = s.objectAssertion(ctx, tx, path, individual, property, value.Value)
		case KindDatatypeProperty:
			t, err = s.dataAssertion(ctx, tx, path, individual, property, value)
		default:
			return errs.Invalidf("%s is a %s, not a property", propIRI, kind)
		}
		if err != nil {
			return err
		}
		return removeTriple(ctx, tx, path, t)
	})
}

func (s *Store) objectAssertion(ctx context.Context, q querier, path, individual, property, object string) (triple, error) {
	subj, err := s.lookup(ctx, q, path, individual, KindIndividual)
	if err != nil {
		return triple{}, err
	}
	pred, err := s.lookup(ctx, q, path, property, KindObjectProperty)
	if err != nil {
		return triple{}, err
	}
	obj, err := s.lookup(ctx, q, path, object, KindIndividual)
	if err != nil {
		return triple{}, err
	}
	return triple{subject: subj, predicate: pred, object: obj}, nil
}

func (s *Store) dataAssertion(ctx context.Context, q querier, path, individual, property string, value Literal) (triple, error) {
	subj, err := s.lookup(ctx, q, path, individual, KindIndividual)
	if err != nil {
		return triple{}, err
	}
	pred, err := s.lookup(ctx, q, path, property, KindDatatypeProperty)
	if err != nil {
		return triple{}, err
	}
	lit, err := normalizeLiteral(value)
	if err != nil {
		return triple{}, err
	}
	return triple{subject: subj, predicate: pred, object: lit.Value, literal: true, datatype: lit.Datatype, lang: lit.Lang}, nil
}

// normalizeLiteral expands the datatype and checks the lexical form of
// the xsd types the yard knows about.
func normalizeLiteral(l Literal) (Literal, error) {
	if l.Datatype != "" && l.Lang != "" {
		return l, errs.Invalidf("literal %q has both datatype and language", l.Value)
	}
	if l.Datatype == "" {
		return l, nil
	}
	l.Datatype = vocabulary.Expand(l.Datatype)
	if dt := types.DataType(vocabulary.Shorten(l.Datatype)); dt.Valid() {
		if err := (types.Value{Type: dt, Value: l.Value}).Validate(); err != nil {
			return l, errs.Invalidf("literal %q: %v", l.Value, err)
		}
	}
	return l, nil
}

// --- properties ---

func checkPropertyKind(kind Kind) error {
	if !kind.IsProperty() {
		return errs.Invalidf("%q is not a property kind", kind)
	}
	return nil
}

// ListProperties returns the properties of kind declared at path.
func (s *Store) ListProperties(ctx context.Context, path string, kind Kind) (ResourceList, error) {
	if err := checkPropertyKind(kind); err != nil {
		return ResourceList{}, err
	}
	return s.listResources(ctx, path, kind)
}

// CreateProperty declares a new object or datatype property.
func (s *Store) CreateProperty(ctx context.Context, path string, kind Kind, property string) (ResourceMetaInformation, error) {
	if err := checkPropertyKind(kind); err != nil {
		return ResourceMetaInformation{}, err
	}
	return s.createResource(ctx, path, property, kind)
}

// GetPropertyContext returns property with its domains, ranges, property
// hierarchy and characteristics.
func (s *Store) GetPropertyContext(ctx context.Context, path string, kind Kind, property string) (PropertyContext, error) {
	if err := checkPropertyKind(kind); err != nil {
		return PropertyContext{}, err
	}
	iri, err := s.lookup(ctx, s.db, path, property, kind)
	if err != nil {
		return PropertyContext{}, err
	}
	pc := PropertyContext{Property: s.meta(path, kind, iri)}
	if pc.Domains, err = objects(ctx, s.db, path, iri, vocabulary.RDFSDomain); err != nil {
		return pc, err
	}
	if pc.Ranges, err = objects(ctx, s.db, path, iri, vocabulary.RDFSRange); err != nil {
		return pc, err
	}
	if pc.SuperProperties, err = objects(ctx, s.db, path, iri, vocabulary.RDFSSubPropertyOf); err != nil {
		return pc, err
	}
	if pc.SubProperties, err = subjects(ctx, s.db, path, vocabulary.RDFSSubPropertyOf, iri); err != nil {
		return pc, err
	}
	declared, err := objects(ctx, s.db, path, iri, vocabulary.RDFType)
	if err != nil {
		return pc, err
	}
	for _, t := range declared {
		switch t {
		case vocabulary.OWLFunctionalProperty:
			pc.Functional = true
		case vocabulary.OWLInverseFunctionalProperty:
			pc.InverseFunctional = true
		case vocabulary.OWLTransitiveProperty:
			pc.Transitive = true
		case vocabulary.OWLSymmetricProperty:
			pc.Symmetric = true
		}
	}
	return pc, nil
}

// DeleteProperty removes property and every axiom mentioning it,
// including assertions that use it.
func (s *Store) DeleteProperty(ctx context.Context, path string, kind Kind, property string) error {
	if err := checkPropertyKind(kind); err != nil {
		return err
	}
	return s.deleteResource(ctx, path, property, kind)
}

// AddDomain states property rdfs:domain class.
func (s *Store) AddDomain(ctx context.Context, path string, kind Kind, property, class string) error {
	if err := checkPropertyKind(kind); err != nil {
		return err
	}
	return s.relate(ctx, path, property, kind, vocabulary.RDFSDomain, class, KindClass, false, true)
}

// RemoveDomain retracts property rdfs:domain class.
func (s *Store) RemoveDomain(ctx context.Context, path string, kind Kind, property, class string) error {
	if err := checkPropertyKind(kind); err != nil {
		return err
	}
	return s.relate(ctx, path, property, kind, vocabulary.RDFSDomain, class, KindClass, false, false)
}

// AddRange states property rdfs:range rng. Object property ranges are
// classes of the ontology; datatype property ranges are datatype IRIs.
func (s *Store) AddRange(ctx context.Context, path string, kind Kind, property, rng string) error {
	return s.setRange(ctx, path, kind, property, rng, true)
}

// RemoveRange retracts property rdfs:range rng.
func (s *Store) RemoveRange(ctx context.Context, path string, kind Kind, property, rng string) error {
	return s.setRange(ctx, path, kind, property, rng, false)
}

func (s *Store) setRange(ctx context.Context, path string, kind Kind, property, rng string, add bool) error {
	switch kind {
	case KindObjectProperty:
		return s.relate(ctx, path, property, kind, vocabulary.RDFSRange, rng, KindClass, false, add)
	case KindDatatypeProperty:
	default:
		return checkPropertyKind(kind)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		iri, err := s.lookup(ctx, tx, path, property, kind)
		if err != nil {
			return err
		}
		dt := vocabulary.Expand(rng)
		if dt == rng && !isAbsolute(rng) {
			return errs.Invalidf("datatype range %q must be an IRI or CURIE", rng)
		}
		t := triple{subject: iri, predicate: vocabulary.RDFSRange, object: dt}
		if add {
			return addTriple(ctx, tx, path, t)
		}
		return removeTriple(ctx, tx, path, t)
	})
}

// AddSuperProperty states property rdfs:subPropertyOf super. Both must be
// of the same kind.
func (s *Store) AddSuperProperty(ctx context.Context, path string, kind Kind, property, super string) error {
	if err := checkPropertyKind(kind); err != nil {
		return err
	}
	return s.relate(ctx, path, property, kind, vocabulary.RDFSSubPropertyOf, super, kind, false, true)
}

// RemoveSuperProperty retracts property rdfs:subPropertyOf super.
func (s *Store) RemoveSuperProperty(ctx context.Context, path string, kind Kind, property, super string) error {
	if err := checkPropertyKind(kind); err != nil {
		return err
	}
	return s.relate(ctx, path, property, kind, vocabulary.RDFSSubPropertyOf, super, kind, false, false)
}

// SetCharacteristics replaces the OWL characteristics of property.
// Datatype properties can only be functional.
func (s *Store) SetCharacteristics(ctx context.Context, path string, kind Kind, property string, c Characteristics) error {
	if err := checkPropertyKind(kind); err != nil {
		return err
	}
	if kind == KindDatatypeProperty && (c.InverseFunctional || c.Transitive || c.Symmetric) {
		return errs.Invalidf("datatype properties can only be functional")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		iri, err := s.lookup(ctx, tx, path, property, kind)
		if err != nil {
			return err
		}
		flags := []struct {
			set   bool
			class string
		}{
			{c.Functional, vocabulary.OWLFunctionalProperty},
			{c.InverseFunctional, vocabulary.OWLInverseFunctionalProperty},
			{c.Transitive, vocabulary.OWLTransitiveProperty},
			{c.Symmetric, vocabulary.OWLSymmetricProperty},
		}
		for _, f := range flags {
			t := triple{subject: iri, predicate: vocabulary.RDFType, object: f.class}
			if f.set {
				err = addTriple(ctx, tx, path, t)
			} else if err = removeTriple(ctx, tx, path, t); errs.IsNotFound(err) {
				err = nil
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
