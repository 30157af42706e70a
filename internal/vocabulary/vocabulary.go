// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vocabulary holds the namespaces used by the entity store, the
// ontology store and the geonames indexer, and converts between full
// IRIs and prefix:local CURIEs.
package vocabulary

import (
	"sort"
	"strings"
	"sync"

	"github.com/cayleygraph/quad/voc"
)

// Namespaces.
const (
	RDF      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS     = "http://www.w3.org/2000/01/rdf-schema#"
	OWL      = "http://www.w3.org/2002/07/owl#"
	XSD      = "http://www.w3.org/2001/XMLSchema#"
	SKOS     = "http://www.w3.org/2004/02/skos/core#"
	DCTerms  = "http://purl.org/dc/terms/"
	WGS84    = "http://www.w3.org/2003/01/geo/wgs84_pos#"
	Geonames = "http://www.geonames.org/ontology#"
	Entity   = "http://stanbol.apache.org/ontology/entityhub/entityhub#"

	// GeonamesEntity is the base of geonames feature IRIs.
	GeonamesEntity = "http://sws.geonames.org/"
)

// Common terms.
const (
	RDFType     = RDF + "type"
	RDFSLabel   = RDFS + "label"
	RDFSComment = RDFS + "comment"
	RDFSDomain  = RDFS + "domain"
	RDFSRange   = RDFS + "range"

	RDFSSubClassOf    = RDFS + "subClassOf"
	RDFSSubPropertyOf = RDFS + "subPropertyOf"

	OWLOntology                  = OWL + "Ontology"
	OWLClass                     = OWL + "Class"
	OWLNamedIndividual           = OWL + "NamedIndividual"
	OWLObjectProperty            = OWL + "ObjectProperty"
	OWLDatatypeProperty          = OWL + "DatatypeProperty"
	OWLEquivalentClass           = OWL + "equivalentClass"
	OWLDisjointWith              = OWL + "disjointWith"
	OWLFunctionalProperty        = OWL + "FunctionalProperty"
	OWLInverseFunctionalProperty = OWL + "InverseFunctionalProperty"
	OWLTransitiveProperty        = OWL + "TransitiveProperty"
	OWLSymmetricProperty         = OWL + "SymmetricProperty"

	DCModified = DCTerms + "modified"
)

var (
	mu sync.RWMutex
	// prefixes maps prefix to namespace.
	prefixes = map[string]string{}
	// byLength holds namespaces longest first so nested namespaces
	// shorten to the most specific prefix.
	byLength []string
	nsPrefix = map[string]string{}
)

func init() {
	for prefix, ns := range map[string]string{
		"rdf":       RDF,
		"rdfs":      RDFS,
		"owl":       OWL,
		"xsd":       XSD,
		"skos":      SKOS,
		"dc":        DCTerms,
		"geo":       WGS84,
		"gn":        Geonames,
		"entityhub": Entity,
	} {
		Register(prefix, ns)
	}
}

// Register adds a prefix for ns, replacing any previous namespace bound to
// prefix. The prefix is also registered with the quad vocabulary so IRIs
// written by the N-Triples codec shorten consistently.
func Register(prefix, ns string) {
	mu.Lock()
	defer mu.Unlock()

	if old, ok := prefixes[prefix]; ok {
		delete(nsPrefix, old)
	}
	prefixes[prefix] = ns
	nsPrefix[ns] = prefix

	byLength = byLength[:0]
	for n := range nsPrefix {
		byLength = append(byLength, n)
	}
	sort.Slice(byLength, func(i, j int) bool {
		if len(byLength[i]) != len(byLength[j]) {
			return len(byLength[i]) > len(byLength[j])
		}
		return byLength[i] < byLength[j]
	})

	voc.RegisterPrefix(prefix+":", ns)
}

// Namespace returns the namespace bound to prefix.
func Namespace(prefix string) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	ns, ok := prefixes[prefix]
	return ns, ok
}

// Shorten returns prefix:local for iri when a registered namespace
// matches, otherwise iri unchanged.
func Shorten(iri string) string {
	mu.RLock()
	defer mu.RUnlock()
	for _, ns := range byLength {
		if strings.HasPrefix(iri, ns) && len(iri) > len(ns) {
			return nsPrefix[ns] + ":" + iri[len(ns):]
		}
	}
	return iri
}

// Expand is the inverse of Shorten. Values without a registered prefix
// are returned unchanged.
func Expand(curie string) string {
	prefix, local, ok := strings.Cut(curie, ":")
	if !ok || strings.HasPrefix(local, "//") {
		return curie
	}
	if ns, found := Namespace(prefix); found {
		return ns + local
	}
	return curie
}

// FeatureIRI returns the IRI of the geonames feature with the given id.
func FeatureIRI(geonameID string) string {
	return GeonamesEntity + geonameID + "/"
}
