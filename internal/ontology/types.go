// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ontology

import "encoding/xml"

// Kind distinguishes the resources declared in an ontology.
type Kind string

const (
	KindClass            Kind = "class"
	KindIndividual       Kind = "individual"
	KindObjectProperty   Kind = "objectProperty"
	KindDatatypeProperty Kind = "datatypeProperty"
)

// Collection is the URL segment listing resources of a kind.
func (k Kind) Collection() string {
	switch k {
	case KindClass:
		return "classes"
	case KindIndividual:
		return "individuals"
	case KindObjectProperty:
		return "objectProperties"
	case KindDatatypeProperty:
		return "datatypeProperties"
	}
	return string(k)
}

// IsProperty reports whether k is a property kind.
func (k Kind) IsProperty() bool {
	return k == KindObjectProperty || k == KindDatatypeProperty
}

// OntologyMetaInformation describes one stored ontology.
type OntologyMetaInformation struct {
	XMLName     xml.Name `json:"-" xml:"OntologyMetaInformation"`
	Path        string   `json:"path" xml:"path,attr"`
	URI         string   `json:"uri" xml:"URI"`
	Href        string   `json:"href" xml:"Href"`
	Description string   `json:"description,omitempty" xml:"Description,omitempty"`
}

// AdministeredOntologies lists the stored ontologies.
type AdministeredOntologies struct {
	XMLName    xml.Name                  `json:"-" xml:"AdministeredOntologies"`
	Ontologies []OntologyMetaInformation `json:"ontologies" xml:"OntologyMetaInformation"`
}

// ResourceMetaInformation describes a class, individual or property.
type ResourceMetaInformation struct {
	XMLName xml.Name `json:"-" xml:"ResourceMetaInformation"`
	URI     string   `json:"uri" xml:"URI"`
	Href    string   `json:"href" xml:"Href"`
	Kind    Kind     `json:"kind" xml:"kind,attr"`
}

// ResourceList lists the resources of one kind in an ontology.
type ResourceList struct {
	XMLName   xml.Name                  `json:"-" xml:"Resources"`
	Ontology  string                    `json:"ontology" xml:"ontology,attr"`
	Kind      Kind                      `json:"kind" xml:"kind,attr"`
	Resources []ResourceMetaInformation `json:"resources" xml:"ResourceMetaInformation"`
}

// ClassContext is a class with its direct and inferred relations.
type ClassContext struct {
	XMLName           xml.Name                `json:"-" xml:"ClassContext"`
	Class             ResourceMetaInformation `json:"class" xml:"ClassMetaInformation"`
	SuperClasses      []string                `json:"super_classes" xml:"SuperclassReference"`
	AllSuperClasses   []string                `json:"all_super_classes" xml:"InferredSuperclassReference"`
	SubClasses        []string                `json:"sub_classes" xml:"SubclassReference"`
	EquivalentClasses []string                `json:"equivalent_classes" xml:"EquivalentClassReference"`
	DisjointClasses   []string                `json:"disjoint_classes" xml:"DisjointClassReference"`
}

// Literal is a data property value.
type Literal struct {
	Value    string `json:"value" xml:",chardata"`
	Datatype string `json:"datatype,omitempty" xml:"datatype,attr,omitempty"`
	Lang     string `json:"lang,omitempty" xml:"lang,attr,omitempty"`
}

// PropertyAssertion groups the values an individual has for one property.
type PropertyAssertion struct {
	Property string    `json:"property" xml:"property,attr"`
	Objects  []string  `json:"objects,omitempty" xml:"ObjectReference"`
	Literals []Literal `json:"literals,omitempty" xml:"Literal"`
}

// IndividualContext is an individual with its types and property values.
type IndividualContext struct {
	XMLName            xml.Name                `json:"-" xml:"IndividualContext"`
	Individual         ResourceMetaInformation `json:"individual" xml:"IndividualMetaInformation"`
	ContainerClasses   []string                `json:"container_classes" xml:"ContainerClassReference"`
	InferredClasses    []string                `json:"inferred_classes" xml:"InferredClassReference"`
	PropertyAssertions []PropertyAssertion     `json:"property_assertions" xml:"PropertyAssertion"`
}

// Characteristics are the OWL property characteristics. Only Functional
// applies to datatype properties.
type Characteristics struct {
	Functional        bool `json:"functional" xml:"isFunctional,attr" form:"functional"`
	InverseFunctional bool `json:"inverse_functional" xml:"isInverseFunctional,attr" form:"inverseFunctional"`
	Transitive        bool `json:"transitive" xml:"isTransitive,attr" form:"transitive"`
	Symmetric         bool `json:"symmetric" xml:"isSymmetric,attr" form:"symmetric"`
}

// PropertyContext is a property with its domain, range and hierarchy.
type PropertyContext struct {
	XMLName         xml.Name                `json:"-" xml:"PropertyContext"`
	Property        ResourceMetaInformation `json:"property" xml:"PropertyMetaInformation"`
	Domains         []string                `json:"domains" xml:"DomainReference"`
	Ranges          []string                `json:"ranges" xml:"RangeReference"`
	SuperProperties []string                `json:"super_properties" xml:"SuperpropertyReference"`
	SubProperties   []string                `json:"sub_properties" xml:"SubpropertyReference"`
	Characteristics
}
