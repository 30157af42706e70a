// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/xml"

// ConstraintType selects how a Constraint matches field values.
type ConstraintType string

const (
	ConstraintValue     ConstraintType = "value"
	ConstraintText      ConstraintType = "text"
	ConstraintRange     ConstraintType = "range"
	ConstraintReference ConstraintType = "reference"
)

// MatchMode controls multi-value constraints: any value matches, or all
// values must be present.
type MatchMode string

const (
	ModeAny MatchMode = "any"
	ModeAll MatchMode = "all"
)

// PatternType controls how text constraint values are interpreted.
type PatternType string

const (
	PatternNone     PatternType = "none"
	PatternWildcard PatternType = "wildcard"
	PatternRegex    PatternType = "regex"
)

// Constraint restricts the values of one field.
type Constraint struct {
	Type ConstraintType `json:"type" yaml:"type" xml:"type,attr"`

	// Values holds the expected values (value constraints), texts
	// (text constraints) or IRIs (reference constraints).
	Values []string `json:"values,omitempty" yaml:"values,omitempty" xml:"value,omitempty"`

	// DataType restricts value and range constraints to one data type.
	DataType DataType `json:"datatype,omitempty" yaml:"datatype,omitempty" xml:"datatype,attr,omitempty"`

	Mode MatchMode `json:"mode,omitempty" yaml:"mode,omitempty" xml:"mode,attr,omitempty"`

	// Languages restricts text constraints. The empty string selects
	// texts without a language.
	Languages     []string    `json:"languages,omitempty" yaml:"languages,omitempty" xml:"language,omitempty"`
	CaseSensitive bool        `json:"case_sensitive,omitempty" yaml:"case_sensitive,omitempty" xml:"caseSensitive,attr,omitempty"`
	PatternType   PatternType `json:"pattern_type,omitempty" yaml:"pattern_type,omitempty" xml:"patternType,attr,omitempty"`

	// Lower and Upper bound range constraints; nil means unbounded.
	Lower     *string `json:"lower,omitempty" yaml:"lower,omitempty" xml:"lower,omitempty"`
	Upper     *string `json:"upper,omitempty" yaml:"upper,omitempty" xml:"upper,omitempty"`
	Inclusive bool    `json:"inclusive,omitempty" yaml:"inclusive,omitempty" xml:"inclusive,attr,omitempty"`
}

// FieldQuery selects Representations by field constraints.
type FieldQuery struct {
	Constraints map[string]Constraint `json:"constraints" yaml:"constraints"`

	// Selected restricts the returned fields. Empty returns all fields.
	Selected []string `json:"selected,omitempty" yaml:"selected,omitempty"`

	Limit  int `json:"limit,omitempty" yaml:"limit,omitempty"`
	Offset int `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// NewFieldQuery returns an empty query.
func NewFieldQuery() *FieldQuery {
	return &FieldQuery{Constraints: make(map[string]Constraint)}
}

// SetConstraint sets the constraint for field, replacing any previous one.
func (q *FieldQuery) SetConstraint(field string, c Constraint) *FieldQuery {
	if q.Constraints == nil {
		q.Constraints = make(map[string]Constraint)
	}
	q.Constraints[field] = c
	return q
}

// Select adds fields to the selection.
func (q *FieldQuery) Select(fields ...string) *FieldQuery {
	q.Selected = append(q.Selected, fields...)
	return q
}

// QueryResultList holds one page of query results.
type QueryResultList struct {
	XMLName xml.Name          `json:"-" yaml:"-" xml:"results"`
	Query   FieldQuery        `json:"query" yaml:"query" xml:"-"`
	Results []*Representation `json:"results" yaml:"results" xml:"representation"`
}

// Len returns the number of results.
func (l QueryResultList) Len() int {
	return len(l.Results)
}

// IDs returns the ids of the results in order.
func (l QueryResultList) IDs() []string {
	ids := make([]string, len(l.Results))
	for i, r := range l.Results {
		ids[i] = r.ID
	}
	return ids
}
