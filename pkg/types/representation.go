// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/xml"
	"sort"
)

// Representation is a field-based description of one entity. Each field
// holds an insertion-ordered set of values.
type Representation struct {
	// ID is the entity IRI.
	ID string `json:"id" yaml:"id"`

	// Fields maps a field IRI (or CURIE) to its values.
	Fields map[string][]Value `json:"fields" yaml:"fields"`
}

// NewRepresentation returns an empty Representation for id.
func NewRepresentation(id string) *Representation {
	return &Representation{ID: id, Fields: make(map[string][]Value)}
}

// Add appends value to field unless an equal value is already present.
func (r *Representation) Add(field string, value Value) {
	if r.Fields == nil {
		r.Fields = make(map[string][]Value)
	}
	for _, v := range r.Fields[field] {
		if v == value {
			return
		}
	}
	r.Fields[field] = append(r.Fields[field], value)
}

// AddReference adds a reference to iri.
func (r *Representation) AddReference(field, iri string) {
	r.Add(field, NewReference(iri))
}

// AddNaturalText adds text once per language. With no languages the text
// is added without a language tag.
func (r *Representation) AddNaturalText(field, text string, langs ...string) {
	if len(langs) == 0 {
		r.Add(field, NewText(text, ""))
		return
	}
	for _, lang := range langs {
		r.Add(field, NewText(text, lang))
	}
}

// Set replaces all values of field.
func (r *Representation) Set(field string, values ...Value) {
	r.RemoveAll(field)
	for _, v := range values {
		r.Add(field, v)
	}
}

// Get returns the values of field; nil when the field is absent.
func (r *Representation) Get(field string) []Value {
	return r.Fields[field]
}

// GetFirst returns the first value of field.
func (r *Representation) GetFirst(field string) (Value, bool) {
	values := r.Fields[field]
	if len(values) == 0 {
		return Value{}, false
	}
	return values[0], true
}

// GetText returns the natural-language texts of field restricted to
// langs. An empty langs slice matches every language; the empty string
// matches texts without a language.
func (r *Representation) GetText(field string, langs ...string) []Value {
	var out []Value
	for _, v := range r.Fields[field] {
		if v.Type != TypeText {
			continue
		}
		if len(langs) == 0 || containsString(langs, v.Lang) {
			out = append(out, v)
		}
	}
	return out
}

// GetReferences returns the referenced IRIs of field.
func (r *Representation) GetReferences(field string) []string {
	var out []string
	for _, v := range r.Fields[field] {
		if v.Type == TypeReference {
			out = append(out, v.Value)
		}
	}
	return out
}

// Remove deletes one value from field. It reports whether the value was present.
func (r *Representation) Remove(field string, value Value) bool {
	values := r.Fields[field]
	for i, v := range values {
		if v == value {
			values = append(values[:i], values[i+1:]...)
			if len(values) == 0 {
				delete(r.Fields, field)
			} else {
				r.Fields[field] = values
			}
			return true
		}
	}
	return false
}

// RemoveAll deletes field entirely.
func (r *Representation) RemoveAll(field string) {
	delete(r.Fields, field)
}

// RemoveAllNaturalText deletes the texts of field in the given languages,
// or all texts when langs is empty. Non-text values are kept.
func (r *Representation) RemoveAllNaturalText(field string, langs ...string) {
	values := r.Fields[field]
	kept := values[:0]
	for _, v := range values {
		if v.Type == TypeText && (len(langs) == 0 || containsString(langs, v.Lang)) {
			continue
		}
		kept = append(kept, v)
	}
	if len(kept) == 0 {
		delete(r.Fields, field)
		return
	}
	r.Fields[field] = kept
}

// FieldNames returns the field names in sorted order.
func (r *Representation) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsEmpty reports whether the representation has no values.
func (r *Representation) IsEmpty() bool {
	return len(r.Fields) == 0
}

// Clone returns a deep copy.
func (r *Representation) Clone() *Representation {
	c := NewRepresentation(r.ID)
	for name, values := range r.Fields {
		c.Fields[name] = append([]Value(nil), values...)
	}
	return c
}

// Select returns a copy that only keeps the named fields.
func (r *Representation) Select(fields []string) *Representation {
	c := NewRepresentation(r.ID)
	for _, name := range fields {
		if values, ok := r.Fields[name]; ok {
			c.Fields[name] = append([]Value(nil), values...)
		}
	}
	return c
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// xmlRepresentation is the XML wire form; encoding/xml cannot encode maps.
type xmlRepresentation struct {
	XMLName xml.Name   `xml:"representation"`
	ID      string     `xml:"id,attr"`
	Fields  []xmlField `xml:"field"`
}

type xmlField struct {
	Name   string  `xml:"name,attr"`
	Values []Value `xml:"value"`
}

// MarshalXML encodes the representation with fields in sorted order.
func (r Representation) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	out := xmlRepresentation{ID: r.ID}
	for _, name := range r.FieldNames() {
		out.Fields = append(out.Fields, xmlField{Name: name, Values: r.Fields[name]})
	}
	start.Name = xml.Name{Local: "representation"}
	return e.EncodeElement(struct {
		ID     string     `xml:"id,attr"`
		Fields []xmlField `xml:"field"`
	}{out.ID, out.Fields}, start)
}

// UnmarshalXML decodes the form written by MarshalXML.
func (r *Representation) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var in xmlRepresentation
	if err := d.DecodeElement(&in, &start); err != nil {
		return err
	}
	*r = *NewRepresentation(in.ID)
	for _, f := range in.Fields {
		for _, v := range f.Values {
			r.Add(f.Name, v)
		}
	}
	return nil
}
