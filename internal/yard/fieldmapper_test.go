// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package yard

import (
	"testing"

	"github.com/pdiddy/stanbol/internal/vocabulary"
	"github.com/pdiddy/stanbol/pkg/types"
)

func TestFieldMapperEncode(t *testing.T) {
	tests := []struct {
		name  string
		field IndexField
		want  string
	}{
		{"text with language", IndexField{vocabulary.RDFSLabel, types.TypeText, "en"}, "@en/rdfs:label/"},
		{"text without language", IndexField{vocabulary.RDFSLabel, types.TypeText, ""}, "@/rdfs:label/"},
		{"reference", IndexField{vocabulary.RDFType, types.TypeReference, ""}, "ref/rdf:type/"},
		{"typed", IndexField{vocabulary.Geonames + "population", types.TypeLong, ""}, "long/gn:population/"},
		{"curie input", IndexField{"geo:lat", types.TypeDouble, ""}, "double/geo:lat/"},
		{"unregistered iri", IndexField{"http://example.com/p", types.TypeString, ""}, "string/http://example.com/p/"},
	}
	var m FieldMapper
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Encode(tt.field)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if got != tt.want {
				t.Errorf("Encode = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFieldMapperRoundTrip(t *testing.T) {
	var m FieldMapper
	fields := []IndexField{
		{vocabulary.RDFSLabel, types.TypeText, "de"},
		{vocabulary.RDFType, types.TypeReference, ""},
		{vocabulary.DCModified, types.TypeDateTime, ""},
		{"http://example.com/a/b", types.TypeBoolean, ""},
	}
	for _, f := range fields {
		name, err := m.Encode(f)
		if err != nil {
			t.Fatalf("Encode(%v): %v", f, err)
		}
		got, err := m.Decode(name)
		if err != nil {
			t.Fatalf("Decode(%q): %v", name, err)
		}
		if got != f {
			t.Errorf("Decode(Encode(%v)) = %v", f, got)
		}
	}
}

func TestFieldMapperErrors(t *testing.T) {
	var m FieldMapper
	if _, err := m.Encode(IndexField{Field: "", DataType: types.TypeString}); err == nil {
		t.Error("Encode with empty field: expected error")
	}
	if _, err := m.Encode(IndexField{Field: "rdfs:label", DataType: "xsd:nonsense"}); err == nil {
		t.Error("Encode with unknown type: expected error")
	}
	if _, err := m.Encode(IndexField{Field: "rdfs:label", DataType: types.TypeString, Lang: "en"}); err == nil {
		t.Error("Encode with language on literal: expected error")
	}
	if _, err := m.Encode(IndexField{Field: "rdfs:label", DataType: types.TypeText, Lang: "de/AT"}); err == nil {
		t.Error("Encode with malformed language: expected error")
	}

	for _, name := range []string{"", "noslash", "ref/missing-trailing", "bogus/rdfs:label/", "ref//"} {
		if _, err := m.Decode(name); err == nil {
			t.Errorf("Decode(%q): expected error", name)
		}
	}
}
