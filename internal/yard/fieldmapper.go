// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package yard

import (
	"fmt"
	"strings"

	"github.com/pdiddy/stanbol/internal/vocabulary"
	"github.com/pdiddy/stanbol/pkg/types"
)

const (
	textPrefix = "@"
	refPrefix  = "ref"
	xsdPrefix  = "xsd:"
)

// IndexField identifies one column of an indexed document: a field
// together with the data type and, for natural text, the language of its
// values.
type IndexField struct {
	Field    string
	DataType types.DataType
	Lang     string
}

// FieldMapper translates between Representation fields and the names
// under which their values are indexed. Names have the form
// "<encoding>/<field>/" where the encoding is "@<lang>" for natural text,
// "ref" for references and the short XSD type name for literals. Fields
// are written in their prefix:local form when a namespace is registered.
type FieldMapper struct{}

// Encode returns the index field name for f.
func (FieldMapper) Encode(f IndexField) (string, error) {
	if f.Field == "" {
		return "", fmt.Errorf("empty field name")
	}
	short := ShortField(f.Field)
	switch f.DataType {
	case types.TypeText:
		if f.Lang != "" && !types.ValidLanguage(f.Lang) {
			return "", fmt.Errorf("field %s: malformed language tag %q", f.Field, f.Lang)
		}
		return textPrefix + f.Lang + "/" + short + "/", nil
	case types.TypeReference:
		return refPrefix + "/" + short + "/", nil
	case "":
		return "", fmt.Errorf("field %s: empty data type", f.Field)
	}
	if !f.DataType.Valid() {
		return "", fmt.Errorf("field %s: unknown data type %q", f.Field, f.DataType)
	}
	if f.Lang != "" {
		return "", fmt.Errorf("field %s: language on %s value", f.Field, f.DataType)
	}
	return strings.TrimPrefix(string(f.DataType), xsdPrefix) + "/" + short + "/", nil
}

// Decode parses an index field name produced by Encode. The returned
// field is a full IRI when its prefix is registered.
func (FieldMapper) Decode(name string) (IndexField, error) {
	enc, rest, ok := strings.Cut(name, "/")
	if !ok || !strings.HasSuffix(rest, "/") || len(rest) < 2 {
		return IndexField{}, fmt.Errorf("malformed index field %q", name)
	}
	field := vocabulary.Expand(rest[:len(rest)-1])

	switch {
	case strings.HasPrefix(enc, textPrefix):
		return IndexField{Field: field, DataType: types.TypeText, Lang: enc[len(textPrefix):]}, nil
	case enc == refPrefix:
		return IndexField{Field: field, DataType: types.TypeReference}, nil
	}
	dt := types.DataType(xsdPrefix + enc)
	if !dt.Valid() {
		return IndexField{}, fmt.Errorf("malformed index field %q: unknown encoding %q", name, enc)
	}
	return IndexField{Field: field, DataType: dt}, nil
}

// EncodeValue returns the index field name for a value of field.
func (m FieldMapper) EncodeValue(field string, v types.Value) (string, error) {
	return m.Encode(IndexField{Field: field, DataType: v.Type, Lang: v.Lang})
}

// ShortField returns the form of field used inside index names and in the
// field column of the store.
func ShortField(field string) string {
	return vocabulary.Shorten(vocabulary.Expand(field))
}

// numericTypes lists the data types a numeric range constraint without an
// explicit data type is evaluated against.
var numericTypes = []types.DataType{types.TypeInt, types.TypeLong, types.TypeDouble, types.TypeFloat}
