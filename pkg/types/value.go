// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/language"
)

// DataType identifies how a Value's lexical form is interpreted.
type DataType string

const (
	TypeReference DataType = "reference"
	TypeText      DataType = "text"
	TypeString    DataType = "xsd:string"
	TypeInt       DataType = "xsd:int"
	TypeLong      DataType = "xsd:long"
	TypeDouble    DataType = "xsd:double"
	TypeFloat     DataType = "xsd:float"
	TypeBoolean   DataType = "xsd:boolean"
	TypeDateTime  DataType = "xsd:dateTime"
	TypeAnyURI    DataType = "xsd:anyURI"
)

// knownTypes lists every DataType accepted by Valid.
var knownTypes = map[DataType]bool{
	TypeReference: true,
	TypeText:      true,
	TypeString:    true,
	TypeInt:       true,
	TypeLong:      true,
	TypeDouble:    true,
	TypeFloat:     true,
	TypeBoolean:   true,
	TypeDateTime:  true,
	TypeAnyURI:    true,
}

// Valid reports whether t is a known data type.
func (t DataType) Valid() bool {
	return knownTypes[t]
}

// IsNumeric reports whether values of this type compare numerically.
func (t DataType) IsNumeric() bool {
	switch t {
	case TypeInt, TypeLong, TypeDouble, TypeFloat:
		return true
	}
	return false
}

// Value is a single field value of a Representation: either a reference
// to another entity, a natural-language text, or a typed literal in its
// lexical form.
type Value struct {
	Type  DataType `json:"type" yaml:"type" xml:"type,attr"`
	Value string   `json:"value" yaml:"value" xml:",chardata"`
	Lang  string   `json:"lang,omitempty" yaml:"lang,omitempty" xml:"lang,attr,omitempty"`
}

// NewReference returns a reference value pointing at iri.
func NewReference(iri string) Value {
	return Value{Type: TypeReference, Value: iri}
}

// NewText returns a natural-language text value. An empty lang means the
// language is unknown.
func NewText(text, lang string) Value {
	return Value{Type: TypeText, Value: text, Lang: lang}
}

// NewString returns a plain xsd:string value.
func NewString(s string) Value {
	return Value{Type: TypeString, Value: s}
}

// NewInt returns an xsd:long value.
func NewInt(n int64) Value {
	return Value{Type: TypeLong, Value: strconv.FormatInt(n, 10)}
}

// NewDouble returns an xsd:double value.
func NewDouble(f float64) Value {
	return Value{Type: TypeDouble, Value: strconv.FormatFloat(f, 'g', -1, 64)}
}

// NewBool returns an xsd:boolean value.
func NewBool(b bool) Value {
	return Value{Type: TypeBoolean, Value: strconv.FormatBool(b)}
}

// NewTime returns an xsd:dateTime value normalized to UTC.
func NewTime(t time.Time) Value {
	return Value{Type: TypeDateTime, Value: t.UTC().Format(time.RFC3339Nano)}
}

// Int parses the value as an integer.
func (v Value) Int() (int64, error) {
	n, err := strconv.ParseInt(v.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value %q is not an integer: %w", v.Value, err)
	}
	return n, nil
}

// Float parses the value as a floating point number.
func (v Value) Float() (float64, error) {
	f, err := strconv.ParseFloat(v.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("value %q is not a number: %w", v.Value, err)
	}
	return f, nil
}

// Bool parses the value as a boolean.
func (v Value) Bool() (bool, error) {
	b, err := strconv.ParseBool(v.Value)
	if err != nil {
		return false, fmt.Errorf("value %q is not a boolean: %w", v.Value, err)
	}
	return b, nil
}

// Time parses the value as an RFC 3339 timestamp.
func (v Value) Time() (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v.Value)
	if err != nil {
		return time.Time{}, fmt.Errorf("value %q is not a dateTime: %w", v.Value, err)
	}
	return t, nil
}

// Validate checks that the lexical form fits the declared type.
func (v Value) Validate() error {
	if !v.Type.Valid() {
		return fmt.Errorf("unknown data type %q", v.Type)
	}
	if v.Lang != "" && v.Type != TypeText {
		return fmt.Errorf("language %q set on non-text value of type %s", v.Lang, v.Type)
	}
	if v.Lang != "" && !ValidLanguage(v.Lang) {
		return fmt.Errorf("malformed language tag %q", v.Lang)
	}
	var err error
	switch v.Type {
	case TypeInt, TypeLong:
		_, err = v.Int()
	case TypeDouble, TypeFloat:
		_, err = v.Float()
	case TypeBoolean:
		_, err = v.Bool()
	case TypeDateTime:
		_, err = v.Time()
	case TypeReference:
		if v.Value == "" {
			err = fmt.Errorf("empty reference")
		}
	}
	return err
}

// String renders the value for display, N-Triples style.
func (v Value) String() string {
	switch v.Type {
	case TypeReference:
		return "<" + v.Value + ">"
	case TypeText:
		if v.Lang != "" {
			return strconv.Quote(v.Value) + "@" + v.Lang
		}
		return strconv.Quote(v.Value)
	default:
		return strconv.Quote(v.Value) + "^^" + string(v.Type)
	}
}

// ValidLanguage reports whether tag is a well-formed BCP 47 language tag.
// Well-formed tags with unregistered subtags are accepted.
func ValidLanguage(tag string) bool {
	_, err := language.Parse(tag)
	var unknown language.ValueError
	return err == nil || errors.As(err, &unknown)
}
