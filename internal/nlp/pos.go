// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package nlp models part-of-speech annotations: coarse lexical
// categories, a hierarchy of fine-grained parts of speech aligned with the
// OLiA reference model, and named tag sets mapping tagger output onto both.
package nlp

import (
	"fmt"

	"github.com/pdiddy/stanbol/internal/errs"
)

// OLiA is the namespace of the OLiA reference model.
const OLiA = "http://purl.org/olia/olia.owl#"

// LexicalCategory is a coarse word class.
type LexicalCategory string

const (
	Noun         LexicalCategory = "Noun"
	Verb         LexicalCategory = "Verb"
	Adjective    LexicalCategory = "Adjective"
	Adverb       LexicalCategory = "Adverb"
	Adposition   LexicalCategory = "Adposition"
	Conjunction  LexicalCategory = "Conjunction"
	Pronoun      LexicalCategory = "Pronoun"
	Determiner   LexicalCategory = "Determiner"
	Numeral      LexicalCategory = "Numeral"
	Interjection LexicalCategory = "Interjection"
	Punctuation  LexicalCategory = "Punctuation"
	Residual     LexicalCategory = "Residual"
	Quantifier   LexicalCategory = "Quantifier"
	Unique       LexicalCategory = "Unique"
)

var categories = []LexicalCategory{
	Noun, Verb, Adjective, Adverb, Adposition, Conjunction, Pronoun,
	Determiner, Numeral, Interjection, Punctuation, Residual, Quantifier, Unique,
}

// Categories returns every lexical category.
func Categories() []LexicalCategory {
	return append([]LexicalCategory(nil), categories...)
}

// Valid reports whether c is a known category.
func (c LexicalCategory) Valid() bool {
	for _, k := range categories {
		if k == c {
			return true
		}
	}
	return false
}

// URI returns the OLiA IRI of the category.
func (c LexicalCategory) URI() string {
	return OLiA + string(c)
}

// UnmarshalText accepts a category name.
func (c *LexicalCategory) UnmarshalText(b []byte) error {
	v := LexicalCategory(b)
	if !v.Valid() {
		return errs.Invalidf("unknown lexical category %q", b)
	}
	*c = v
	return nil
}

// Pos is a fine-grained part of speech. The zero value is no Pos.
type Pos int

const (
	CommonNoun Pos = iota + 1
	ProperNoun
	MassNoun
	CountNoun

	MainVerb
	AuxiliaryVerb
	ModalVerb
	FiniteVerb
	PastTenseVerb
	PresentTenseVerb
	NonFiniteVerb
	Infinitive
	Participle
	PastParticiple
	PresentParticiple
	Gerund

	ComparativeAdjective
	SuperlativeAdjective
	ComparativeAdverb
	SuperlativeAdverb
	InterrogativeAdverb

	Preposition
	Postposition

	CoordinatingConjunction
	SubordinatingConjunction

	PersonalPronoun
	PossessivePronoun
	InterrogativePronoun
	RelativePronoun

	Article
	DefiniteArticle
	IndefiniteArticle
	InterrogativeDeterminer
	Predeterminer

	CardinalNumber
	OrdinalNumber

	SentenceFinalPunctuation
	Comma
	OpenBracket
	CloseBracket
	Quote

	ForeignWord
	Symbol
	Abbreviation

	ExistentialParticle
	InfinitiveMarker
	PossessiveMarker
	Particle
)

type posInfo struct {
	name       string
	parent     Pos
	categories []LexicalCategory
}

// posTable lists the modelled parts of speech. A Pos without categories
// inherits those of its parent.
var posTable = map[Pos]posInfo{
	CommonNoun: {"CommonNoun", 0, []LexicalCategory{Noun}},
	ProperNoun: {"ProperNoun", 0, []LexicalCategory{Noun}},
	MassNoun:   {"MassNoun", CommonNoun, nil},
	CountNoun:  {"CountNoun", CommonNoun, nil},

	MainVerb:          {"MainVerb", 0, []LexicalCategory{Verb}},
	AuxiliaryVerb:     {"AuxiliaryVerb", 0, []LexicalCategory{Verb}},
	ModalVerb:         {"ModalVerb", AuxiliaryVerb, nil},
	FiniteVerb:        {"FiniteVerb", MainVerb, nil},
	PastTenseVerb:     {"PastTenseVerb", FiniteVerb, nil},
	PresentTenseVerb:  {"PresentTenseVerb", FiniteVerb, nil},
	NonFiniteVerb:     {"NonFiniteVerb", MainVerb, nil},
	Infinitive:        {"Infinitive", NonFiniteVerb, nil},
	Participle:        {"Participle", NonFiniteVerb, nil},
	PastParticiple:    {"PastParticiple", Participle, nil},
	PresentParticiple: {"PresentParticiple", Participle, nil},
	Gerund:            {"Gerund", NonFiniteVerb, []LexicalCategory{Verb, Noun}},

	ComparativeAdjective: {"ComparativeAdjective", 0, []LexicalCategory{Adjective}},
	SuperlativeAdjective: {"SuperlativeAdjective", 0, []LexicalCategory{Adjective}},
	ComparativeAdverb:    {"ComparativeAdverb", 0, []LexicalCategory{Adverb}},
	SuperlativeAdverb:    {"SuperlativeAdverb", 0, []LexicalCategory{Adverb}},
	InterrogativeAdverb:  {"InterrogativeAdverb", 0, []LexicalCategory{Adverb}},

	Preposition:  {"Preposition", 0, []LexicalCategory{Adposition}},
	Postposition: {"Postposition", 0, []LexicalCategory{Adposition}},

	CoordinatingConjunction:  {"CoordinatingConjunction", 0, []LexicalCategory{Conjunction}},
	SubordinatingConjunction: {"SubordinatingConjunction", 0, []LexicalCategory{Conjunction}},

	PersonalPronoun:      {"PersonalPronoun", 0, []LexicalCategory{Pronoun}},
	PossessivePronoun:    {"PossessivePronoun", 0, []LexicalCategory{Pronoun}},
	InterrogativePronoun: {"InterrogativePronoun", 0, []LexicalCategory{Pronoun}},
	RelativePronoun:      {"RelativePronoun", 0, []LexicalCategory{Pronoun}},

	Article:                 {"Article", 0, []LexicalCategory{Determiner}},
	DefiniteArticle:         {"DefiniteArticle", Article, nil},
	IndefiniteArticle:       {"IndefiniteArticle", Article, nil},
	InterrogativeDeterminer: {"InterrogativeDeterminer", 0, []LexicalCategory{Determiner}},
	Predeterminer:           {"Predeterminer", 0, []LexicalCategory{Determiner, Quantifier}},

	CardinalNumber: {"CardinalNumber", 0, []LexicalCategory{Numeral}},
	OrdinalNumber:  {"OrdinalNumber", 0, []LexicalCategory{Numeral}},

	SentenceFinalPunctuation: {"SentenceFinalPunctuation", 0, []LexicalCategory{Punctuation}},
	Comma:                    {"Comma", 0, []LexicalCategory{Punctuation}},
	OpenBracket:              {"OpenBracket", 0, []LexicalCategory{Punctuation}},
	CloseBracket:             {"CloseBracket", 0, []LexicalCategory{Punctuation}},
	Quote:                    {"Quote", 0, []LexicalCategory{Punctuation}},

	ForeignWord:  {"ForeignWord", 0, []LexicalCategory{Residual}},
	Symbol:       {"Symbol", 0, []LexicalCategory{Residual}},
	Abbreviation: {"Abbreviation", 0, []LexicalCategory{Residual}},

	ExistentialParticle: {"ExistentialParticle", 0, []LexicalCategory{Unique}},
	InfinitiveMarker:    {"InfinitiveMarker", 0, []LexicalCategory{Unique}},
	PossessiveMarker:    {"PossessiveMarker", 0, []LexicalCategory{Unique}},
	Particle:            {"Particle", 0, []LexicalCategory{Unique}},
}

var posByName = func() map[string]Pos {
	m := make(map[string]Pos, len(posTable))
	for p, info := range posTable {
		m[info.name] = p
	}
	return m
}()

// ParsePos looks up a Pos by name.
func ParsePos(name string) (Pos, error) {
	if p, ok := posByName[name]; ok {
		return p, nil
	}
	return 0, errs.Invalidf("unknown part of speech %q", name)
}

func (p Pos) String() string {
	if info, ok := posTable[p]; ok {
		return info.name
	}
	return fmt.Sprintf("Pos(%d)", int(p))
}

// URI returns the OLiA IRI of the part of speech.
func (p Pos) URI() string {
	return OLiA + p.String()
}

// Parent returns the direct generalization of p, if any.
func (p Pos) Parent() (Pos, bool) {
	info, ok := posTable[p]
	if !ok || info.parent == 0 {
		return 0, false
	}
	return info.parent, true
}

// Categories returns the lexical categories of p, inherited from the
// nearest ancestor that declares any.
func (p Pos) Categories() []LexicalCategory {
	for cur := p; cur != 0; cur = posTable[cur].parent {
		if cats := posTable[cur].categories; len(cats) > 0 {
			return append([]LexicalCategory(nil), cats...)
		}
	}
	return nil
}

// IsA reports whether p is other or one of its specializations.
func (p Pos) IsA(other Pos) bool {
	for cur := p; cur != 0; cur = posTable[cur].parent {
		if cur == other {
			return true
		}
	}
	return false
}

// MarshalText renders the Pos name.
func (p Pos) MarshalText() ([]byte, error) {
	if _, ok := posTable[p]; !ok {
		return nil, fmt.Errorf("unknown part of speech %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText parses a Pos name.
func (p *Pos) UnmarshalText(b []byte) error {
	v, err := ParsePos(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
