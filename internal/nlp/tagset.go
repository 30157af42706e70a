// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nlp

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/stanbol/internal/errs"
)

// PosTag is a tag emitted by a tagger, mapped onto lexical categories and
// parts of speech. Either may be empty for tags the model does not cover.
type PosTag struct {
	Tag        string            `json:"tag" yaml:"tag" xml:"tag,attr"`
	Categories []LexicalCategory `json:"categories,omitempty" yaml:"categories,omitempty" xml:"category"`
	Pos        []Pos             `json:"pos,omitempty" yaml:"pos,omitempty" xml:"pos"`
}

// NewPosTag maps tag onto the given parts of speech.
func NewPosTag(tag string, pos ...Pos) PosTag {
	return PosTag{Tag: tag, Pos: pos}
}

// NewCategoryTag maps tag onto lexical categories only.
func NewCategoryTag(tag string, cats ...LexicalCategory) PosTag {
	return PosTag{Tag: tag, Categories: cats}
}

// AllCategories returns the declared categories plus those implied by the
// parts of speech, without duplicates.
func (t PosTag) AllCategories() []LexicalCategory {
	seen := map[LexicalCategory]bool{}
	var out []LexicalCategory
	add := func(cs []LexicalCategory) {
		for _, c := range cs {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	add(t.Categories)
	for _, p := range t.Pos {
		add(p.Categories())
	}
	return out
}

// HasCategory reports whether the tag belongs to c.
func (t PosTag) HasCategory(c LexicalCategory) bool {
	for _, k := range t.AllCategories() {
		if k == c {
			return true
		}
	}
	return false
}

// HasPos reports whether one of the tag's parts of speech is p or a
// specialization of p.
func (t PosTag) HasPos(p Pos) bool {
	for _, own := range t.Pos {
		if own.IsA(p) {
			return true
		}
	}
	return false
}

func (t PosTag) validate() error {
	if t.Tag == "" {
		return errs.Invalidf("empty tag")
	}
	if len(t.Categories) == 0 && len(t.Pos) == 0 {
		return errs.Invalidf("tag %q maps to neither a category nor a part of speech", t.Tag)
	}
	for _, c := range t.Categories {
		if !c.Valid() {
			return errs.Invalidf("tag %q: unknown lexical category %q", t.Tag, c)
		}
	}
	for _, p := range t.Pos {
		if _, ok := posTable[p]; !ok {
			return errs.Invalidf("tag %q: unknown part of speech %d", t.Tag, int(p))
		}
	}
	return nil
}

// TagSet is a named, ordered collection of tags used by taggers for a set
// of languages. An empty language list means language independent.
type TagSet struct {
	Name      string
	Languages []string

	tags  map[string]PosTag
	order []string
}

// NewTagSet returns an empty tag set.
func NewTagSet(name string, languages ...string) *TagSet {
	return &TagSet{Name: name, Languages: languages, tags: map[string]PosTag{}}
}

// Add registers t, replacing an earlier mapping of the same tag.
func (ts *TagSet) Add(t PosTag) error {
	if err := t.validate(); err != nil {
		return err
	}
	if _, ok := ts.tags[t.Tag]; !ok {
		ts.order = append(ts.order, t.Tag)
	}
	ts.tags[t.Tag] = t
	return nil
}

// Get returns the mapping of tag.
func (ts *TagSet) Get(tag string) (PosTag, error) {
	t, ok := ts.tags[tag]
	if !ok {
		return PosTag{}, errs.NotFoundf("tag %q not found in tag set %s", tag, ts.Name)
	}
	return t, nil
}

// Tags returns the tags in insertion order.
func (ts *TagSet) Tags() []PosTag {
	out := make([]PosTag, 0, len(ts.order))
	for _, name := range ts.order {
		out = append(out, ts.tags[name])
	}
	return out
}

// Len returns the number of tags.
func (ts *TagSet) Len() int { return len(ts.order) }

// Supports reports whether the tag set applies to lang.
func (ts *TagSet) Supports(lang string) bool {
	if len(ts.Languages) == 0 {
		return true
	}
	for _, l := range ts.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// TagSetDocument is the serialized form of a tag set.
type TagSetDocument struct {
	Name      string   `json:"name" yaml:"name" xml:"name,attr"`
	Languages []string `json:"languages,omitempty" yaml:"languages,omitempty" xml:"language"`
	Tags      []PosTag `json:"tags" yaml:"tags" xml:"tag"`
}

// Document returns ts in serializable form.
func (ts *TagSet) Document() TagSetDocument {
	return TagSetDocument{Name: ts.Name, Languages: ts.Languages, Tags: ts.Tags()}
}

// LoadTagSet reads a YAML tag set definition.
func LoadTagSet(r io.Reader) (*TagSet, error) {
	var doc TagSetDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errs.Invalidf("decoding tag set: %v", err)
	}
	if doc.Name == "" {
		return nil, errs.Invalidf("tag set has no name")
	}
	ts := NewTagSet(doc.Name, doc.Languages...)
	for _, t := range doc.Tags {
		if err := ts.Add(t); err != nil {
			return nil, fmt.Errorf("tag set %s: %w", doc.Name, err)
		}
	}
	return ts, nil
}

// LoadTagSetFile reads a YAML tag set definition from path.
func LoadTagSetFile(path string) (*TagSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tag set %s: %w", path, err)
	}
	defer f.Close()
	return LoadTagSet(f)
}

// Registry holds tag sets by name.
type Registry struct {
	mu   sync.RWMutex
	sets map[string]*TagSet
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sets: map[string]*TagSet{}}
}

// DefaultRegistry returns a registry holding the built-in tag sets.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, ts := range []*TagSet{PennTreebank(), Universal()} {
		r.sets[ts.Name] = ts
	}
	return r
}

// Register adds ts. Names are unique.
func (r *Registry) Register(ts *TagSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sets[ts.Name]; ok {
		return errs.Conflictf("tag set %s already registered", ts.Name)
	}
	r.sets[ts.Name] = ts
	return nil
}

// Get returns the tag set called name.
func (r *Registry) Get(name string) (*TagSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ts, ok := r.sets[name]
	if !ok {
		return nil, errs.NotFoundf("tag set %s not found", name)
	}
	return ts, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sets))
	for name := range r.sets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ForLanguage returns the tag sets that apply to lang: language specific
// sets first, then language independent ones, each group sorted by name.
func (r *Registry) ForLanguage(lang string) []*TagSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var specific, general []*TagSet
	for _, ts := range r.sets {
		switch {
		case len(ts.Languages) == 0:
			general = append(general, ts)
		case ts.Supports(lang):
			specific = append(specific, ts)
		}
	}
	byName := func(s []*TagSet) {
		sort.Slice(s, func(i, j int) bool { return s[i].Name < s[j].Name })
	}
	byName(specific)
	byName(general)
	return append(specific, general...)
}
