// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nlp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/stanbol/internal/errs"
)

func TestPosHierarchy(t *testing.T) {
	tests := []struct {
		pos, other Pos
		want       bool
	}{
		{PastParticiple, Participle, true},
		{PastParticiple, NonFiniteVerb, true},
		{PastParticiple, MainVerb, true},
		{PastParticiple, PastParticiple, true},
		{Participle, PastParticiple, false},
		{ModalVerb, MainVerb, false},
		{DefiniteArticle, Article, true},
		{MassNoun, ProperNoun, false},
	}
	for _, tt := range tests {
		t.Run(tt.pos.String()+"/"+tt.other.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pos.IsA(tt.other))
		})
	}
}

func TestPosCategoriesInherit(t *testing.T) {
	assert.Equal(t, []LexicalCategory{Verb}, PastParticiple.Categories())
	assert.Equal(t, []LexicalCategory{Verb, Noun}, Gerund.Categories())
	assert.Equal(t, []LexicalCategory{Determiner}, IndefiniteArticle.Categories())

	parent, ok := MassNoun.Parent()
	require.True(t, ok)
	assert.Equal(t, CommonNoun, parent)
	_, ok = CommonNoun.Parent()
	assert.False(t, ok)
}

func TestPosNamesAndURIs(t *testing.T) {
	assert.Equal(t, OLiA+"ProperNoun", ProperNoun.URI())
	assert.Equal(t, OLiA+"Noun", Noun.URI())

	p, err := ParsePos("PresentTenseVerb")
	require.NoError(t, err)
	assert.Equal(t, PresentTenseVerb, p)

	_, err = ParsePos("Smurf")
	assert.True(t, errs.IsInvalid(err))
	assert.Equal(t, "Pos(999)", Pos(999).String())

	// Every modelled Pos round-trips through its name.
	for pos := range posTable {
		got, err := ParsePos(pos.String())
		require.NoError(t, err)
		assert.Equal(t, pos, got)
		assert.NotEmpty(t, pos.Categories(), "%s has no category", pos)
	}
}

func TestPennTreebankTags(t *testing.T) {
	penn := PennTreebank()

	vbn, err := penn.Get("VBN")
	require.NoError(t, err)
	assert.True(t, vbn.HasPos(Participle))
	assert.True(t, vbn.HasPos(MainVerb))
	assert.True(t, vbn.HasCategory(Verb))
	assert.False(t, vbn.HasCategory(Noun))

	in, err := penn.Get("IN")
	require.NoError(t, err)
	assert.True(t, in.HasCategory(Adposition))
	assert.True(t, in.HasCategory(Conjunction))

	jj, err := penn.Get("JJ")
	require.NoError(t, err)
	assert.True(t, jj.HasCategory(Adjective))
	assert.False(t, jj.HasPos(ComparativeAdjective))

	_, err = penn.Get("XYZ")
	assert.True(t, errs.IsNotFound(err))
	_, err = penn.Get("nn")
	assert.True(t, errs.IsNotFound(err), "tags are case sensitive")

	assert.Equal(t, "CC", penn.Tags()[0].Tag)
	assert.Equal(t, penn.Len(), len(penn.Tags()))
}

func TestTagSetAdd(t *testing.T) {
	ts := NewTagSet("tiny", "xx")
	require.NoError(t, ts.Add(NewPosTag("N", CommonNoun)))
	require.NoError(t, ts.Add(NewPosTag("V", MainVerb)))
	require.NoError(t, ts.Add(NewPosTag("N", ProperNoun)))

	assert.Equal(t, 2, ts.Len())
	n, err := ts.Get("N")
	require.NoError(t, err)
	assert.Equal(t, []Pos{ProperNoun}, n.Pos, "re-adding replaces the mapping")
	assert.Equal(t, "N", ts.Tags()[0].Tag, "order is kept")

	assert.True(t, errs.IsInvalid(ts.Add(PosTag{Tag: "E"})))
	assert.True(t, errs.IsInvalid(ts.Add(PosTag{Pos: []Pos{CommonNoun}})))
	assert.True(t, errs.IsInvalid(ts.Add(PosTag{Tag: "Q", Categories: []LexicalCategory{"Bogus"}})))
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"penn", "universal"}, r.Names())

	require.NoError(t, r.Register(NewTagSet("stts", "de")))
	assert.True(t, errs.IsNotFound(func() error { _, err := r.Get("missing"); return err }()))
	assert.Error(t, r.Register(NewTagSet("penn")))

	names := func(sets []*TagSet) []string {
		var out []string
		for _, ts := range sets {
			out = append(out, ts.Name)
		}
		return out
	}
	assert.Equal(t, []string{"penn", "universal"}, names(r.ForLanguage("en")))
	assert.Equal(t, []string{"stts", "universal"}, names(r.ForLanguage("de")))
	assert.Equal(t, []string{"universal"}, names(r.ForLanguage("fr")))
}

const sttsYAML = `name: stts
languages: [de]
tags:
  - tag: NN
    pos: [CommonNoun]
  - tag: NE
    pos: [ProperNoun]
  - tag: ADJA
    categories: [Adjective]
  - tag: ART
    pos: [Article]
`

func TestLoadTagSet(t *testing.T) {
	ts, err := LoadTagSet(strings.NewReader(sttsYAML))
	require.NoError(t, err)
	assert.Equal(t, "stts", ts.Name)
	assert.Equal(t, []string{"de"}, ts.Languages)
	assert.Equal(t, 4, ts.Len())

	art, err := ts.Get("ART")
	require.NoError(t, err)
	assert.True(t, art.HasCategory(Determiner))

	_, err = LoadTagSet(strings.NewReader("name: bad\ntags:\n  - tag: X\n    pos: [Smurf]\n"))
	assert.True(t, errs.IsInvalid(err))
	_, err = LoadTagSet(strings.NewReader("tags: []\n"))
	assert.True(t, errs.IsInvalid(err))
}

func TestLoadTagSetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sttsYAML), 0o644))
	ts, err := LoadTagSetFile(path)
	require.NoError(t, err)
	assert.Equal(t, "stts", ts.Name)

	_, err = LoadTagSetFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPosTagJSON(t *testing.T) {
	penn := PennTreebank()
	vbg, err := penn.Get("VBG")
	require.NoError(t, err)

	data, err := json.Marshal(vbg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tag":"VBG","pos":["Gerund","PresentParticiple"]}`, string(data))

	var back PosTag
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, vbg, back)
}
