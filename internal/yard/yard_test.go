// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package yard

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/stanbol/internal/errs"
	"github.com/pdiddy/stanbol/internal/vocabulary"
	"github.com/pdiddy/stanbol/pkg/types"
)

// --- test helpers ---

func testYard(t *testing.T) *SQLiteYard {
	t.Helper()
	y, err := Open(types.YardConfig{
		ID:           "test",
		Dir:          t.TempDir(),
		DefaultLimit: 10,
		MaxLimit:     100,
	})
	require.NoError(t, err)
	t.Cleanup(func() { y.Close() })
	return y
}

const (
	paris  = "http://sws.geonames.org/2988507/"
	berlin = "http://sws.geonames.org/2950159/"
	lyon   = "http://sws.geonames.org/2996944/"
	city   = vocabulary.Geonames + "P.PPLC"
	pop    = vocabulary.Geonames + "population"
)

func place(id, name string, population int64, labels map[string]string) *types.Representation {
	r := types.NewRepresentation(id)
	r.AddNaturalText(vocabulary.RDFSLabel, name)
	for lang, label := range labels {
		r.AddNaturalText(vocabulary.RDFSLabel, label, lang)
	}
	r.AddReference(vocabulary.RDFType, vocabulary.Geonames+"Feature")
	r.Add(pop, types.NewInt(population))
	r.Add(vocabulary.Geonames+"countryCode", types.NewString(strings.ToUpper(name[:2])))
	return r
}

func seed(t *testing.T, y *SQLiteYard) {
	t.Helper()
	p := place(paris, "Paris", 2138551, map[string]string{"de": "Paris", "it": "Parigi"})
	p.AddReference(vocabulary.Geonames+"featureCode", city)
	b := place(berlin, "Berlin", 3426354, map[string]string{"fr": "Berlin"})
	b.AddReference(vocabulary.Geonames+"featureCode", city)
	l := place(lyon, "Lyon", 522969, nil)
	l.Add(vocabulary.DCModified, types.NewTime(time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, y.StoreAll(context.Background(), []*types.Representation{p, b, l}))
}

func ptr(s string) *string { return &s }

// --- schema tests ---

func TestOpenCreatesDBFile(t *testing.T) {
	dir := t.TempDir()
	y, err := Open(types.YardConfig{ID: "x", Dir: dir})
	require.NoError(t, err)
	defer y.Close()

	_, err = os.Stat(filepath.Join(dir, dbFile))
	assert.NoError(t, err)
	assert.Equal(t, "x", y.Name(), "name defaults to id")
}

func TestOpenRequiresID(t *testing.T) {
	_, err := Open(types.YardConfig{Dir: t.TempDir()})
	assert.True(t, errs.IsInvalid(err))
}

// --- CRUD tests ---

func TestCreateGeneratesID(t *testing.T) {
	y := testYard(t)
	a := y.Create("")
	b := y.Create("")
	assert.True(t, strings.HasPrefix(a.ID, "urn:test:"))
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "urn:fixed", y.Create("urn:fixed").ID)
}

func TestStoreAndGet(t *testing.T) {
	y := testYard(t)
	ctx := context.Background()

	rep := place(paris, "Paris", 2138551, map[string]string{"it": "Parigi"})
	rep.Add(vocabulary.WGS84+"lat", types.NewDouble(48.85341))
	rep.Add(vocabulary.Entity+"isChecked", types.NewBool(true))
	require.NoError(t, y.Store(ctx, rep))

	got, err := y.Get(ctx, paris)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, got.ID)
	assert.Equal(t, rep.FieldNames(), got.FieldNames())
	for _, f := range rep.FieldNames() {
		assert.ElementsMatch(t, rep.Get(f), got.Get(f), "field %s", f)
	}
	assert.Equal(t, []types.Value{types.NewText("Parigi", "it")}, got.GetText(vocabulary.RDFSLabel, "it"))
}

func TestStoreCurieFieldsExpand(t *testing.T) {
	y := testYard(t)
	ctx := context.Background()

	rep := types.NewRepresentation("urn:a")
	rep.AddNaturalText("rdfs:label", "A", "en")
	require.NoError(t, y.Store(ctx, rep))

	got, err := y.Get(ctx, "urn:a")
	require.NoError(t, err)
	assert.Equal(t, []string{vocabulary.RDFSLabel}, got.FieldNames())
}

func TestStoreReplaces(t *testing.T) {
	y := testYard(t)
	ctx := context.Background()

	rep := types.NewRepresentation("urn:a")
	rep.AddNaturalText(vocabulary.RDFSLabel, "old")
	require.NoError(t, y.Store(ctx, rep))

	rep2 := types.NewRepresentation("urn:a")
	rep2.AddNaturalText(vocabulary.RDFSComment, "new")
	require.NoError(t, y.Store(ctx, rep2))

	got, err := y.Get(ctx, "urn:a")
	require.NoError(t, err)
	assert.Equal(t, []string{vocabulary.RDFSComment}, got.FieldNames())

	found, err := y.FindByName(ctx, "old", "", nil, 0)
	require.NoError(t, err)
	assert.Empty(t, found, "text index must drop replaced values")
}

func TestStoreRejectsInvalid(t *testing.T) {
	y := testYard(t)
	ctx := context.Background()

	tests := []struct {
		name string
		rep  *types.Representation
	}{
		{"nil", nil},
		{"empty id", types.NewRepresentation("")},
		{"bad int", &types.Representation{ID: "urn:x", Fields: map[string][]types.Value{
			pop: {{Type: types.TypeLong, Value: "many"}},
		}}},
		{"unknown type", &types.Representation{ID: "urn:x", Fields: map[string][]types.Value{
			pop: {{Type: "xsd:weird", Value: "1"}},
		}}},
		{"language with slash", &types.Representation{ID: "urn:x", Fields: map[string][]types.Value{
			vocabulary.RDFSLabel: {types.NewText("Wien", "de/AT")},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := y.Store(ctx, tt.rep)
			assert.True(t, errs.IsInvalid(err), "got %v", err)
			if tt.rep != nil && tt.rep.ID != "" {
				ok, err := y.Contains(ctx, tt.rep.ID)
				require.NoError(t, err)
				assert.False(t, ok)
			}
		})
	}
}

func TestStoreAllIsAtomic(t *testing.T) {
	y := testYard(t)
	ctx := context.Background()

	good := types.NewRepresentation("urn:good")
	good.Add(pop, types.NewInt(1))
	bad := types.NewRepresentation("")
	require.Error(t, y.StoreAll(ctx, []*types.Representation{good, bad}))

	n, err := y.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetMissing(t *testing.T) {
	y := testYard(t)
	_, err := y.Get(context.Background(), "urn:missing")
	assert.True(t, errs.IsNotFound(err))
}

func TestUpdate(t *testing.T) {
	y := testYard(t)
	ctx := context.Background()

	rep := types.NewRepresentation("urn:a")
	rep.Add(pop, types.NewInt(1))
	err := y.Update(ctx, rep)
	assert.True(t, errs.IsNotFound(err), "update of missing representation: %v", err)

	require.NoError(t, y.Store(ctx, rep))
	rep.Set(pop, types.NewInt(2))
	require.NoError(t, y.Update(ctx, rep))

	got, err := y.Get(ctx, "urn:a")
	require.NoError(t, err)
	v, ok := got.GetFirst(pop)
	require.True(t, ok)
	n, err := v.Int()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestRemove(t *testing.T) {
	y := testYard(t)
	ctx := context.Background()
	seed(t, y)

	require.NoError(t, y.Remove(ctx, paris))
	require.NoError(t, y.Remove(ctx, "urn:never-stored"))

	ok, err := y.Contains(ctx, paris)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, y.RemoveAll(ctx, []string{berlin, lyon}))
	n, err := y.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClear(t *testing.T) {
	y := testYard(t)
	ctx := context.Background()
	seed(t, y)

	require.NoError(t, y.Clear(ctx))
	n, err := y.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// --- query tests ---

func TestFind(t *testing.T) {
	y := testYard(t)
	seed(t, y)

	tests := []struct {
		name  string
		field string
		c     types.Constraint
		want  []string
	}{
		{"reference any", vocabulary.Geonames + "featureCode",
			types.Constraint{Type: types.ConstraintReference, Values: []string{city}},
			[]string{berlin, paris}},
		{"value typed", pop,
			types.Constraint{Type: types.ConstraintValue, DataType: types.TypeLong, Values: []string{"522969"}},
			[]string{lyon}},
		{"value untyped", vocabulary.Geonames + "countryCode",
			types.Constraint{Type: types.ConstraintValue, Values: []string{"BE", "LY"}},
			[]string{berlin, lyon}},
		{"text exact case insensitive", vocabulary.RDFSLabel,
			types.Constraint{Type: types.ConstraintText, Values: []string{"parigi"}},
			[]string{paris}},
		{"text case sensitive misses", vocabulary.RDFSLabel,
			types.Constraint{Type: types.ConstraintText, Values: []string{"parigi"}, CaseSensitive: true},
			nil},
		{"text language filter", vocabulary.RDFSLabel,
			types.Constraint{Type: types.ConstraintText, Values: []string{"Berlin"}, Languages: []string{"fr"}},
			[]string{berlin}},
		{"text language filter misses", vocabulary.RDFSLabel,
			types.Constraint{Type: types.ConstraintText, Values: []string{"Lyon"}, Languages: []string{"fr"}},
			nil},
		{"wildcard", vocabulary.RDFSLabel,
			types.Constraint{Type: types.ConstraintText, Values: []string{"p*"}, PatternType: types.PatternWildcard},
			[]string{paris}},
		{"wildcard case sensitive", vocabulary.RDFSLabel,
			types.Constraint{Type: types.ConstraintText, Values: []string{"?yon"}, PatternType: types.PatternWildcard, CaseSensitive: true},
			[]string{lyon}},
		{"regex", vocabulary.RDFSLabel,
			types.Constraint{Type: types.ConstraintText, Values: []string{"^(ber|ly)"}, PatternType: types.PatternRegex},
			[]string{berlin, lyon}},
		{"range numeric inclusive", pop,
			types.Constraint{Type: types.ConstraintRange, Lower: ptr("522969"), Upper: ptr("2138551"), Inclusive: true},
			[]string{paris, lyon}},
		{"range numeric exclusive", pop,
			types.Constraint{Type: types.ConstraintRange, Lower: ptr("522969"), Upper: ptr("2138551")},
			nil},
		{"range open upper", pop,
			types.Constraint{Type: types.ConstraintRange, Lower: ptr("3000000")},
			[]string{berlin}},
		{"range dateTime", vocabulary.DCModified,
			types.Constraint{Type: types.ConstraintRange, DataType: types.TypeDateTime, Lower: ptr("2020-01-01T00:00:00Z")},
			[]string{lyon}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := types.NewFieldQuery().SetConstraint(tt.field, tt.c)
			ids, err := y.FindReferences(context.Background(), *q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFindModeAll(t *testing.T) {
	y := testYard(t)
	seed(t, y)

	q := types.NewFieldQuery().SetConstraint(vocabulary.RDFSLabel, types.Constraint{
		Type: types.ConstraintText, Values: []string{"Paris", "Parigi"}, Mode: types.ModeAll,
	})
	ids, err := y.FindReferences(context.Background(), *q)
	require.NoError(t, err)
	assert.Equal(t, []string{paris}, ids)

	q.SetConstraint(vocabulary.RDFSLabel, types.Constraint{
		Type: types.ConstraintText, Values: []string{"Paris", "Berlin"}, Mode: types.ModeAll,
	})
	ids, err = y.FindReferences(context.Background(), *q)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFindCombinedConstraints(t *testing.T) {
	y := testYard(t)
	seed(t, y)

	q := types.NewFieldQuery().
		SetConstraint(vocabulary.Geonames+"featureCode", types.Constraint{Type: types.ConstraintReference, Values: []string{city}}).
		SetConstraint(pop, types.Constraint{Type: types.ConstraintRange, Upper: ptr("3000000")})
	ids, err := y.FindReferences(context.Background(), *q)
	require.NoError(t, err)
	assert.Equal(t, []string{paris}, ids)
}

func TestFindSelectedAndPaging(t *testing.T) {
	y := testYard(t)
	seed(t, y)
	ctx := context.Background()

	q := types.FieldQuery{Limit: 2, Selected: []string{"rdfs:label"}}
	page1, err := y.Find(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 2, page1.Len())
	assert.Equal(t, []string{berlin, paris}, page1.IDs())
	for _, r := range page1.Results {
		assert.Equal(t, []string{vocabulary.RDFSLabel}, r.FieldNames())
	}

	q.Offset = 2
	page2, err := y.Find(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{lyon}, page2.IDs())
}

func TestFindLimitClamped(t *testing.T) {
	y := testYard(t)
	seed(t, y)

	result, err := y.Find(context.Background(), types.FieldQuery{Limit: 100000})
	require.NoError(t, err)
	assert.Equal(t, 100, result.Query.Limit)

	result, err = y.Find(context.Background(), types.FieldQuery{})
	require.NoError(t, err)
	assert.Equal(t, 10, result.Query.Limit)
}

func TestFindInvalid(t *testing.T) {
	y := testYard(t)
	tests := []struct {
		name string
		q    types.FieldQuery
	}{
		{"negative offset", types.FieldQuery{Offset: -1}},
		{"unknown constraint", *types.NewFieldQuery().SetConstraint("rdfs:label", types.Constraint{Type: "fuzzy", Values: []string{"x"}})},
		{"no values", *types.NewFieldQuery().SetConstraint("rdfs:label", types.Constraint{Type: types.ConstraintText})},
		{"bad regex", *types.NewFieldQuery().SetConstraint("rdfs:label", types.Constraint{
			Type: types.ConstraintText, Values: []string{"("}, PatternType: types.PatternRegex})},
		{"range without bounds", *types.NewFieldQuery().SetConstraint(pop, types.Constraint{Type: types.ConstraintRange})},
		{"bad numeric value", *types.NewFieldQuery().SetConstraint(pop, types.Constraint{
			Type: types.ConstraintValue, DataType: types.TypeLong, Values: []string{"lots"}})},
		{"bad mode", *types.NewFieldQuery().SetConstraint(pop, types.Constraint{
			Type: types.ConstraintValue, Values: []string{"1"}, Mode: "some"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := y.Find(context.Background(), tt.q)
			assert.True(t, errs.IsInvalid(err), "got %v", err)
		})
	}
}

func TestFindByName(t *testing.T) {
	y := testYard(t)
	seed(t, y)
	ctx := context.Background()

	found, err := y.FindByName(ctx, "parigi", "", nil, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, paris, found[0].ID)

	found, err = y.FindByName(ctx, "Berlin", "rdfs:label", []string{"fr"}, 5)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, berlin, found[0].ID)

	found, err = y.FindByName(ctx, "Parigi", "", []string{"de"}, 5)
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = y.FindByName(ctx, "  ", "", nil, 0)
	assert.True(t, errs.IsInvalid(err))
}

// --- export tests ---

func TestExportImport(t *testing.T) {
	src := testYard(t)
	seed(t, src)
	ctx := context.Background()

	for _, format := range []ExportFormat{FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			n, err := Export(ctx, src, types.FieldQuery{}, format, &buf)
			require.NoError(t, err)
			assert.Equal(t, 3, n)

			dst := testYard(t)
			imported, err := Import(ctx, dst, &buf)
			require.NoError(t, err)
			assert.Equal(t, 3, imported)

			got, err := dst.Get(ctx, paris)
			require.NoError(t, err)
			want, err := src.Get(ctx, paris)
			require.NoError(t, err)
			assert.Equal(t, want.FieldNames(), got.FieldNames())
		})
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	y := testYard(t)
	seed(t, y)

	// A cancelled context makes any query fail, so an Invalid error shows
	// the format is rejected before the yard is read.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	n, err := Export(ctx, y, types.FieldQuery{}, "csv", &buf)
	assert.True(t, errs.IsInvalid(err), "got %v", err)
	assert.Zero(t, n)
	assert.Empty(t, buf.String())
}

func TestRegexpCacheIsBounded(t *testing.T) {
	c := newRegexpCache(4)
	first, err := c.compile("^a")
	require.NoError(t, err)
	again, err := c.compile("^a")
	require.NoError(t, err)
	assert.Same(t, first, again)

	for i := 0; i < 10; i++ {
		_, err := c.compile(fmt.Sprintf("^p%d$", i))
		require.NoError(t, err)
		assert.LessOrEqual(t, c.size(), 4)
	}

	_, err = c.compile("(")
	assert.Error(t, err)
	assert.LessOrEqual(t, c.size(), 4)
}
