// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/stanbol/internal/ontology"
	"github.com/pdiddy/stanbol/internal/yard"
	"github.com/pdiddy/stanbol/pkg/types"
)

const (
	zooURI   = "http://example.org/zoo#"
	mimeForm = "application/x-www-form-urlencoded"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testServer(t *testing.T, token string) http.Handler {
	t.Helper()
	store, err := ontology.Open(types.OntologyConfig{Dir: t.TempDir(), BaseURL: "http://localhost:8080/"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	y, err := yard.Open(types.YardConfig{ID: "test", Name: "Test yard", Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { y.Close() })

	s := New(types.ServerConfig{APIToken: token, CORSOrigins: []string{"http://localhost:3000/"}}, Deps{
		Ontologies: store,
		Yard:       y,
		Version:    "test",
	})
	return s.Handler()
}

type request struct {
	method  string
	target  string
	body    string
	ctype   string
	headers map[string]string
}

func do(t *testing.T, h http.Handler, r request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	}
	req := httptest.NewRequest(r.method, r.target, body)
	if r.ctype != "" {
		req.Header.Set("Content-Type", r.ctype)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func form(method, target string, values url.Values) request {
	return request{method: method, target: target, body: values.Encode(), ctype: mimeForm}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// zoo creates the zoo ontology with Dog ⊑ Animal.
func zoo(t *testing.T, h http.Handler) {
	t.Helper()
	w := do(t, h, form(http.MethodPost, "/ontology", url.Values{"path": {"zoo"}, "uri": {zooURI}, "description": {"test zoo"}}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	for _, c := range []string{"Animal", "Dog"} {
		w := do(t, h, form(http.MethodPost, "/ontology/zoo/classes", url.Values{"classURI": {c}}))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w = do(t, h, form(http.MethodPost, "/ontology/zoo/classes/Dog/superClasses", url.Values{"classURI": {"Animal"}}))
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
}

func TestHealth(t *testing.T) {
	h := testServer(t, "")
	w := do(t, h, request{method: http.MethodGet, target: "/health"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := testServer(t, "")
	do(t, h, request{method: http.MethodGet, target: "/health"})
	w := do(t, h, request{method: http.MethodGet, target: "/metrics"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stanbol_http_requests_total")
}

func TestOntologyLifecycle(t *testing.T) {
	h := testServer(t, "")
	zoo(t, h)

	w := do(t, h, request{method: http.MethodGet, target: "/ontology"})
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[ontology.AdministeredOntologies](t, w)
	require.Len(t, list.Ontologies, 1)
	assert.Equal(t, "zoo", list.Ontologies[0].Path)
	assert.Equal(t, "http://localhost:8080/ontology/zoo", list.Ontologies[0].Href)

	w = do(t, h, request{method: http.MethodGet, target: "/ontology/zoo/classes/" + url.PathEscape(zooURI+"Dog")})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ctx := decode[ontology.ClassContext](t, w)
	assert.Equal(t, zooURI+"Dog", ctx.Class.URI)
	assert.Equal(t, []string{zooURI + "Animal"}, ctx.SuperClasses)

	w = do(t, h, request{method: http.MethodGet, target: "/ontology/zoo/classes/Dog/subsumers"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uris":["http://example.org/zoo#Animal"]}`, w.Body.String())

	w = do(t, h, request{method: http.MethodDelete, target: "/ontology/zoo"})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, request{method: http.MethodGet, target: "/ontology/zoo"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOntologyErrorStatus(t *testing.T) {
	h := testServer(t, "")
	zoo(t, h)

	tests := []struct {
		name string
		req  request
		want int
	}{
		{"missing ontology", request{method: http.MethodGet, target: "/ontology/farm/classes"}, http.StatusNotFound},
		{"missing class", request{method: http.MethodGet, target: "/ontology/zoo/classes/Cat"}, http.StatusNotFound},
		{"duplicate ontology", form(http.MethodPost, "/ontology", url.Values{"path": {"zoo"}, "uri": {"http://example.org/other"}}), http.StatusConflict},
		{"duplicate class", form(http.MethodPost, "/ontology/zoo/classes", url.Values{"classURI": {"Dog"}}), http.StatusConflict},
		{"relative ontology uri", form(http.MethodPost, "/ontology", url.Values{"path": {"farm"}, "uri": {"farm"}}), http.StatusBadRequest},
		{"missing classURI", form(http.MethodPost, "/ontology/zoo/classes", url.Values{}), http.StatusBadRequest},
		{"malformed JSON", request{method: http.MethodPost, target: "/ontology/zoo/classes", body: "{", ctype: "application/json"}, http.StatusBadRequest},
		{"self subclass", form(http.MethodPost, "/ontology/zoo/classes/Dog/superClasses", url.Values{"classURI": {"Dog"}}), http.StatusBadRequest},
		{"remove missing relation", request{method: http.MethodDelete, target: "/ontology/zoo/classes/Animal/superClasses?classURI=Dog"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.NotEmpty(t, decode[map[string]string](t, w)["error"])
		})
	}
}

func TestJSONRequestBody(t *testing.T) {
	h := testServer(t, "")
	w := do(t, h, request{
		method: http.MethodPost, target: "/ontology", ctype: "application/json",
		body: `{"path":"zoo","uri":"http://example.org/zoo#"}`,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "http://localhost:8080/ontology/zoo", w.Header().Get("Location"))
}

func TestDeleteWithFormBody(t *testing.T) {
	h := testServer(t, "")
	zoo(t, h)
	body := url.Values{"classURI": {"Animal"}}

	w := do(t, h, form(http.MethodDelete, "/ontology/zoo/classes/Dog/superClasses", body))
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, h, request{method: http.MethodGet, target: "/ontology/zoo/classes/Dog"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decode[ontology.ClassContext](t, w).SuperClasses)

	w = do(t, h, form(http.MethodDelete, "/ontology/zoo/classes/Dog/superClasses", body))
	assert.Equal(t, http.StatusNotFound, w.Code, "the relation is gone: %s", w.Body.String())

	w = do(t, h, request{method: http.MethodDelete, target: "/ontology/zoo/classes/Dog/superClasses", body: "classURI=%zz", ctype: mimeForm})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestXMLNegotiation(t *testing.T) {
	h := testServer(t, "")
	zoo(t, h)
	xmlAccept := map[string]string{"Accept": "application/xml"}

	w := do(t, h, request{method: http.MethodGet, target: "/ontology", headers: xmlAccept})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")
	assert.Contains(t, w.Body.String(), `<OntologyMetaInformation path="zoo">`)

	w = do(t, h, request{method: http.MethodGet, target: "/ontology/farm", headers: xmlAccept})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "<error><message>")
}

func TestIndividualsAndAssertions(t *testing.T) {
	h := testServer(t, "")
	zoo(t, h)

	steps := []struct {
		req  request
		want int
	}{
		{form(http.MethodPost, "/ontology/zoo/datatypeProperties", url.Values{"propertyURI": {"age"}}), http.StatusCreated},
		{form(http.MethodPost, "/ontology/zoo/datatypeProperties/age/ranges", url.Values{"rangeURI": {"xsd:int"}}), http.StatusNoContent},
		{form(http.MethodPost, "/ontology/zoo/objectProperties", url.Values{"propertyURI": {"likes"}}), http.StatusCreated},
		{form(http.MethodPost, "/ontology/zoo/objectProperties/likes/domains", url.Values{"classURI": {"Dog"}}), http.StatusNoContent},
		{form(http.MethodPost, "/ontology/zoo/individuals", url.Values{"individualURI": {"rex"}, "classURI": {"Dog"}}), http.StatusCreated},
		{form(http.MethodPost, "/ontology/zoo/individuals", url.Values{"individualURI": {"fido"}, "classURI": {"Dog"}}), http.StatusCreated},
		{form(http.MethodPost, "/ontology/zoo/individuals/rex/propertyAssertions", url.Values{"propertyURI": {"age"}, "value": {"3"}, "datatype": {"xsd:int"}}), http.StatusNoContent},
		{form(http.MethodPost, "/ontology/zoo/individuals/rex/propertyAssertions", url.Values{"propertyURI": {"likes"}, "objectURI": {"fido"}}), http.StatusNoContent},
		{form(http.MethodPost, "/ontology/zoo/individuals/rex/propertyAssertions", url.Values{"propertyURI": {"likes"}}), http.StatusBadRequest},
		{form(http.MethodPost, "/ontology/zoo/individuals/rex/propertyAssertions", url.Values{"propertyURI": {"age"}, "value": {"three"}, "datatype": {"xsd:int"}}), http.StatusBadRequest},
	}
	for _, s := range steps {
		w := do(t, h, s.req)
		require.Equal(t, s.want, w.Code, "%s %s: %s", s.req.method, s.req.target, w.Body.String())
	}

	w := do(t, h, request{method: http.MethodGet, target: "/ontology/zoo/individuals/rex"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ind := decode[ontology.IndividualContext](t, w)
	assert.Equal(t, []string{zooURI + "Dog"}, ind.ContainerClasses)
	assert.Equal(t, []string{zooURI + "Animal"}, ind.InferredClasses)
	require.Len(t, ind.PropertyAssertions, 2)

	w = do(t, h, request{method: http.MethodDelete, target: "/ontology/zoo/individuals/rex/propertyAssertions?propertyURI=likes&objectURI=fido"})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = do(t, h, request{method: http.MethodGet, target: "/ontology/zoo/individuals/rex"})
	assert.Len(t, decode[ontology.IndividualContext](t, w).PropertyAssertions, 1)

	w = do(t, h, request{method: http.MethodGet, target: "/ontology/zoo/individuals"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[ontology.ResourceList](t, w).Resources, 2)
}

func TestCharacteristics(t *testing.T) {
	h := testServer(t, "")
	zoo(t, h)
	w := do(t, h, form(http.MethodPost, "/ontology/zoo/objectProperties", url.Values{"propertyURI": {"ancestorOf"}}))
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, h, form(http.MethodPost, "/ontology/zoo/datatypeProperties", url.Values{"propertyURI": {"name"}}))
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, form(http.MethodPut, "/ontology/zoo/objectProperties/ancestorOf/characteristics", url.Values{"transitive": {"true"}}))
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = do(t, h, request{method: http.MethodGet, target: "/ontology/zoo/objectProperties/ancestorOf"})
	require.Equal(t, http.StatusOK, w.Code)
	prop := decode[ontology.PropertyContext](t, w)
	assert.True(t, prop.Transitive)
	assert.False(t, prop.Functional)

	w = do(t, h, form(http.MethodPut, "/ontology/zoo/datatypeProperties/name/characteristics", url.Values{"symmetric": {"true"}}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, request{method: http.MethodGet, target: "/ontology/zoo/datatypeProperties/ancestorOf"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "object property read as datatype property")
}

func TestTriplesRoundTrip(t *testing.T) {
	h := testServer(t, "")
	zoo(t, h)

	w := do(t, h, request{method: http.MethodGet, target: "/ontology/zoo/triples"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mimeNTriples, w.Header().Get("Content-Type"))
	exported := w.Body.String()
	assert.Contains(t, exported, "<http://example.org/zoo#Dog> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/zoo#Animal> .")

	w = do(t, h, form(http.MethodPost, "/ontology", url.Values{"path": {"copy"}, "uri": {zooURI}}))
	require.Equal(t, http.StatusConflict, w.Code, "ontology uris are unique")
	w = do(t, h, form(http.MethodPost, "/ontology", url.Values{"path": {"copy"}, "uri": {"http://example.org/copy"}}))
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, request{method: http.MethodPost, target: "/ontology/copy/triples", body: exported, ctype: mimeNTriples})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Positive(t, decode[importResult](t, w).Stored)

	w = do(t, h, request{method: http.MethodGet, target: "/ontology/copy/classes/" + url.PathEscape(zooURI+"Dog")})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, request{method: http.MethodPost, target: "/ontology/copy/triples", body: "not n-triples", ctype: mimeNTriples})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTokenAuth(t *testing.T) {
	h := testServer(t, "s3cret")
	create := form(http.MethodPost, "/ontology", url.Values{"path": {"zoo"}, "uri": {zooURI}})

	w := do(t, h, create)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	create.headers = map[string]string{"Authorization": "Bearer wrong"}
	w = do(t, h, create)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	create.headers = map[string]string{"Authorization": "Bearer s3cret"}
	w = do(t, h, create)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, request{method: http.MethodGet, target: "/ontology/zoo"})
	assert.Equal(t, http.StatusOK, w.Code, "reads need no token")
}

func TestInvalidTrustedProxiesAreLogged(t *testing.T) {
	var buf bytes.Buffer
	saved := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = saved })

	h := New(types.ServerConfig{TrustedProxies: []string{"not-an-ip"}}, Deps{Version: "test"}).Handler()
	assert.Contains(t, buf.String(), "invalid trusted proxies")

	w := do(t, h, request{method: http.MethodGet, target: "/health", headers: map[string]string{"X-Forwarded-For": "203.0.113.7"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), `"client_ip":"192.0.2.1"`, "forwarding headers are ignored")
}

func TestCORS(t *testing.T) {
	h := testServer(t, "")
	w := do(t, h, request{method: http.MethodGet, target: "/health", headers: map[string]string{"Origin": "http://localhost:3000"}})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestYardEndpoints(t *testing.T) {
	h := testServer(t, "")
	const paris = "http://sws.geonames.org/2988507/"
	body := `{"id":"` + paris + `","fields":{
		"rdfs:label":[{"type":"text","value":"Paris","lang":"fr"},{"type":"text","value":"Parigi","lang":"it"}],
		"http://www.geonames.org/ontology#population":[{"type":"xsd:long","value":"2138551"}]}}`

	w := do(t, h, request{method: http.MethodPost, target: "/yard/entity", body: body, ctype: "application/json"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, request{method: http.MethodGet, target: "/yard/entity?id=" + url.QueryEscape(paris)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rep := decode[types.Representation](t, w)
	assert.Equal(t, paris, rep.ID)
	assert.Len(t, rep.GetText("http://www.w3.org/2000/01/rdf-schema#label"), 2)

	w = do(t, h, request{method: http.MethodGet, target: "/yard/find?name=parigi&lang=it"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{paris}, decode[types.QueryResultList](t, w).IDs())

	w = do(t, h, request{method: http.MethodPost, target: "/yard/query", ctype: "application/json", body: `{
		"constraints":{"rdfs:label":{"type":"text","values":["paris"]}},"limit":5}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{paris}, decode[types.QueryResultList](t, w).IDs())

	w = do(t, h, request{method: http.MethodPut, target: "/yard/entity", ctype: "application/json",
		body: `{"id":"http://sws.geonames.org/1/","fields":{"rdfs:label":[{"type":"text","value":"Nowhere"}]}}`})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, request{method: http.MethodPost, target: "/yard/entity", ctype: "application/json",
		body: `{"fields":{"rdfs:label":[{"type":"text","value":"Anonymous"}]}}`})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, strings.HasPrefix(decode[types.Representation](t, w).ID, "urn:test:"))

	w = do(t, h, request{method: http.MethodGet, target: "/yard"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[yardInfo](t, w).Count)

	w = do(t, h, request{method: http.MethodDelete, target: "/yard/entity?id=*"})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, request{method: http.MethodGet, target: "/yard/entity?id=" + url.QueryEscape(paris)})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, request{method: http.MethodGet, target: "/yard/entity"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, h, request{method: http.MethodGet, target: "/yard/find?name=x&limit=many"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTagSetEndpoints(t *testing.T) {
	h := testServer(t, "")

	w := do(t, h, request{method: http.MethodGet, target: "/nlp/tagsets"})
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[tagSetList](t, w)
	require.Len(t, list.TagSets, 2)
	assert.Equal(t, "penn", list.TagSets[0].Name)
	assert.Equal(t, "universal", list.TagSets[1].Name)

	w = do(t, h, request{method: http.MethodGet, target: "/nlp/tagsets?lang=de"})
	require.Equal(t, http.StatusOK, w.Code)
	list = decode[tagSetList](t, w)
	require.Len(t, list.TagSets, 1)
	assert.Equal(t, "universal", list.TagSets[0].Name)

	w = do(t, h, request{method: http.MethodGet, target: "/nlp/tagsets/penn/tags/NNP"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tag struct {
		Tag           string   `json:"tag"`
		Pos           []string `json:"pos"`
		AllCategories []string `json:"all_categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tag))
	assert.Equal(t, "NNP", tag.Tag)
	assert.Equal(t, []string{"ProperNoun"}, tag.Pos)
	assert.Equal(t, []string{"Noun"}, tag.AllCategories)

	w = do(t, h, request{method: http.MethodGet, target: "/nlp/tagsets/penn/tags/XYZ"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, request{method: http.MethodGet, target: "/nlp/tagsets/stts"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
