// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ontology is a small persistence store for OWL ontologies: named
// ontologies holding classes, individuals, object and datatype properties
// and the axioms between them, kept as triples in SQLite.
package ontology

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/stanbol/internal/errs"
	"github.com/pdiddy/stanbol/internal/vocabulary"
	"github.com/pdiddy/stanbol/pkg/types"
)

const dbFile = "ontology.db"

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the SQLite-backed ontology persistence store.
type Store struct {
	db      *sql.DB
	baseURL string
}

var _ PersistenceStore = (*Store)(nil)

// Open opens or creates the ontology database at cfg.Dir/ontology.db.
func Open(cfg types.OntologyConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ontology directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, baseURL: strings.TrimSuffix(cfg.BaseURL, "/")}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ontologies (
			path TEXT PRIMARY KEY,
			uri TEXT NOT NULL UNIQUE,
			description TEXT,
			created TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS resources (
			ontology TEXT NOT NULL REFERENCES ontologies(path) ON DELETE CASCADE,
			iri TEXT NOT NULL,
			kind TEXT NOT NULL,
			PRIMARY KEY (ontology, iri)
		)`,
		`CREATE TABLE IF NOT EXISTS triples (
			ontology TEXT NOT NULL REFERENCES ontologies(path) ON DELETE CASCADE,
			subject TEXT NOT NULL,
			predicate TEXT NOT NULL,
			object TEXT NOT NULL,
			literal INTEGER NOT NULL DEFAULT 0,
			datatype TEXT NOT NULL DEFAULT '',
			lang TEXT NOT NULL DEFAULT '',
			UNIQUE (ontology, subject, predicate, object, literal, datatype, lang)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_triples_object ON triples(ontology, object, predicate)`,
		`CREATE INDEX IF NOT EXISTS idx_resources_kind ON resources(ontology, kind)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// --- ontologies ---

func (s *Store) ontologyHref(path string) string {
	return s.baseURL + "/ontology/" + url.PathEscape(path)
}

func (s *Store) resourceHref(path string, kind Kind, iri string) string {
	return s.ontologyHref(path) + "/" + kind.Collection() + "/" + url.PathEscape(iri)
}

// ListOntologies returns the stored ontologies ordered by path.
func (s *Store) ListOntologies(ctx context.Context) ([]OntologyMetaInformation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, uri, description FROM ontologies ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("listing ontologies: %w", err)
	}
	defer rows.Close()

	out := []OntologyMetaInformation{}
	for rows.Next() {
		var m OntologyMetaInformation
		var desc sql.NullString
		if err := rows.Scan(&m.Path, &m.URI, &desc); err != nil {
			return nil, fmt.Errorf("scanning ontology: %w", err)
		}
		m.Description = desc.String
		m.Href = s.ontologyHref(m.Path)
		out = append(out, m)
	}
	return out, rows.Err()
}

// CreateOntology registers a new, empty ontology under path with base uri.
func (s *Store) CreateOntology(ctx context.Context, path, uri, description string) (OntologyMetaInformation, error) {
	if path == "" || strings.ContainsAny(path, "/?#") {
		return OntologyMetaInformation{}, errs.Invalidf("invalid ontology path %q", path)
	}
	if !isAbsolute(uri) {
		return OntologyMetaInformation{}, errs.Invalidf("ontology uri %q must be absolute", uri)
	}

	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM ontologies WHERE path = ? OR uri = ?`, path, uri,
	).Scan(&n); err != nil {
		return OntologyMetaInformation{}, fmt.Errorf("checking ontology: %w", err)
	}
	if n > 0 {
		return OntologyMetaInformation{}, errs.Conflictf("ontology %s (%s) already exists", path, uri)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO ontologies (path, uri, description, created) VALUES (?, ?, ?, ?)`,
		path, uri, description, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return OntologyMetaInformation{}, fmt.Errorf("inserting ontology: %w", err)
	}
	return OntologyMetaInformation{Path: path, URI: uri, Href: s.ontologyHref(path), Description: description}, nil
}

// GetOntology returns the meta information of the ontology at path.
func (s *Store) GetOntology(ctx context.Context, path string) (OntologyMetaInformation, error) {
	m := OntologyMetaInformation{Path: path}
	var desc sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT uri, description FROM ontologies WHERE path = ?`, path,
	).Scan(&m.URI, &desc)
	if err == sql.ErrNoRows {
		return m, errs.NotFoundf("ontology %s not found", path)
	}
	if err != nil {
		return m, fmt.Errorf("looking up ontology %s: %w", path, err)
	}
	m.Description = desc.String
	m.Href = s.ontologyHref(path)
	return m, nil
}

// DeleteOntology removes the ontology at path with all its resources and axioms.
func (s *Store) DeleteOntology(ctx context.Context, path string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ontologies WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("deleting ontology %s: %w", path, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFoundf("ontology %s not found", path)
	}
	return nil
}

// ClearAll removes every ontology.
func (s *Store) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM ontologies`); err != nil {
		return fmt.Errorf("clearing ontologies: %w", err)
	}
	return nil
}

// resolve turns ref into an absolute IRI: CURIEs with a registered prefix
// and absolute IRIs are kept, local names are appended to the ontology uri.
func resolve(ontologyURI, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errs.Invalidf("empty resource reference")
	}
	if expanded := vocabulary.Expand(ref); expanded != ref {
		return expanded, nil
	}
	if isAbsolute(ref) {
		return ref, nil
	}
	if strings.ContainsAny(ref, " <>\"") {
		return "", errs.Invalidf("invalid resource reference %q", ref)
	}
	if strings.HasSuffix(ontologyURI, "#") || strings.HasSuffix(ontologyURI, "/") {
		return ontologyURI + ref, nil
	}
	return ontologyURI + "#" + ref, nil
}

func isAbsolute(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && u.Scheme != ""
}

func (s *Store) ontologyURI(ctx context.Context, q querier, path string) (string, error) {
	var uri string
	err := q.QueryRowContext(ctx, `SELECT uri FROM ontologies WHERE path = ?`, path).Scan(&uri)
	if err == sql.ErrNoRows {
		return "", errs.NotFoundf("ontology %s not found", path)
	}
	if err != nil {
		return "", fmt.Errorf("looking up ontology %s: %w", path, err)
	}
	return uri, nil
}

// --- resources ---

func (s *Store) kindOf(ctx context.Context, q querier, path, iri string) (Kind, bool, error) {
	var kind string
	err := q.QueryRowContext(ctx,
		`SELECT kind FROM resources WHERE ontology = ? AND iri = ?`, path, iri,
	).Scan(&kind)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up resource %s: %w", iri, err)
	}
	return Kind(kind), true, nil
}

// lookup resolves ref inside the ontology at path and checks that it is
// declared with the given kind.
func (s *Store) lookup(ctx context.Context, q querier, path, ref string, kind Kind) (string, error) {
	uri, err := s.ontologyURI(ctx, q, path)
	if err != nil {
		return "", err
	}
	iri, err := resolve(uri, ref)
	if err != nil {
		return "", err
	}
	got, ok, err := s.kindOf(ctx, q, path, iri)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errs.NotFoundf("%s %s not found in ontology %s", kind, iri, path)
	}
	if got != kind {
		return "", errs.Invalidf("%s is a %s, not a %s", iri, got, kind)
	}
	return iri, nil
}

func (s *Store) createResource(ctx context.Context, path, ref string, kind Kind) (ResourceMetaInformation, error) {
	uri, err := s.ontologyURI(ctx, s.db, path)
	if err != nil {
		return ResourceMetaInformation{}, err
	}
	iri, err := resolve(uri, ref)
	if err != nil {
		return ResourceMetaInformation{}, err
	}
	if got, ok, err := s.kindOf(ctx, s.db, path, iri); err != nil {
		return ResourceMetaInformation{}, err
	} else if ok {
		return ResourceMetaInformation{}, errs.Conflictf("%s already declared as %s in ontology %s", iri, got, path)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO resources (ontology, iri, kind) VALUES (?, ?, ?)`, path, iri, string(kind),
	); err != nil {
		return ResourceMetaInformation{}, fmt.Errorf("declaring %s: %w", iri, err)
	}
	return s.meta(path, kind, iri), nil
}

func (s *Store) meta(path string, kind Kind, iri string) ResourceMetaInformation {
	return ResourceMetaInformation{URI: iri, Href: s.resourceHref(path, kind, iri), Kind: kind}
}

func (s *Store) listResources(ctx context.Context, path string, kind Kind) (ResourceList, error) {
	if _, err := s.ontologyURI(ctx, s.db, path); err != nil {
		return ResourceList{}, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT iri FROM resources WHERE ontology = ? AND kind = ? ORDER BY iri`, path, string(kind))
	if err != nil {
		return ResourceList{}, fmt.Errorf("listing %s: %w", kind.Collection(), err)
	}
	defer rows.Close()

	list := ResourceList{Ontology: path, Kind: kind, Resources: []ResourceMetaInformation{}}
	for rows.Next() {
		var iri string
		if err := rows.Scan(&iri); err != nil {
			return ResourceList{}, fmt.Errorf("scanning resource: %w", err)
		}
		list.Resources = append(list.Resources, s.meta(path, kind, iri))
	}
	return list, rows.Err()
}

// deleteResource removes the declaration of ref and every axiom that
// mentions it.
func (s *Store) deleteResource(ctx context.Context, path, ref string, kind Kind) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	iri, err := s.lookup(ctx, tx, path, ref, kind)
	if err != nil {
		return err
	}
	for _, stmt := range []string{
		`DELETE FROM resources WHERE ontology = ? AND iri = ?`,
		`DELETE FROM triples WHERE ontology = ?1 AND (subject = ?2 OR predicate = ?2 OR (object = ?2 AND literal = 0))`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, path, iri); err != nil {
			return fmt.Errorf("deleting %s: %w", iri, err)
		}
	}
	return tx.Commit()
}

// --- triples ---

type triple struct {
	subject, predicate, object string
	literal                    bool
	datatype, lang             string
}

func addTriple(ctx context.Context, q querier, path string, t triple) error {
	_, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO triples (ontology, subject, predicate, object, literal, datatype, lang)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		path, t.subject, t.predicate, t.object, t.literal, t.datatype, t.lang)
	if err != nil {
		return fmt.Errorf("adding axiom %s %s %s: %w", t.subject, t.predicate, t.object, err)
	}
	return nil
}

// removeTriple deletes t and reports ErrNotFound when it was not stored.
func removeTriple(ctx context.Context, q querier, path string, t triple) error {
	res, err := q.ExecContext(ctx,
		`DELETE FROM triples WHERE ontology = ? AND subject = ? AND predicate = ? AND object = ?
		 AND literal = ? AND datatype = ? AND lang = ?`,
		path, t.subject, t.predicate, t.object, t.literal, t.datatype, t.lang)
	if err != nil {
		return fmt.Errorf("removing axiom %s %s %s: %w", t.subject, t.predicate, t.object, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFoundf("axiom %s %s %s not found", t.subject, vocabulary.Shorten(t.predicate), t.object)
	}
	return nil
}

// objects returns the IRI objects of subject/predicate, sorted.
func objects(ctx context.Context, q querier, path, subject, predicate string) ([]string, error) {
	return column(ctx, q,
		`SELECT object FROM triples WHERE ontology = ? AND subject = ? AND predicate = ? AND literal = 0 ORDER BY object`,
		path, subject, predicate)
}

// subjects returns the subjects pointing at object through predicate, sorted.
func subjects(ctx context.Context, q querier, path, predicate, object string) ([]string, error) {
	return column(ctx, q,
		`SELECT subject FROM triples WHERE ontology = ? AND predicate = ? AND object = ? AND literal = 0 ORDER BY subject`,
		path, predicate, object)
}

func column(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying axioms: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning axiom: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// closure walks predicate (and owl:equivalentClass when follow is set)
// transitively from start. The result excludes start and is sorted.
func closure(ctx context.Context, q querier, path, start, predicate string, followEquivalent bool) ([]string, error) {
	seen := map[string]bool{start: true}
	queue := []string{start}
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		next, err := objects(ctx, q, path, cur, predicate)
		if err != nil {
			return nil, err
		}
		if followEquivalent {
			eq, err := objects(ctx, q, path, cur, vocabulary.OWLEquivalentClass)
			if err != nil {
				return nil, err
			}
			next = append(next, eq...)
		}
		for _, n := range next {
			if seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
			queue = append(queue, n)
		}
	}
	sort.Strings(out)
	if out == nil {
		out = []string{}
	}
	return out, nil
}
