// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package yard stores Representations and answers field queries against
// them. The SQLite implementation keeps one row per indexed value, named
// through the FieldMapper, plus an FTS5 index over natural-language text.
package yard

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/pdiddy/stanbol/internal/errs"
	"github.com/pdiddy/stanbol/pkg/types"
)

const (
	dbFile       = "yard.db"
	driverName   = "sqlite3_stanbol"
	defaultLimit = 10
	maxLimit     = 1024
)

// Yard is an entity store.
type Yard interface {
	ID() string
	Name() string
	Description() string

	// Create returns a new empty Representation. An empty id generates one.
	Create(id string) *types.Representation

	Get(ctx context.Context, id string) (*types.Representation, error)
	Contains(ctx context.Context, id string) (bool, error)
	Store(ctx context.Context, rep *types.Representation) error
	StoreAll(ctx context.Context, reps []*types.Representation) error
	Update(ctx context.Context, rep *types.Representation) error
	Remove(ctx context.Context, id string) error
	RemoveAll(ctx context.Context, ids []string) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)

	Find(ctx context.Context, q types.FieldQuery) (types.QueryResultList, error)
	FindReferences(ctx context.Context, q types.FieldQuery) ([]string, error)
	FindByName(ctx context.Context, name, field string, langs []string, limit int) ([]*types.Representation, error)
}

var registerDriver sync.Once

// register installs a sqlite3 driver variant with a regexp(pattern, value)
// function, which backs the REGEXP operator.
func register() {
	registerDriver.Do(func() {
		cache := newRegexpCache(regexpCacheSize)
		sql.Register(driverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("regexp", func(pattern, value string) (bool, error) {
					re, err := cache.compile(pattern)
					if err != nil {
						return false, err
					}
					return re.MatchString(value), nil
				}, true)
			},
		})
	})
}

// regexpCacheSize bounds the compiled patterns shared by all connections.
const regexpCacheSize = 128

// regexpCache holds compiled patterns. When full it is emptied before the
// next pattern is added.
type regexpCache struct {
	mu       sync.Mutex
	max      int
	patterns map[string]*regexp.Regexp
}

func newRegexpCache(max int) *regexpCache {
	return &regexpCache{max: max, patterns: make(map[string]*regexp.Regexp, max)}
}

func (c *regexpCache) compile(pattern string) (*regexp.Regexp, error) {
	c.mu.Lock()
	re, ok := c.patterns[pattern]
	c.mu.Unlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if len(c.patterns) >= c.max {
		clear(c.patterns)
	}
	c.patterns[pattern] = re
	c.mu.Unlock()
	return re, nil
}

func (c *regexpCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.patterns)
}

// SQLiteYard is a Yard backed by an SQLite database.
type SQLiteYard struct {
	db           *sql.DB
	id           string
	name         string
	description  string
	defaultLimit int
	maxLimit     int
	mapper       FieldMapper
}

var _ Yard = (*SQLiteYard)(nil)

// Open opens or creates the yard database at cfg.Dir/yard.db and creates
// the schema if it does not exist.
func Open(cfg types.YardConfig) (*SQLiteYard, error) {
	if cfg.ID == "" {
		return nil, errs.Invalidf("yard id is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating yard directory: %w", err)
	}

	register()
	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open(driverName, dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	y := &SQLiteYard{
		db:           db,
		id:           cfg.ID,
		name:         cfg.Name,
		description:  cfg.Description,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
	}
	if y.name == "" {
		y.name = cfg.ID
	}
	if y.defaultLimit <= 0 {
		y.defaultLimit = defaultLimit
	}
	if y.maxLimit <= 0 {
		y.maxLimit = maxLimit
	}
	if y.defaultLimit > y.maxLimit {
		y.defaultLimit = y.maxLimit
	}

	if err := y.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return y, nil
}

// Close releases the database connection.
func (y *SQLiteYard) Close() error {
	return y.db.Close()
}

func (y *SQLiteYard) ID() string          { return y.id }
func (y *SQLiteYard) Name() string        { return y.name }
func (y *SQLiteYard) Description() string { return y.description }

func (y *SQLiteYard) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			domain TEXT NOT NULL,
			updated TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS field_values (
			doc TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			field TEXT NOT NULL,
			value TEXT NOT NULL,
			num REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_values_doc ON field_values(doc, position)`,
		`CREATE INDEX IF NOT EXISTS idx_values_field ON field_values(field, name, value)`,
		`CREATE INDEX IF NOT EXISTS idx_values_num ON field_values(field, name, num)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS text_fts USING fts5(
			value, field UNINDEXED, lang UNINDEXED, doc UNINDEXED
		)`,
	}
	for _, stmt := range statements {
		if _, err := y.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Create returns a new empty Representation. An empty id generates
// urn:<yard-id>:<uuid>.
func (y *SQLiteYard) Create(id string) *types.Representation {
	if id == "" {
		id = "urn:" + y.id + ":" + uuid.NewString()
	}
	return types.NewRepresentation(id)
}

// Get loads the representation with the given id.
func (y *SQLiteYard) Get(ctx context.Context, id string) (*types.Representation, error) {
	defer observe("get", time.Now())
	if id == "" {
		return nil, errs.Invalidf("empty representation id")
	}
	reps, err := y.load(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	rep, ok := reps[id]
	if !ok {
		return nil, errs.NotFoundf("representation %s not found in yard %s", id, y.id)
	}
	return rep, nil
}

// Contains reports whether a representation with id is stored.
func (y *SQLiteYard) Contains(ctx context.Context, id string) (bool, error) {
	var n int
	err := y.db.QueryRowContext(ctx, `SELECT count(*) FROM documents WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking representation %s: %w", id, err)
	}
	return n > 0, nil
}

// Store inserts or replaces rep.
func (y *SQLiteYard) Store(ctx context.Context, rep *types.Representation) error {
	return y.StoreAll(ctx, []*types.Representation{rep})
}

// StoreAll inserts or replaces all reps in one transaction. Either all
// representations are stored or none.
func (y *SQLiteYard) StoreAll(ctx context.Context, reps []*types.Representation) error {
	defer observe("store", time.Now())
	for _, rep := range reps {
		if err := y.validate(rep); err != nil {
			return err
		}
	}

	tx, err := y.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := y.write(ctx, tx, reps); err != nil {
		return err
	}
	return tx.Commit()
}

// Update replaces rep only if it is already stored.
func (y *SQLiteYard) Update(ctx context.Context, rep *types.Representation) error {
	defer observe("update", time.Now())
	if err := y.validate(rep); err != nil {
		return err
	}

	tx, err := y.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM documents WHERE id = ?`, rep.ID).Scan(&n); err != nil {
		return fmt.Errorf("checking representation %s: %w", rep.ID, err)
	}
	if n == 0 {
		return errs.NotFoundf("representation %s not found in yard %s", rep.ID, y.id)
	}

	if err := y.write(ctx, tx, []*types.Representation{rep}); err != nil {
		return err
	}
	return tx.Commit()
}

func (y *SQLiteYard) validate(rep *types.Representation) error {
	if rep == nil {
		return errs.Invalidf("nil representation")
	}
	if rep.ID == "" {
		return errs.Invalidf("representation without id")
	}
	for field, values := range rep.Fields {
		if field == "" {
			return errs.Invalidf("representation %s: empty field name", rep.ID)
		}
		for _, v := range values {
			if err := v.Validate(); err != nil {
				return errs.Invalidf("representation %s, field %s: %v", rep.ID, field, err)
			}
		}
	}
	return nil
}

func (y *SQLiteYard) write(ctx context.Context, tx *sql.Tx, reps []*types.Representation) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	insValue, err := tx.PrepareContext(ctx,
		`INSERT INTO field_values (doc, position, name, field, value, num) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer insValue.Close()

	insText, err := tx.PrepareContext(ctx,
		`INSERT INTO text_fts (value, field, lang, doc) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing text insert: %w", err)
	}
	defer insText.Close()

	for _, rep := range reps {
		if err := y.deleteDoc(ctx, tx, rep.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (id, domain, updated) VALUES (?, ?, ?)`, rep.ID, y.id, now,
		); err != nil {
			return fmt.Errorf("inserting representation %s: %w", rep.ID, err)
		}

		pos := 0
		for _, field := range rep.FieldNames() {
			short := ShortField(field)
			for _, v := range rep.Fields[field] {
				name, err := y.mapper.EncodeValue(field, v)
				if err != nil {
					return errs.Invalidf("representation %s: %v", rep.ID, err)
				}
				if _, err := insValue.ExecContext(ctx, rep.ID, pos, name, short, v.Value, numericValue(v)); err != nil {
					return fmt.Errorf("inserting value of %s: %w", rep.ID, err)
				}
				pos++
				if v.Type == types.TypeText {
					if _, err := insText.ExecContext(ctx, v.Value, short, v.Lang, rep.ID); err != nil {
						return fmt.Errorf("indexing text of %s: %w", rep.ID, err)
					}
				}
			}
		}
	}
	return nil
}

// numericValue returns the value stored in the num column: the number for
// numeric types, microseconds since the epoch for dateTime, else NULL.
func numericValue(v types.Value) any {
	switch {
	case v.Type.IsNumeric():
		f, err := v.Float()
		if err != nil {
			return nil
		}
		return f
	case v.Type == types.TypeDateTime:
		t, err := v.Time()
		if err != nil {
			return nil
		}
		return float64(t.UnixMicro())
	}
	return nil
}

func (y *SQLiteYard) deleteDoc(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM text_fts WHERE doc = ?`, id); err != nil {
		return fmt.Errorf("removing text index of %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("removing representation %s: %w", id, err)
	}
	return nil
}

// Remove deletes the representation with id. Removing an unknown id is
// not an error.
func (y *SQLiteYard) Remove(ctx context.Context, id string) error {
	return y.RemoveAll(ctx, []string{id})
}

// RemoveAll deletes the representations with the given ids.
func (y *SQLiteYard) RemoveAll(ctx context.Context, ids []string) error {
	defer observe("remove", time.Now())
	tx, err := y.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if err := y.deleteDoc(ctx, tx, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Clear deletes every representation of the yard.
func (y *SQLiteYard) Clear(ctx context.Context) error {
	defer observe("clear", time.Now())
	tx, err := y.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM text_fts`,
		`DELETE FROM field_values`,
		`DELETE FROM documents`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing yard: %w", err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored representations.
func (y *SQLiteYard) Count(ctx context.Context) (int, error) {
	var n int
	if err := y.db.QueryRowContext(ctx, `SELECT count(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting representations: %w", err)
	}
	return n, nil
}

// load reads the representations with the given ids. Missing ids are
// absent from the returned map.
func (y *SQLiteYard) load(ctx context.Context, ids []string) (map[string]*types.Representation, error) {
	out := make(map[string]*types.Representation, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	docs, err := y.db.QueryContext(ctx,
		`SELECT id FROM documents WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("loading representations: %w", err)
	}
	for docs.Next() {
		var id string
		if err := docs.Scan(&id); err != nil {
			docs.Close()
			return nil, fmt.Errorf("scanning representation: %w", err)
		}
		out[id] = types.NewRepresentation(id)
	}
	docs.Close()
	if err := docs.Err(); err != nil {
		return nil, err
	}

	rows, err := y.db.QueryContext(ctx,
		`SELECT doc, name, value FROM field_values WHERE doc IN (`+placeholders+`) ORDER BY doc, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("loading values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var doc, name, value string
		if err := rows.Scan(&doc, &name, &value); err != nil {
			return nil, fmt.Errorf("scanning value: %w", err)
		}
		f, err := y.mapper.Decode(name)
		if err != nil {
			return nil, fmt.Errorf("representation %s: %w", doc, err)
		}
		if rep, ok := out[doc]; ok {
			rep.Add(f.Field, types.Value{Type: f.DataType, Value: value, Lang: f.Lang})
		}
	}
	return out, rows.Err()
}

// clampLimit applies the default and maximum limits.
func (y *SQLiteYard) clampLimit(limit int) int {
	if limit <= 0 {
		return y.defaultLimit
	}
	if limit > y.maxLimit {
		return y.maxLimit
	}
	return limit
}

// ftsPhrase quotes s as an FTS5 phrase.
func ftsPhrase(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
