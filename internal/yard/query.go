// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package yard

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/stanbol/internal/errs"
	"github.com/pdiddy/stanbol/internal/vocabulary"
	"github.com/pdiddy/stanbol/pkg/types"
)

// Find returns the representations matching q, ordered by id. When q
// selects fields only those fields are returned.
func (y *SQLiteYard) Find(ctx context.Context, q types.FieldQuery) (types.QueryResultList, error) {
	defer observe("find", time.Now())
	ids, err := y.findIDs(ctx, &q)
	if err != nil {
		return types.QueryResultList{}, err
	}

	reps, err := y.load(ctx, ids)
	if err != nil {
		return types.QueryResultList{}, err
	}

	selected := make([]string, len(q.Selected))
	for i, f := range q.Selected {
		selected[i] = vocabulary.Expand(f)
	}

	result := types.QueryResultList{Query: q}
	for _, id := range ids {
		rep, ok := reps[id]
		if !ok {
			continue
		}
		if len(selected) > 0 {
			rep = rep.Select(selected)
		}
		result.Results = append(result.Results, rep)
	}
	return result, nil
}

// FindReferences returns the ids of the representations matching q.
func (y *SQLiteYard) FindReferences(ctx context.Context, q types.FieldQuery) ([]string, error) {
	defer observe("find_references", time.Now())
	return y.findIDs(ctx, &q)
}

func (y *SQLiteYard) findIDs(ctx context.Context, q *types.FieldQuery) ([]string, error) {
	if q.Offset < 0 {
		return nil, errs.Invalidf("negative offset %d", q.Offset)
	}
	q.Limit = y.clampLimit(q.Limit)

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT d.id FROM documents d WHERE 1=1`)

	// Sorted for a stable statement text.
	fields := make([]string, 0, len(q.Constraints))
	for f := range q.Constraints {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, field := range fields {
		clauses, clauseArgs, err := y.constraintSQL(field, q.Constraints[field])
		if err != nil {
			return nil, err
		}
		for _, c := range clauses {
			qb.WriteString(` AND `)
			qb.WriteString(c)
		}
		args = append(args, clauseArgs...)
	}

	qb.WriteString(` ORDER BY d.id LIMIT ? OFFSET ?`)
	args = append(args, q.Limit, q.Offset)

	rows, err := y.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying yard: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// valueMatch is one per-value condition of a constraint, evaluated
// against the field_values row aliased fv.
type valueMatch struct {
	sql  string
	args []any
}

// constraintSQL translates one constraint into EXISTS clauses. Mode any
// yields one clause OR-ing all value conditions; mode all yields one
// clause per value.
func (y *SQLiteYard) constraintSQL(field string, c types.Constraint) ([]string, []any, error) {
	short := ShortField(field)
	names, nameGlob, err := y.indexNames(field, c)
	if err != nil {
		return nil, nil, err
	}

	var matches []valueMatch
	switch c.Type {
	case types.ConstraintReference:
		matches, err = equalityMatches(c.Values, "reference")
	case types.ConstraintValue:
		matches, err = valueMatches(c)
	case types.ConstraintText:
		matches, err = textMatches(c)
	case types.ConstraintRange:
		var m valueMatch
		m, err = rangeMatch(c)
		matches = []valueMatch{m}
	default:
		err = errs.Invalidf("field %s: unknown constraint type %q", field, c.Type)
	}
	if err != nil {
		return nil, nil, err
	}

	mode := c.Mode
	if mode == "" {
		mode = types.ModeAny
	}
	if mode != types.ModeAny && mode != types.ModeAll {
		return nil, nil, errs.Invalidf("field %s: unknown mode %q", field, c.Mode)
	}

	scope := `fv.field = ?`
	scopeArgs := []any{short}
	switch {
	case nameGlob != "":
		scope += ` AND fv.name GLOB ?`
		scopeArgs = append(scopeArgs, nameGlob)
	case len(names) > 0:
		scope += ` AND fv.name IN (` + strings.TrimSuffix(strings.Repeat("?,", len(names)), ",") + `)`
		for _, n := range names {
			scopeArgs = append(scopeArgs, n)
		}
	default:
		scope += ` AND fv.name NOT GLOB '@*'`
	}

	exists := func(cond string) string {
		return `EXISTS (SELECT 1 FROM field_values fv WHERE fv.doc = d.id AND ` + scope + ` AND (` + cond + `))`
	}

	var (
		clauses []string
		args    []any
	)
	if mode == types.ModeAll {
		for _, m := range matches {
			clauses = append(clauses, exists(m.sql))
			args = append(args, scopeArgs...)
			args = append(args, m.args...)
		}
		return clauses, args, nil
	}

	conds := make([]string, len(matches))
	args = append(args, scopeArgs...)
	for i, m := range matches {
		conds[i] = m.sql
		args = append(args, m.args...)
	}
	return []string{exists(strings.Join(conds, ` OR `))}, args, nil
}

// indexNames returns the index field names a constraint applies to, or a
// GLOB pattern over names. Both empty means every non-text name.
func (y *SQLiteYard) indexNames(field string, c types.Constraint) ([]string, string, error) {
	encode := func(dt types.DataType, lang string) (string, error) {
		name, err := y.mapper.Encode(IndexField{Field: field, DataType: dt, Lang: lang})
		if err != nil {
			return "", errs.Invalidf("%v", err)
		}
		return name, nil
	}

	switch c.Type {
	case types.ConstraintReference:
		name, err := encode(types.TypeReference, "")
		return []string{name}, "", err

	case types.ConstraintText:
		if len(c.Languages) == 0 {
			return nil, textPrefix + "*", nil
		}
		names := make([]string, 0, len(c.Languages))
		for _, lang := range c.Languages {
			name, err := encode(types.TypeText, lang)
			if err != nil {
				return nil, "", err
			}
			names = append(names, name)
		}
		return names, "", nil

	case types.ConstraintValue:
		if c.DataType == "" {
			return nil, "", nil
		}
		name, err := encode(c.DataType, "")
		return []string{name}, "", err

	case types.ConstraintRange:
		dt, err := rangeType(c)
		if err != nil {
			return nil, "", err
		}
		candidates := []types.DataType{dt}
		if c.DataType == "" && dt == types.TypeDouble {
			candidates = numericTypes
		}
		names := make([]string, 0, len(candidates))
		for _, t := range candidates {
			name, err := encode(t, "")
			if err != nil {
				return nil, "", err
			}
			names = append(names, name)
		}
		return names, "", nil
	}
	return nil, "", nil
}

func equalityMatches(values []string, what string) ([]valueMatch, error) {
	if len(values) == 0 {
		return nil, errs.Invalidf("%s constraint without values", what)
	}
	out := make([]valueMatch, len(values))
	for i, v := range values {
		out[i] = valueMatch{sql: `fv.value = ?`, args: []any{v}}
	}
	return out, nil
}

func valueMatches(c types.Constraint) ([]valueMatch, error) {
	if c.DataType != "" && !c.DataType.Valid() {
		return nil, errs.Invalidf("unknown data type %q", c.DataType)
	}
	if c.DataType == types.TypeText || c.DataType == types.TypeReference {
		return nil, errs.Invalidf("value constraint cannot use data type %s; use a %s constraint", c.DataType, c.DataType)
	}
	if len(c.Values) == 0 {
		return nil, errs.Invalidf("value constraint without values")
	}

	out := make([]valueMatch, len(c.Values))
	for i, v := range c.Values {
		switch {
		case c.DataType.IsNumeric():
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, errs.Invalidf("value %q is not a number", v)
			}
			out[i] = valueMatch{sql: `fv.num = ?`, args: []any{f}}
		case c.DataType == types.TypeDateTime:
			t, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return nil, errs.Invalidf("value %q is not a dateTime", v)
			}
			out[i] = valueMatch{sql: `fv.num = ?`, args: []any{float64(t.UnixMicro())}}
		default:
			out[i] = valueMatch{sql: `fv.value = ?`, args: []any{v}}
		}
	}
	return out, nil
}

func textMatches(c types.Constraint) ([]valueMatch, error) {
	if len(c.Values) == 0 {
		return nil, errs.Invalidf("text constraint without texts")
	}
	pattern := c.PatternType
	if pattern == "" {
		pattern = types.PatternNone
	}

	out := make([]valueMatch, len(c.Values))
	for i, text := range c.Values {
		switch pattern {
		case types.PatternNone:
			if c.CaseSensitive {
				out[i] = valueMatch{sql: `fv.value = ?`, args: []any{text}}
			} else {
				out[i] = valueMatch{sql: `lower(fv.value) = lower(?)`, args: []any{text}}
			}
		case types.PatternWildcard:
			if c.CaseSensitive {
				out[i] = valueMatch{sql: `fv.value GLOB ?`, args: []any{wildcardToGlob(text)}}
			} else {
				out[i] = valueMatch{sql: `fv.value LIKE ? ESCAPE '\'`, args: []any{wildcardToLike(text)}}
			}
		case types.PatternRegex:
			expr := text
			if !c.CaseSensitive {
				expr = "(?i)" + expr
			}
			if _, err := regexp.Compile(expr); err != nil {
				return nil, errs.Invalidf("invalid regular expression %q: %v", text, err)
			}
			out[i] = valueMatch{sql: `regexp(?, fv.value)`, args: []any{expr}}
		default:
			return nil, errs.Invalidf("unknown pattern type %q", c.PatternType)
		}
	}
	return out, nil
}

// rangeType decides how range bounds compare: the explicit data type, or
// double when every bound is numeric, else string.
func rangeType(c types.Constraint) (types.DataType, error) {
	if c.Lower == nil && c.Upper == nil {
		return "", errs.Invalidf("range constraint without bounds")
	}
	if c.DataType != "" {
		if !c.DataType.Valid() || c.DataType == types.TypeText || c.DataType == types.TypeReference {
			return "", errs.Invalidf("range constraint cannot use data type %q", c.DataType)
		}
		return c.DataType, nil
	}
	for _, b := range []*string{c.Lower, c.Upper} {
		if b == nil {
			continue
		}
		if _, err := strconv.ParseFloat(*b, 64); err != nil {
			return types.TypeString, nil
		}
	}
	return types.TypeDouble, nil
}

func rangeMatch(c types.Constraint) (valueMatch, error) {
	dt, err := rangeType(c)
	if err != nil {
		return valueMatch{}, err
	}

	column := `fv.value`
	bound := func(s string) (any, error) { return s, nil }
	switch {
	case dt.IsNumeric():
		column = `fv.num`
		bound = func(s string) (any, error) {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errs.Invalidf("range bound %q is not a number", s)
			}
			return f, nil
		}
	case dt == types.TypeDateTime:
		column = `fv.num`
		bound = func(s string) (any, error) {
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, errs.Invalidf("range bound %q is not a dateTime", s)
			}
			return float64(t.UnixMicro()), nil
		}
	}

	lowerOp, upperOp := ">", "<"
	if c.Inclusive {
		lowerOp, upperOp = ">=", "<="
	}

	var (
		conds []string
		args  []any
	)
	if c.Lower != nil {
		b, err := bound(*c.Lower)
		if err != nil {
			return valueMatch{}, err
		}
		conds = append(conds, column+` `+lowerOp+` ?`)
		args = append(args, b)
	}
	if c.Upper != nil {
		b, err := bound(*c.Upper)
		if err != nil {
			return valueMatch{}, err
		}
		conds = append(conds, column+` `+upperOp+` ?`)
		args = append(args, b)
	}
	return valueMatch{sql: strings.Join(conds, ` AND `), args: args}, nil
}

// wildcardToLike converts * and ? wildcards into a LIKE pattern escaped with \.
func wildcardToLike(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*':
			b.WriteByte('%')
		case '?':
			b.WriteByte('_')
		case '%', '_', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// wildcardToGlob escapes GLOB character classes; * and ? keep their meaning.
func wildcardToGlob(s string) string {
	return strings.ReplaceAll(s, "[", "[[]")
}

// FindByName runs a full-text search over the natural-language values of
// field (rdfs:label when empty), optionally restricted to langs. Results
// are ranked by relevance.
func (y *SQLiteYard) FindByName(ctx context.Context, name, field string, langs []string, limit int) ([]*types.Representation, error) {
	defer observe("find_by_name", time.Now())
	if strings.TrimSpace(name) == "" {
		return nil, errs.Invalidf("empty name")
	}
	if field == "" {
		field = vocabulary.RDFSLabel
	}
	limit = y.clampLimit(limit)

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT doc FROM text_fts WHERE text_fts MATCH ? AND field = ?`)
	args = append(args, ftsPhrase(name), ShortField(field))
	if len(langs) > 0 {
		qb.WriteString(` AND lang IN (` + strings.TrimSuffix(strings.Repeat("?,", len(langs)), ",") + `)`)
		for _, l := range langs {
			args = append(args, l)
		}
	}
	qb.WriteString(` ORDER BY rank`)

	rows, err := y.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching names: %w", err)
	}
	var ids []string
	seen := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		if len(ids) == limit {
			break
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reps, err := y.load(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*types.Representation, 0, len(ids))
	for _, id := range ids {
		if rep, ok := reps[id]; ok {
			out = append(out, rep)
		}
	}
	return out, nil
}
