// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package yard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/stanbol/internal/errs"
	"github.com/pdiddy/stanbol/pkg/types"
)

const exportPageSize = 500

// ExportFormat selects the dump encoding.
type ExportFormat string

const (
	FormatYAML ExportFormat = "yaml"
	FormatJSON ExportFormat = "json"
)

// Validate rejects formats other than yaml and json. The empty format
// means yaml.
func (f ExportFormat) Validate() error {
	switch f {
	case FormatYAML, FormatJSON, "":
		return nil
	}
	return errs.Invalidf("unsupported format %q: use yaml or json", f)
}

// Export writes every representation matching q (all when q has no
// constraints) to w. Limit and offset of q are ignored; the yard is read
// page by page.
func Export(ctx context.Context, y Yard, q types.FieldQuery, format ExportFormat, w io.Writer) (int, error) {
	if err := format.Validate(); err != nil {
		return 0, err
	}

	var all []*types.Representation
	page := q
	page.Limit = exportPageSize
	page.Offset = 0
	for {
		result, err := y.Find(ctx, page)
		if err != nil {
			return 0, fmt.Errorf("querying for export: %w", err)
		}
		all = append(all, result.Results...)
		if result.Len() == 0 || result.Len() < result.Query.Limit {
			break
		}
		page.Offset += result.Query.Limit
	}

	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		if err := enc.Encode(all); err != nil {
			return 0, fmt.Errorf("marshaling YAML: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(all); err != nil {
			return 0, fmt.Errorf("marshaling JSON: %w", err)
		}
	}
	return len(all), nil
}

// Import reads representations in YAML or JSON (YAML is a superset) from
// r and stores them.
func Import(ctx context.Context, y Yard, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("reading input: %w", err)
	}

	var reps []*types.Representation
	if err := yaml.Unmarshal(data, &reps); err != nil {
		var single types.Representation
		if err2 := yaml.Unmarshal(data, &single); err2 != nil || single.ID == "" {
			return 0, fmt.Errorf("parsing representations: %w", err)
		}
		reps = []*types.Representation{&single}
	}
	if err := y.StoreAll(ctx, reps); err != nil {
		return 0, err
	}
	return len(reps), nil
}
