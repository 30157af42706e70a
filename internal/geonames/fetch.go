// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geonames

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/stanbol/internal/httputil"
	"github.com/pdiddy/stanbol/pkg/types"
)

// DefaultDumpURL is the geonames.org dump directory.
const DefaultDumpURL = "https://download.geonames.org/export/dump/"

// FetchResult counts the outcome of a Fetch run.
type FetchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the number of files processed.
func (r FetchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any download failed.
func (r FetchResult) HasFailures() bool {
	return r.Failed > 0
}

// DefaultDumps lists the files the indexer needs for cfg. Feature,
// alternate name and hierarchy dumps are published zipped.
func DefaultDumps(cfg types.GeonamesConfig) []string {
	feature := cfg.FeatureFile
	if feature == "" {
		feature = defaultFeatureFile
	}
	return []string{
		CountryInfoFile,
		Admin1File,
		Admin2File,
		baseName(feature) + ".zip",
	}
}

// Fetch downloads names from cfg.DumpURL into cfg.DumpDir, printing one
// status line per file to w. Files already present (as .txt or .zip) are
// skipped. It continues after individual failures.
func Fetch(ctx context.Context, client *http.Client, cfg types.GeonamesConfig, names []string, w io.Writer) (FetchResult, error) {
	RegisterMetrics()
	var result FetchResult
	if err := os.MkdirAll(cfg.DumpDir, 0o755); err != nil {
		return result, fmt.Errorf("creating dump directory: %w", err)
	}
	base := cfg.DumpURL
	if base == "" {
		base = DefaultDumpURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if present(cfg.DumpDir, name) {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
			downloads.WithLabelValues("skipped").Inc()
			result.Skipped++
			continue
		}
		fmt.Fprintf(w, "downloading: %s\n", name)
		if err := download(ctx, client, base+name, filepath.Join(cfg.DumpDir, name), cfg.HTTPConfig); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
			downloads.WithLabelValues("failed").Inc()
			result.Failed++
			continue
		}
		downloads.WithLabelValues("downloaded").Inc()
		result.Downloaded++
	}

	fmt.Fprintf(w, "\nFetch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// present reports whether name, or its .txt/.zip sibling, exists in dir.
func present(dir, name string) bool {
	b := baseName(name)
	for _, candidate := range []string{name, b + ".txt", b + ".zip"} {
		if _, err := os.Stat(filepath.Join(dir, candidate)); err == nil {
			return true
		}
	}
	return false
}

// download fetches url to destPath through a temporary file renamed on
// success, so an interrupted download never leaves a partial dump.
func download(ctx context.Context, client *http.Client, url, destPath string, cfg types.HTTPConfig) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
