// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build mage

// Package main contains Mage build targets for stanbol developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "stanbol"
	cmdPkg  = "./cmd/stanbol"

	// buildTags enables the SQLite FTS5 extension used by the yard.
	buildTags = "sqlite_fts5"
)

// dataDirs lists the working directories of a default configuration.
var dataDirs = []string{
	"data/yard",
	"data/ontology",
	"data/geonames",
	".secrets",
}

// Init creates the data and secrets directories.
func Init() error {
	for _, dir := range dataDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Data directories initialized.")
	return nil
}

func binary() string {
	return filepath.Join(binDir, binName)
}

// Build compiles the CLI binary into bin/, stamping the git version.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-tags", buildTags, "-ldflags", ldflags, "-o", binary(), cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", binary(), version)
	return nil
}

// Test runs all tests with the build tags the stores need.
func Test() error {
	return sh.RunV("go", "test", "-tags", buildTags, "./...")
}

// Vet runs go vet with the project build tags.
func Vet() error {
	return sh.RunV("go", "vet", "-tags", buildTags, "./...")
}

// Serve builds and starts the REST server.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binary(), "serve")
}

// Stats prints non-blank Go lines per top-level directory, split into
// production and test code.
func Stats() error {
	prod, test := map[string]int{}, map[string]int{}
	err := filepath.WalkDir(".", func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != "." && (strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_") || d.Name() == binDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := countLines(path)
		if err != nil {
			return err
		}
		group := strings.SplitN(filepath.ToSlash(path), "/", 3)
		key := group[0]
		if len(group) > 2 {
			key = group[0] + "/" + group[1]
		}
		if strings.HasSuffix(path, "_test.go") {
			test[key] += n
		} else {
			prod[key] += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	keys := map[string]bool{}
	for k := range prod {
		keys[k] = true
	}
	for k := range test {
		keys[k] = true
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var totalProd, totalTest int
	fmt.Printf("%-28s %8s %8s\n", "Package", "Prod", "Test")
	for _, k := range sorted {
		fmt.Printf("%-28s %8d %8d\n", k, prod[k], test[k])
		totalProd += prod[k]
		totalTest += test[k]
	}
	fmt.Printf("%-28s %8d %8d\n", "total", totalProd, totalTest)
	return nil
}

// countLines counts non-blank lines in a file.
func countLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if len(bytes.TrimSpace(sc.Bytes())) > 0 {
			n++
		}
	}
	return n, sc.Err()
}
