// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geonames

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxLine bounds a single dump line; alternate name lists can be long.
const maxLine = 4 << 20

// baseName strips the .txt or .zip extension from a dump file name.
func baseName(name string) string {
	for _, ext := range []string{".txt", ".zip"} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// openDump opens <base>.txt in dir, falling back to the <base>.txt entry
// of <base>.zip. It returns fs.ErrNotExist when neither exists.
func openDump(dir, name string) (io.ReadCloser, error) {
	base := baseName(name)
	f, err := os.Open(filepath.Join(dir, base+".txt"))
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	zr, err := zip.OpenReader(filepath.Join(dir, base+".zip"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("dump %s: %w", base, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("opening %s.zip: %w", base, err)
	}
	for _, entry := range zr.File {
		if entry.Name == base+".txt" {
			rc, err := entry.Open()
			if err != nil {
				zr.Close()
				return nil, fmt.Errorf("opening %s in %s.zip: %w", entry.Name, base, err)
			}
			return &zipEntry{ReadCloser: rc, archive: zr}, nil
		}
	}
	zr.Close()
	return nil, fmt.Errorf("%s.zip has no entry %s.txt: %w", base, base, fs.ErrNotExist)
}

type zipEntry struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (z *zipEntry) Close() error {
	err := z.ReadCloser.Close()
	if cerr := z.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

// eachRecord calls fn with the tab separated columns of every line of r,
// skipping blank lines and lines starting with '#'. fn receives the
// 1-based line number.
func eachRecord(r io.Reader, fn func(line int, cols []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := fn(line, strings.Split(text, "\t")); err != nil {
			return err
		}
	}
	return sc.Err()
}
