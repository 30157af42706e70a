// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geonames

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/stanbol/pkg/types"
)

// Dump file names.
const (
	CountryInfoFile    = "countryInfo.txt"
	Admin1File         = "admin1CodesASCII.txt"
	Admin2File         = "admin2Codes.txt"
	AlternateNamesFile = "alternateNames.txt"
	HierarchyFile      = "hierarchy.txt"
)

// pseudoLanguages are alternateNames.txt language codes that tag links,
// postal codes and airport codes rather than languages.
var pseudoLanguages = map[string]bool{
	"link": true, "post": true, "iata": true, "icao": true,
	"faac": true, "fr_1793": true, "abbr": true, "wkdt": true,
	"unlc": true, "tcid": true,
}

type altName struct {
	name       string
	lang       string
	preferred  bool
	short      bool
	colloquial bool
	historic   bool
}

// tables holds the lookup data joined onto features.
type tables struct {
	countries map[string]string // ISO code → geonameid
	admin1    map[string]string // "CC.A1" → geonameid
	admin2    map[string]string // "CC.A1.A2" → geonameid
	altNames  map[string][]altName
	parents   map[string][]string // child geonameid → parent geonameids
	failed    int
}

func newTables() *tables {
	return &tables{
		countries: map[string]string{},
		admin1:    map[string]string{},
		admin2:    map[string]string{},
		parents:   map[string][]string{},
	}
}

// load reads the lookup tables from dir. Country and admin code tables are
// required; alternate names and the hierarchy are optional.
func (t *tables) load(dir string, languages []string) error {
	if err := t.loadCodes(dir, CountryInfoFile, 17, 16, t.countries); err != nil {
		return err
	}
	if err := t.loadCodes(dir, Admin1File, 4, 3, t.admin1); err != nil {
		return err
	}
	if err := t.loadCodes(dir, Admin2File, 4, 3, t.admin2); err != nil {
		return err
	}
	if err := t.loadAltNames(dir, languages); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := t.loadHierarchy(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// loadCodes maps column 0 to the geonameid found in column idCol.
func (t *tables) loadCodes(dir, name string, minCols, idCol int, into map[string]string) error {
	rc, err := openDump(dir, name)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	defer rc.Close()

	return eachRecord(rc, func(line int, cols []string) error {
		if len(cols) < minCols || cols[0] == "" || !isID(cols[idCol]) {
			t.malformed(name, line)
			return nil
		}
		into[cols[0]] = cols[idCol]
		return nil
	})
}

func (t *tables) loadAltNames(dir string, languages []string) error {
	rc, err := openDump(dir, AlternateNamesFile)
	if err != nil {
		return err
	}
	defer rc.Close()

	keep := map[string]bool{}
	for _, l := range languages {
		keep[strings.ToLower(l)] = true
	}

	t.altNames = map[string][]altName{}
	return eachRecord(rc, func(line int, cols []string) error {
		if len(cols) < 4 || !isID(cols[1]) || cols[3] == "" {
			t.malformed(AlternateNamesFile, line)
			return nil
		}
		lang := strings.ToLower(cols[2])
		if pseudoLanguages[lang] || (lang != "" && len(keep) > 0 && !keep[lang]) {
			return nil
		}
		if lang != "" && !types.ValidLanguage(lang) {
			t.malformed(AlternateNamesFile, line)
			return nil
		}
		a := altName{name: cols[3], lang: lang}
		flag := func(i int) bool { return len(cols) > i && cols[i] == "1" }
		a.preferred, a.short, a.colloquial, a.historic = flag(4), flag(5), flag(6), flag(7)
		t.altNames[cols[1]] = append(t.altNames[cols[1]], a)
		return nil
	})
}

func (t *tables) loadHierarchy(dir string) error {
	rc, err := openDump(dir, HierarchyFile)
	if err != nil {
		return err
	}
	defer rc.Close()

	return eachRecord(rc, func(line int, cols []string) error {
		if len(cols) < 2 || !isID(cols[0]) || !isID(cols[1]) {
			t.malformed(HierarchyFile, line)
			return nil
		}
		t.parents[cols[1]] = append(t.parents[cols[1]], cols[0])
		return nil
	})
}

func (t *tables) malformed(file string, line int) {
	t.failed++
	log.Debug().Str("file", file).Int("line", line).Msg("skipping malformed line")
}

func isID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
