// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package geonames indexes geonames.org gazetteer dumps into a yard and
// downloads the dumps it needs.
package geonames

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/stanbol/internal/vocabulary"
	"github.com/pdiddy/stanbol/internal/yard"
	"github.com/pdiddy/stanbol/pkg/types"
)

const (
	defaultFeatureFile = "allCountries.txt"
	defaultBatchSize   = 1000
	featureColumns     = 19
)

// Fields written for each feature.
const (
	FieldName          = vocabulary.Geonames + "name"
	FieldAlternateName = vocabulary.Geonames + "alternateName"
	FieldFeatureClass  = vocabulary.Geonames + "featureClass"
	FieldFeatureCode   = vocabulary.Geonames + "featureCode"
	FieldCountryCode   = vocabulary.Geonames + "countryCode"
	FieldPopulation    = vocabulary.Geonames + "population"
	FieldParentFeature = vocabulary.Geonames + "parentFeature"
	FieldParentCountry = vocabulary.Geonames + "parentCountry"
	FieldParentADM1    = vocabulary.Geonames + "parentADM1"
	FieldParentADM2    = vocabulary.Geonames + "parentADM2"
	FieldLatitude      = vocabulary.WGS84 + "lat"
	FieldLongitude     = vocabulary.WGS84 + "long"
	FieldAltitude      = vocabulary.WGS84 + "alt"
	FieldTimezone      = vocabulary.Geonames + "timezone"
	FieldModified      = vocabulary.DCModified
)

// TypeFeature is the rdf:type of every indexed feature.
const TypeFeature = vocabulary.Geonames + "Feature"

// IndexSummary counts the outcome of an indexing run.
type IndexSummary struct {
	Indexed int
	Skipped int
	Failed  int
}

// Total returns the number of feature lines processed.
func (s IndexSummary) Total() int {
	return s.Indexed + s.Skipped + s.Failed
}

// Indexer turns a geonames dump directory into yard representations.
type Indexer struct {
	yard yard.Yard
	cfg  types.GeonamesConfig
	out  io.Writer

	classes map[string]bool
	tables  *tables
}

// NewIndexer returns an indexer writing to y and printing progress to w.
func NewIndexer(y yard.Yard, cfg types.GeonamesConfig, w io.Writer) *Indexer {
	if cfg.FeatureFile == "" {
		cfg.FeatureFile = defaultFeatureFile
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if w == nil {
		w = io.Discard
	}
	classes := map[string]bool{}
	for _, c := range cfg.FeatureClasses {
		classes[strings.ToUpper(c)] = true
	}
	return &Indexer{yard: y, cfg: cfg, out: w, classes: classes}
}

// Run loads the lookup tables, then streams the feature dump into the yard
// in batches. Malformed lines are counted as failures and never abort the
// run; yard write errors do.
func (ix *Indexer) Run(ctx context.Context) (IndexSummary, error) {
	RegisterMetrics()
	start := time.Now()
	var sum IndexSummary

	ix.tables = newTables()
	if err := ix.tables.load(ix.cfg.DumpDir, ix.cfg.Languages); err != nil {
		return sum, err
	}
	if ix.tables.failed > 0 {
		fmt.Fprintf(ix.out, "lookup tables: %d malformed lines skipped\n", ix.tables.failed)
	}

	rc, err := openDump(ix.cfg.DumpDir, ix.cfg.FeatureFile)
	if err != nil {
		return sum, fmt.Errorf("reading %s: %w", ix.cfg.FeatureFile, err)
	}
	defer rc.Close()

	fmt.Fprintf(ix.out, "indexing %s into yard %s\n", ix.cfg.FeatureFile, ix.yard.ID())
	batch := make([]*types.Representation, 0, ix.cfg.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := ix.yard.StoreAll(ctx, batch); err != nil {
			return fmt.Errorf("storing batch: %w", err)
		}
		sum.Indexed += len(batch)
		features.WithLabelValues("indexed").Add(float64(len(batch)))
		batch = batch[:0]
		fmt.Fprintf(ix.out, "indexed: %d (skipped %d, failed %d)\n", sum.Indexed, sum.Skipped, sum.Failed)
		return nil
	}

	err = eachRecord(rc, func(line int, cols []string) error {
		rep, err := ix.feature(cols)
		switch {
		case err != nil:
			sum.Failed++
			features.WithLabelValues("failed").Inc()
			log.Debug().Err(err).Int("line", line).Msg("skipping malformed feature")
			return nil
		case rep == nil:
			sum.Skipped++
			features.WithLabelValues("skipped").Inc()
			return nil
		}
		batch = append(batch, rep)
		if len(batch) >= ix.cfg.BatchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		return sum, err
	}

	fmt.Fprintf(ix.out, "\nIndex summary: %d indexed, %d skipped, %d failed (total: %d) in %s\n",
		sum.Indexed, sum.Skipped, sum.Failed, sum.Total(), time.Since(start).Round(time.Millisecond))
	log.Info().
		Int("indexed", sum.Indexed).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Msg("geonames_index")
	return sum, nil
}

// feature builds the representation of one dump line. It returns nil
// without error when the feature is filtered out.
func (ix *Indexer) feature(cols []string) (*types.Representation, error) {
	if len(cols) < featureColumns {
		return nil, fmt.Errorf("expected %d columns, got %d", featureColumns, len(cols))
	}
	id := cols[0]
	if !isID(id) {
		return nil, fmt.Errorf("invalid geonameid %q", id)
	}
	name := cols[1]
	if name == "" {
		return nil, fmt.Errorf("feature %s has no name", id)
	}
	lat, err := strconv.ParseFloat(cols[4], 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("feature %s: invalid latitude %q", id, cols[4])
	}
	long, err := strconv.ParseFloat(cols[5], 64)
	if err != nil || long < -180 || long > 180 {
		return nil, fmt.Errorf("feature %s: invalid longitude %q", id, cols[5])
	}
	var population int64
	if cols[14] != "" {
		if population, err = strconv.ParseInt(cols[14], 10, 64); err != nil {
			return nil, fmt.Errorf("feature %s: invalid population %q", id, cols[14])
		}
	}

	class, code, country := cols[6], cols[7], cols[8]
	if len(ix.classes) > 0 && !ix.classes[class] {
		return nil, nil
	}
	if population < ix.cfg.MinPopulation {
		return nil, nil
	}

	rep := types.NewRepresentation(vocabulary.FeatureIRI(id))
	rep.AddReference(vocabulary.RDFType, TypeFeature)
	rep.AddNaturalText(FieldName, name)
	rep.AddNaturalText(vocabulary.RDFSLabel, name)
	rep.Add(FieldLatitude, types.NewDouble(lat))
	rep.Add(FieldLongitude, types.NewDouble(long))
	if alt, ok := altitude(cols[15], cols[16]); ok {
		rep.Add(FieldAltitude, types.NewInt(alt))
	}
	if class != "" {
		rep.AddReference(FieldFeatureClass, vocabulary.Geonames+class)
		if code != "" {
			rep.AddReference(FieldFeatureCode, vocabulary.Geonames+class+"."+code)
		}
	}
	if country != "" {
		rep.Add(FieldCountryCode, types.NewString(country))
	}
	if cols[14] != "" {
		rep.Add(FieldPopulation, types.NewInt(population))
	}
	if cols[17] != "" {
		rep.Add(FieldTimezone, types.NewString(cols[17]))
	}
	if modified, err := time.Parse(time.DateOnly, cols[18]); err == nil {
		rep.Add(FieldModified, types.NewTime(modified))
	}

	ix.addNames(rep, id, cols[3])
	ix.addParents(rep, id, class, code, country, cols[10], cols[11])
	return rep, nil
}

// altitude prefers the measured elevation over the digital elevation model.
func altitude(elevation, dem string) (int64, bool) {
	for _, s := range []string{elevation, dem} {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil && v != -9999 {
			return v, true
		}
	}
	return 0, false
}

// addNames adds alternate names and one label per language. Without an
// alternateNames table the comma separated names of the feature line are
// used, without language.
func (ix *Indexer) addNames(rep *types.Representation, id, inline string) {
	if ix.tables.altNames == nil {
		for _, n := range strings.Split(inline, ",") {
			if n = strings.TrimSpace(n); n != "" {
				rep.AddNaturalText(FieldAlternateName, n)
			}
		}
		return
	}

	names := ix.tables.altNames[id]
	labelled := map[string]bool{}
	for _, a := range names {
		rep.AddNaturalText(FieldAlternateName, a.name, a.lang)
		if a.preferred && a.lang != "" && !labelled[a.lang] {
			rep.AddNaturalText(vocabulary.RDFSLabel, a.name, a.lang)
			labelled[a.lang] = true
		}
	}
	// Languages without a preferred name get their first plain name.
	for _, a := range names {
		if a.lang == "" || labelled[a.lang] || a.historic || a.colloquial || a.short {
			continue
		}
		rep.AddNaturalText(vocabulary.RDFSLabel, a.name, a.lang)
		labelled[a.lang] = true
	}
}

// addParents links the feature to its country and admin divisions, and to
// the parents listed in the hierarchy, or else to its most specific admin
// parent.
func (ix *Indexer) addParents(rep *types.Representation, id, class, code, country, a1, a2 string) {
	self := vocabulary.FeatureIRI(id)
	link := func(field, parentID string) string {
		if parentID == "" || parentID == id {
			return ""
		}
		iri := vocabulary.FeatureIRI(parentID)
		rep.AddReference(field, iri)
		return iri
	}

	isCountry := class == "A" && strings.HasPrefix(code, "PCL")
	var nearest string
	if country != "" && !isCountry {
		if p := link(FieldParentCountry, ix.tables.countries[country]); p != "" {
			nearest = p
		}
	}
	if a1 != "" && a1 != "00" {
		if p := link(FieldParentADM1, ix.tables.admin1[country+"."+a1]); p != "" {
			nearest = p
		}
		if a2 != "" {
			if p := link(FieldParentADM2, ix.tables.admin2[country+"."+a1+"."+a2]); p != "" {
				nearest = p
			}
		}
	}

	if parents := ix.tables.parents[id]; len(parents) > 0 {
		for _, p := range parents {
			link(FieldParentFeature, p)
		}
		return
	}
	if nearest != "" && nearest != self {
		rep.AddReference(FieldParentFeature, nearest)
	}
}
