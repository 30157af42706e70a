// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, yamlText string) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	configureEnv(v)
	if yamlText != "" {
		path := filepath.Join(t.TempDir(), "stanbol.yaml")
		require.NoError(t, os.WriteFile(path, []byte(yamlText), 0o644))
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())
	}
	return v
}

func TestDecodeConfigDefaults(t *testing.T) {
	cfg, err := decodeConfig(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "default", cfg.Yard.ID)
	assert.Equal(t, 1024, cfg.Yard.MaxLimit)
	assert.Equal(t, "http://localhost:8080/", cfg.Ontology.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Geonames.Timeout)
	assert.Equal(t, defaultUserAgent, cfg.Geonames.UserAgent)
	assert.Equal(t, 5, cfg.Geonames.MaxRetries)
	assert.Equal(t, 1000, cfg.Geonames.BatchSize)
}

func TestDecodeConfigFile(t *testing.T) {
	cfg, err := decodeConfig(newViper(t, `
server:
  addr: ":9090"
  cors_origins: ["http://localhost:3000"]
yard:
  id: dbpedia
  dir: /var/lib/stanbol/yard
geonames:
  timeout: 5m
  feature_file: cities1000.txt
  feature_classes: [P, A]
  min_population: 1000
  languages: [en, de]
nlp:
  tag_set_files: [stts.yaml]
`))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "dbpedia", cfg.Yard.ID)
	assert.Equal(t, "Default Yard", cfg.Yard.Name, "unset keys keep defaults")
	assert.Equal(t, 5*time.Minute, cfg.Geonames.Timeout)
	assert.Equal(t, "cities1000.txt", cfg.Geonames.FeatureFile)
	assert.Equal(t, []string{"P", "A"}, cfg.Geonames.FeatureClasses)
	assert.Equal(t, int64(1000), cfg.Geonames.MinPopulation)
	assert.Equal(t, []string{"en", "de"}, cfg.Geonames.Languages)
	assert.Equal(t, []string{"stts.yaml"}, cfg.NLP.TagSetFiles)
}

func TestDecodeConfigEnvOverride(t *testing.T) {
	t.Setenv("STANBOL_YARD_ID", "from-env")
	t.Setenv("STANBOL_GEONAMES_BATCH_SIZE", "50")

	cfg, err := decodeConfig(newViper(t, "yard:\n  id: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Yard.ID)
	assert.Equal(t, 50, cfg.Geonames.BatchSize)
}
