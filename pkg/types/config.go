// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "stanbol/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ServerConfig holds settings for the REST server.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// APIToken, when set, is required as a bearer token on mutating requests.
	APIToken string `json:"api_token,omitempty" yaml:"api_token,omitempty" mapstructure:"api_token"`

	// CORSOrigins lists allowed origins; empty disables CORS headers.
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty" mapstructure:"cors_origins"`

	// TrustedProxies lists proxy addresses or CIDRs whose forwarding
	// headers are honoured (default loopback only).
	TrustedProxies []string `json:"trusted_proxies,omitempty" yaml:"trusted_proxies,omitempty" mapstructure:"trusted_proxies"`

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// YardConfig holds settings for the entity store.
type YardConfig struct {
	// ID identifies the yard; it is used in generated entity ids.
	ID string `json:"id" yaml:"id" mapstructure:"id"`

	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Description string `json:"description" yaml:"description" mapstructure:"description"`

	// Dir is the directory holding the yard database.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// DefaultLimit is used when a query sets no limit (default 10).
	DefaultLimit int `json:"default_limit" yaml:"default_limit" mapstructure:"default_limit"`

	// MaxLimit caps query limits (default 1024).
	MaxLimit int `json:"max_limit" yaml:"max_limit" mapstructure:"max_limit"`
}

// OntologyConfig holds settings for the ontology store.
type OntologyConfig struct {
	// Dir is the directory holding the ontology database.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// BaseURL is used to build Href links in ontology listings.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
}

// GeonamesConfig holds settings for the gazetteer indexer.
type GeonamesConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// DumpDir holds the geonames.org dump files.
	DumpDir string `json:"dump_dir" yaml:"dump_dir" mapstructure:"dump_dir"`

	// DumpURL is the base URL for downloading dumps
	// (default "https://download.geonames.org/export/dump/").
	DumpURL string `json:"dump_url" yaml:"dump_url" mapstructure:"dump_url"`

	// FeatureFile names the feature dump to index (default "allCountries.txt").
	FeatureFile string `json:"feature_file" yaml:"feature_file" mapstructure:"feature_file"`

	// BatchSize is the number of features written per yard transaction (default 1000).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`

	// FeatureClasses restricts indexing to these classes (e.g. "P", "A"); empty indexes all.
	FeatureClasses []string `json:"feature_classes,omitempty" yaml:"feature_classes,omitempty" mapstructure:"feature_classes"`

	// MinPopulation skips features with a smaller population.
	MinPopulation int64 `json:"min_population" yaml:"min_population" mapstructure:"min_population"`

	// Languages restricts alternate names; empty keeps all languages.
	Languages []string `json:"languages,omitempty" yaml:"languages,omitempty" mapstructure:"languages"`
}

// NLPConfig holds settings for the part-of-speech tag sets.
type NLPConfig struct {
	// TagSetFiles lists YAML tag set definitions loaded next to the
	// built-in Penn Treebank and universal sets.
	TagSetFiles []string `json:"tag_set_files,omitempty" yaml:"tag_set_files,omitempty" mapstructure:"tag_set_files"`
}

// StanbolConfig groups all component configurations.
type StanbolConfig struct {
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	Yard     YardConfig     `json:"yard" yaml:"yard" mapstructure:"yard"`
	Ontology OntologyConfig `json:"ontology" yaml:"ontology" mapstructure:"ontology"`
	Geonames GeonamesConfig `json:"geonames" yaml:"geonames" mapstructure:"geonames"`
	NLP      NLPConfig      `json:"nlp" yaml:"nlp" mapstructure:"nlp"`
}
