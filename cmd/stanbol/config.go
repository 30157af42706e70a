// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/stanbol/internal/geonames"
	"github.com/pdiddy/stanbol/internal/secrets"
	"github.com/pdiddy/stanbol/pkg/types"
)

const defaultUserAgent = "stanbol/0.1"

// defaults lists every configuration key so that STANBOL_* environment
// variables can override keys absent from the config file.
var defaults = map[string]any{
	"server.addr":             ":8080",
	"server.api_token":        "",
	"server.cors_origins":     []string{},
	"server.trusted_proxies":  []string{"127.0.0.1", "::1"},
	"server.shutdown_timeout": "10s",

	"yard.id":            "default",
	"yard.name":          "Default Yard",
	"yard.description":   "",
	"yard.dir":           "data/yard",
	"yard.default_limit": 10,
	"yard.max_limit":     1024,

	"ontology.dir":      "data/ontology",
	"ontology.base_url": "http://localhost:8080/",

	"geonames.timeout":         "60s",
	"geonames.user_agent":      defaultUserAgent,
	"geonames.max_retries":     5,
	"geonames.dump_dir":        "data/geonames",
	"geonames.dump_url":        geonames.DefaultDumpURL,
	"geonames.feature_file":    "allCountries.txt",
	"geonames.batch_size":      1000,
	"geonames.feature_classes": []string{},
	"geonames.min_population":  0,
	"geonames.languages":       []string{},

	"nlp.tag_set_files": []string{},
}

func setDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("STANBOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("stanbol")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "stanbol"))
		}
	}

	setDefaults(viper.GetViper())
	configureEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// decodeConfig unmarshals the settings of v.
func decodeConfig(v *viper.Viper) (types.StanbolConfig, error) {
	var cfg types.StanbolConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

// loadConfig returns the global configuration with secrets applied.
func loadConfig() (types.StanbolConfig, error) {
	cfg, err := decodeConfig(viper.GetViper())
	if err != nil {
		return cfg, err
	}
	cfg.Server.APIToken = loadedSecrets.Default(secrets.APIToken, cfg.Server.APIToken)
	return cfg, nil
}
