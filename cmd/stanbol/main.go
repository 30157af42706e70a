// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the stanbol CLI: the REST server,
// yard maintenance, ontology import/export and the geonames indexer.
package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pdiddy/stanbol/internal/observability"
	"github.com/pdiddy/stanbol/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets = secrets.Secrets{}

// rootCmd is the base command for the stanbol CLI.
var rootCmd = &cobra.Command{
	Use:   "stanbol",
	Short: "Entity store, ontology manager and gazetteer indexer",
	Long: `stanbol manages a local entity store (the yard), a store of OWL
ontologies and the tag sets used for part-of-speech annotation, and
serves all of them over a REST API.

Batch work such as indexing geonames.org dumps or importing ontologies
runs as subcommands against the same data directories the server uses.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		observability.InitLogger("stanbol", level, jsonLogs)

		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if keys := s.Keys(); len(keys) > 0 {
			log.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./stanbol.yaml or ~/.config/stanbol/stanbol.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-json", false, "write logs as JSON instead of console text")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
