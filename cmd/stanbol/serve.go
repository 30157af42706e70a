// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pdiddy/stanbol/internal/nlp"
	"github.com/pdiddy/stanbol/internal/ontology"
	"github.com/pdiddy/stanbol/internal/server"
	"github.com/pdiddy/stanbol/internal/yard"
	"github.com/pdiddy/stanbol/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the yard, ontologies and tag sets over HTTP",
	Long: `Serve starts the REST server. Mutating requests require the bearer
token from server.api_token or .secrets/stanbol-api-token when one is
configured. The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	y, err := yard.Open(cfg.Yard)
	if err != nil {
		return err
	}
	defer y.Close()

	store, err := ontology.Open(cfg.Ontology)
	if err != nil {
		return err
	}
	defer store.Close()

	tagSets, err := loadTagSets(cfg.NLP)
	if err != nil {
		return err
	}

	if cfg.Server.APIToken == "" {
		log.Warn().Msg("no API token configured: mutating requests are not authenticated")
	}
	srv := server.New(cfg.Server, server.Deps{
		Ontologies: store,
		Yard:       y,
		TagSets:    tagSets,
		Version:    version,
	})
	return srv.Run(ctx)
}

// loadTagSets returns the built-in tag sets plus those listed in cfg.
func loadTagSets(cfg types.NLPConfig) (*nlp.Registry, error) {
	reg := nlp.DefaultRegistry()
	for _, path := range cfg.TagSetFiles {
		ts, err := nlp.LoadTagSetFile(path)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(ts); err != nil {
			return nil, fmt.Errorf("registering %s: %w", path, err)
		}
		log.Info().Str("tagset", ts.Name).Int("tags", ts.Len()).Msg("loaded tag set")
	}
	return reg, nil
}
