// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/stanbol/internal/geonames"
	"github.com/pdiddy/stanbol/internal/secrets"
	"github.com/pdiddy/stanbol/internal/yard"
	"github.com/pdiddy/stanbol/pkg/types"
)

var geonamesCmd = &cobra.Command{
	Use:   "geonames",
	Short: "Download and index geonames.org gazetteer dumps",
}

var geonamesFetchCmd = &cobra.Command{
	Use:   "fetch [files...]",
	Short: "Download dump files into the dump directory",
	Long: `Fetch downloads the named dump files (default: the code tables and the
configured feature dump) from geonames.dump_url. Files already present,
zipped or unzipped, are skipped.`,
	RunE: runGeonamesFetch,
}

var geonamesIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the dumps into the yard",
	Long: `Index reads the code tables, optional alternate names and hierarchy,
and the feature dump from the dump directory and stores one
representation per feature in the yard. Malformed lines are counted and
skipped.`,
	RunE: runGeonamesIndex,
}

func init() {
	geonamesCmd.PersistentFlags().String("dump-dir", "", "dump directory (overrides geonames.dump_dir)")
	geonamesCmd.PersistentFlags().String("feature-file", "", "feature dump, e.g. cities1000.txt (overrides geonames.feature_file)")

	geonamesFetchCmd.Flags().Bool("alternate-names", false, "also fetch alternateNames.zip")
	geonamesFetchCmd.Flags().Bool("hierarchy", false, "also fetch hierarchy.zip")

	geonamesIndexCmd.Flags().StringSlice("classes", nil, "index only these feature classes (e.g. P,A)")
	geonamesIndexCmd.Flags().Int64("min-population", 0, "skip features with a smaller population")
	geonamesIndexCmd.Flags().StringSlice("languages", nil, "keep alternate names in these languages only")
	geonamesIndexCmd.Flags().Int("batch-size", 0, "features per yard transaction")

	geonamesCmd.AddCommand(geonamesFetchCmd, geonamesIndexCmd)
	rootCmd.AddCommand(geonamesCmd)
}

// geonamesConfig applies command line overrides to the configured settings.
func geonamesConfig(cmd *cobra.Command) (types.StanbolConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, err
	}
	g := &cfg.Geonames
	if v, _ := cmd.Flags().GetString("dump-dir"); v != "" {
		g.DumpDir = v
	}
	if v, _ := cmd.Flags().GetString("feature-file"); v != "" {
		g.FeatureFile = v
	}
	if cmd.Flags().Changed("classes") {
		g.FeatureClasses, _ = cmd.Flags().GetStringSlice("classes")
	}
	if cmd.Flags().Changed("min-population") {
		g.MinPopulation, _ = cmd.Flags().GetInt64("min-population")
	}
	if cmd.Flags().Changed("languages") {
		g.Languages, _ = cmd.Flags().GetStringSlice("languages")
	}
	if cmd.Flags().Changed("batch-size") {
		g.BatchSize, _ = cmd.Flags().GetInt("batch-size")
	}
	g.UserAgent = loadedSecrets.Default(secrets.GeonamesUserAgent, g.UserAgent)
	return cfg, nil
}

func runGeonamesFetch(cmd *cobra.Command, args []string) error {
	cfg, err := geonamesConfig(cmd)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = geonames.DefaultDumps(cfg.Geonames)
		if v, _ := cmd.Flags().GetBool("alternate-names"); v {
			names = append(names, "alternateNames.zip")
		}
		if v, _ := cmd.Flags().GetBool("hierarchy"); v {
			names = append(names, "hierarchy.zip")
		}
	}

	client := &http.Client{Timeout: cfg.Geonames.Timeout}
	result, err := geonames.Fetch(cmd.Context(), client, cfg.Geonames, names, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed to download", result.Failed)
	}
	return nil
}

func runGeonamesIndex(cmd *cobra.Command, args []string) error {
	cfg, err := geonamesConfig(cmd)
	if err != nil {
		return err
	}

	y, err := yard.Open(cfg.Yard)
	if err != nil {
		return err
	}
	defer y.Close()

	_, err = geonames.NewIndexer(y, cfg.Geonames, cmd.OutOrStdout()).Run(cmd.Context())
	return err
}
