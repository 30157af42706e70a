// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/stanbol/internal/errs"
	"github.com/pdiddy/stanbol/internal/ontology"
)

var ontologyCmd = &cobra.Command{
	Use:   "ontology",
	Short: "List, import and export stored ontologies",
}

var ontologyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored ontologies",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOntologies(func(s *ontology.Store) error {
			list, err := s.ListOntologies(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No ontologies stored.")
				return nil
			}
			for _, o := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s  %s\n", o.Path, o.URI)
			}
			return nil
		})
	},
}

var ontologyImportCmd = &cobra.Command{
	Use:   "import <path> <file.nt>",
	Short: "Import N-Triples into an ontology",
	Long: `Import reads N-Triples ("-" reads stdin) into the ontology stored at
path. With --uri the ontology is created first when it does not exist.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		uri, _ := cmd.Flags().GetString("uri")
		description, _ := cmd.Flags().GetString("description")

		in, err := openInput(cmd, args[1])
		if err != nil {
			return err
		}
		defer in.Close()

		return withOntologies(func(s *ontology.Store) error {
			ctx := cmd.Context()
			if uri != "" {
				_, err := s.GetOntology(ctx, path)
				if errs.IsNotFound(err) {
					_, err = s.CreateOntology(ctx, path, uri, description)
				}
				if err != nil {
					return err
				}
			}
			n, err := s.ImportTriples(ctx, path, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d triple(s) into %s\n", n, path)
			return nil
		})
	},
}

var ontologyExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Write an ontology as N-Triples",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")
		return withOntologies(func(s *ontology.Store) error {
			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}
			n, err := s.ExportTriples(cmd.Context(), args[0], w)
			if err != nil {
				return err
			}
			if outPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d triple(s) to %s\n", n, outPath)
			}
			return nil
		})
	},
}

// withOntologies opens the configured ontology store for the duration of fn.
func withOntologies(fn func(s *ontology.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := ontology.Open(cfg.Ontology)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func init() {
	ontologyImportCmd.Flags().String("uri", "", "create the ontology with this uri when missing")
	ontologyImportCmd.Flags().String("description", "", "description used when creating the ontology")
	ontologyExportCmd.Flags().String("out", "", "write to this file instead of stdout")

	ontologyCmd.AddCommand(ontologyListCmd, ontologyImportCmd, ontologyExportCmd)
	rootCmd.AddCommand(ontologyCmd)
}
