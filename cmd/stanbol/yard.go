// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/stanbol/internal/yard"
	"github.com/pdiddy/stanbol/pkg/types"
)

var yardCmd = &cobra.Command{
	Use:   "yard",
	Short: "Read, write and query the entity store",
	Long: `Yard works on the local entity store directly, without a running
server. Representations are read and printed as YAML (or JSON with
--format json).`,
}

// --- get subcommand ---

var yardGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print one representation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withYard(func(y yard.Yard) error {
			rep, err := y.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printEncoded(cmd, rep)
		})
	},
}

// --- put subcommand ---

var yardPutCmd = &cobra.Command{
	Use:   "put <file.yaml|file.json>",
	Short: "Store the representations in a file",
	Long: `Put stores one representation or a list of representations read from
a YAML or JSON file ("-" reads stdin). Existing representations with the
same id are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := openInput(cmd, args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		return withYard(func(y yard.Yard) error {
			n, err := yard.Import(cmd.Context(), y, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %d representation(s) in yard %s\n", n, y.ID())
			return nil
		})
	},
}

// --- query subcommand ---

var yardQueryCmd = &cobra.Command{
	Use:   "query <query.yaml|query.json>",
	Short: "Run a field query read from a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := readQuery(cmd, args[0])
		if err != nil {
			return err
		}
		return withYard(func(y yard.Yard) error {
			result, err := y.Find(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printEncoded(cmd, result.Results)
		})
	},
}

// --- find subcommand ---

var yardFindCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Full-text search over labels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, _ := cmd.Flags().GetString("field")
		langs, _ := cmd.Flags().GetStringSlice("lang")
		limit, _ := cmd.Flags().GetInt("limit")
		ids, _ := cmd.Flags().GetBool("ids")

		return withYard(func(y yard.Yard) error {
			reps, err := y.FindByName(cmd.Context(), args[0], field, langs, limit)
			if err != nil {
				return err
			}
			if ids {
				for _, r := range reps {
					fmt.Fprintln(cmd.OutOrStdout(), r.ID)
				}
				return nil
			}
			return printEncoded(cmd, reps)
		})
	},
}

// --- export subcommand ---

var yardExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export representations to YAML or JSON",
	Long: `Export writes every representation (or those matching --query) to
stdout or --out, as YAML or JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")
		queryPath, _ := cmd.Flags().GetString("query")
		if err := yard.ExportFormat(format).Validate(); err != nil {
			return err
		}

		q := types.FieldQuery{}
		if queryPath != "" {
			var err error
			if q, err = readQuery(cmd, queryPath); err != nil {
				return err
			}
		}

		return withYard(func(y yard.Yard) error {
			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}
			n, err := yard.Export(cmd.Context(), y, q, yard.ExportFormat(format), w)
			if err != nil {
				return err
			}
			if outPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d representation(s) to %s\n", n, outPath)
			}
			return nil
		})
	},
}

// --- remove subcommand ---

var yardRemoveCmd = &cobra.Command{
	Use:   "remove <id>...",
	Short: "Remove representations (\"*\" removes all)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withYard(func(y yard.Yard) error {
			if len(args) == 1 && args[0] == "*" {
				if err := y.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared yard %s\n", y.ID())
				return nil
			}
			if err := y.RemoveAll(cmd.Context(), args); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d representation(s)\n", len(args))
			return nil
		})
	},
}

// --- count subcommand ---

var yardCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of stored representations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withYard(func(y yard.Yard) error {
			n, err := y.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		})
	},
}

// --- shared helpers ---

// withYard opens the configured yard for the duration of fn.
func withYard(fn func(y yard.Yard) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	y, err := yard.Open(cfg.Yard)
	if err != nil {
		return err
	}
	defer y.Close()
	return fn(y)
}

func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

// readQuery parses a FieldQuery from YAML or JSON.
func readQuery(cmd *cobra.Command, path string) (types.FieldQuery, error) {
	var q types.FieldQuery
	in, err := openInput(cmd, path)
	if err != nil {
		return q, err
	}
	defer in.Close()
	if err := yaml.NewDecoder(in).Decode(&q); err != nil {
		return q, fmt.Errorf("parsing query %s: %w", path, err)
	}
	return q, nil
}

// printEncoded writes v in the --format of cmd.
func printEncoded(cmd *cobra.Command, v any) error {
	format, _ := cmd.Flags().GetString("format")
	w := cmd.OutOrStdout()
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}

func init() {
	yardCmd.PersistentFlags().String("format", "yaml", "output format: yaml or json")

	yardFindCmd.Flags().String("field", "", "field to search (default rdfs:label)")
	yardFindCmd.Flags().StringSlice("lang", nil, "restrict to these languages")
	yardFindCmd.Flags().Int("limit", 0, "maximum results (0 = yard default)")
	yardFindCmd.Flags().Bool("ids", false, "print ids only")

	yardExportCmd.Flags().String("out", "", "write to this file instead of stdout")
	yardExportCmd.Flags().String("query", "", "export only representations matching this query file")

	yardCmd.AddCommand(yardGetCmd, yardPutCmd, yardQueryCmd, yardFindCmd, yardExportCmd, yardRemoveCmd, yardCountCmd)
	rootCmd.AddCommand(yardCmd)
}
