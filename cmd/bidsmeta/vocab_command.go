package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bidsmeta/internal/terms"
	"bidsmeta/internal/vocab"
)

func newVocabCommand(ctx *commandContext) *cobra.Command {
	var showTerms bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "List vocabulary mappings, including configured overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			overrides, err := vocab.LoadOverrides(cfg.Vocabulary.OverridesPath)
			if err != nil {
				return err
			}
			registry := terms.Default()
			mapper, err := vocab.NewMapper(registry, nil, overrides)
			if err != nil {
				return err
			}

			type mapping struct {
				Table  string `json:"table"`
				Source string `json:"source"`
				Term   string `json:"term"`
			}
			var mappings []mapping
			for _, table := range mapper.Tables() {
				for _, e := range table.Entries() {
					mappings = append(mappings, mapping{Table: string(table.ID), Source: e.Source, Term: e.Term})
				}
			}

			if asJSON {
				payload := map[string]any{"mappings": mappings}
				if showTerms {
					payload["terms"] = termListing(registry)
				}
				return writeJSON(cmd.OutOrStdout(), payload)
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(mappings))
			for _, m := range mappings {
				rows = append(rows, []string{m.Table, m.Source, m.Term})
			}
			fmt.Fprintln(out, renderTable([]string{"Table", "Dataset value", "Term"}, rows))
			if showTerms {
				rows = rows[:0]
				for _, set := range listedTermSets {
					for _, name := range registry.Names(set) {
						rows = append(rows, []string{string(set), name})
					}
				}
				fmt.Fprintln(out, renderTable([]string{"Term set", "Name"}, rows))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showTerms, "terms", false, "Also list the registered controlled terms")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

var listedTermSets = []terms.Set{terms.SetMRAcquisitionType, terms.SetMRIPulseSequence, terms.SetContentType}

func termListing(registry *terms.Registry) map[string][]string {
	out := make(map[string][]string, len(listedTermSets))
	for _, set := range listedTermSets {
		out[string(set)] = registry.Names(set)
	}
	return out
}
