package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MacMoment/coding/internal/services"
)

var importDocsFile string

var importDocsCommand = &cobra.Command{
	Use:   "import-docs",
	Short: "Load documentation entries from a YAML file",
	Long: `Reads a YAML file of documentation entries and stores them for retrieval.

The file is either a list of entries or a mapping with an "entries" list. Each
entry needs title, platform and content; version and source are optional.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(importDocsFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", importDocsFile, err)
		}
		entries, err := parseDocsFile(raw)
		if err != nil {
			return err
		}
		ctx, stop, a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer stop()
		defer a.Close()
		if err := a.Migrate(); err != nil {
			return err
		}
		n, err := a.Services.Docs.Import(ctx, entries)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d documentation entries\n", n)
		return nil
	},
}

func init() {
	importDocsCommand.Flags().StringVarP(&importDocsFile, "file", "f", "", "Path to the docs YAML file")
	_ = importDocsCommand.MarkFlagRequired("file")
	rootCmd.AddCommand(importDocsCommand)
}

var entryValidator = validator.New()

func parseDocsFile(raw []byte) ([]services.ImportEntry, error) {
	var entries []services.ImportEntry
	trimmed := bytes.TrimSpace(raw)
	if bytes.HasPrefix(trimmed, []byte("-")) {
		if err := yaml.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("parse docs file: %w", err)
		}
	} else {
		var doc struct {
			Entries []services.ImportEntry `yaml:"entries"`
		}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse docs file: %w", err)
		}
		entries = doc.Entries
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("docs file has no entries")
	}
	for i := range entries {
		if err := entryValidator.Struct(entries[i]); err != nil {
			return nil, fmt.Errorf("entry %d (%q): %w", i, entries[i].Title, err)
		}
	}
	return entries, nil
}
