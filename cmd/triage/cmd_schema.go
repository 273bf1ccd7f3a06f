package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"triage/internal/schema"
)

var schemaFlags struct {
	validate string
}

var schemaCmd = &cobra.Command{
	Use:   "schema [name]",
	Short: "Print a JSON schema, or validate a file against it",
	Long: `Without arguments lists the schemas. With a name prints it. With --validate
checks a YAML or JSON file against the named schema (default: bundle).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringVar(&schemaFlags.validate, "validate", "", "File to validate")
}

func runSchema(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	name := ""
	if len(args) == 1 {
		name = args[0]
	}

	if schemaFlags.validate != "" {
		if name == "" {
			name = schema.Bundle
		}
		data, err := readAsJSON(schemaFlags.validate)
		if err != nil {
			return err
		}
		if err := schema.ValidateJSON(name, data); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: valid %s\n", schemaFlags.validate, name)
		return nil
	}

	if name == "" {
		for _, n := range schema.Names() {
			fmt.Fprintln(out, n)
		}
		return nil
	}
	raw, err := schema.Raw(name)
	if err != nil {
		return err
	}
	_, err = out.Write(raw)
	return err
}

// readAsJSON returns the file's content as JSON, converting YAML first.
func readAsJSON(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return json.Marshal(doc)
	}
	return data, nil
}
