package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/jsonschema"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := formDocument()
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
}

func formDocument() (*jsonschema.Schema, error) {
	s, err := formskema.FormSchema().JSONSchema()
	if err != nil {
		return nil, err
	}
	return jsonschema.Document("form", s), nil
}
