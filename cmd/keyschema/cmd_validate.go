package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ezachrisen/keyschema"
)

// document is one input mapping and where it came from.
type document struct {
	source string
	data   map[string]any
}

func newValidateCmd(a *app) *cobra.Command {
	var (
		schemaID string
		explain  bool
	)
	cmd := &cobra.Command{
		Use:   "validate --schema ID FILE...",
		Short: "Validate YAML or JSON documents against a schema",
		Long: `Each file holds either a single mapping or a list of mappings. Every mapping is
validated independently; the command fails if any of them is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.cfg.Engine(a.logger)
			if err != nil {
				return err
			}
			vault, err := a.cfg.Vault(e)
			if err != nil {
				return err
			}
			schema, ok := vault.Schema(schemaID)
			if !ok {
				return fmt.Errorf("schema %q not found in %s", schemaID, a.configPath)
			}

			var docs []document
			for _, path := range args {
				d, err := readDocuments(path)
				if err != nil {
					return err
				}
				docs = append(docs, d...)
			}

			inputs := make([]map[string]any, len(docs))
			for i, d := range docs {
				inputs[i] = d.data
			}
			results, err := schema.EvaluateBatch(cmd.Context(), inputs, keyschema.Parallelism(a.cfg.Parallelism))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for i, res := range results {
				if res.Success() {
					fmt.Fprintf(out, "%s: ok\n", docs[i].source)
					continue
				}
				failed++
				if explain {
					_, diag := schema.Diagnose(docs[i].data)
					fmt.Fprintf(out, "%s:\n%s\n", docs[i].source, diag.String())
					continue
				}
				fmt.Fprintf(out, "%s:\n%s\n", docs[i].source, res.String())
			}
			a.logger.Debug("validation finished",
				zap.String("schema", schemaID),
				zap.Int("documents", len(docs)),
				zap.Int("failed", failed))

			fmt.Fprintf(out, "%s documents checked, %s invalid\n",
				humanize.Comma(int64(len(docs))), humanize.Comma(int64(failed)))
			if failed > 0 {
				return errInvalidInput
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&schemaID, "schema", "s", "", "ID of the schema to validate against")
	cmd.Flags().BoolVar(&explain, "explain", false, "show every evaluation stage for invalid documents")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

// readDocuments decodes a file holding a mapping or a list of mappings.
// JSON input is read by the same decoder, as JSON is valid YAML.
func readDocuments(path string) ([]document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	switch v := raw.(type) {
	case map[string]any:
		return []document{{source: path, data: v}}, nil
	case []any:
		docs := make([]document, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s: item %d is a %T, not a mapping", path, i, item)
			}
			docs = append(docs, document{source: fmt.Sprintf("%s[%d]", path, i), data: m})
		}
		return docs, nil
	case nil:
		return []document{{source: path, data: map[string]any{}}}, nil
	default:
		return nil, fmt.Errorf("%s: expected a mapping or a list of mappings, got %T", path, raw)
	}
}
