package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tabledriver/typeschema/jsonschema"
	"github.com/tabledriver/typeschema/parquetschema"
	"github.com/tabledriver/typeschema/schema"
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Infer and print the schema of a data file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var fields []schema.Field
		var err error
		switch ext := filepath.Ext(args[0]); ext {
		case ".json":
			fields, err = jsonschema.InferFile(args[0])
		case ".parquet":
			fields, err = parquetschema.Read(args[0])
		default:
			return fmt.Errorf("unsupported file extension: %s", ext)
		}
		if err != nil {
			return fmt.Errorf("couldn't infer schema: %w", err)
		}
		return writeFields(cmd.OutOrStdout(), fields)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
