package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tabledriver/typeschema/pgschema"
)

type databaseConfig struct {
	Database pgschema.Config `yaml:"database"`
}

func readDatabaseConfig() (*databaseConfig, error) {
	path := os.Getenv("TYPESCHEMA_CONFIG")
	if path == "" {
		dir, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("couldn't resolve home directory: %w", err)
		}
		path = filepath.Join(dir, ".typeschema.yml")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open config file: %w", err)
	}
	defer f.Close()

	var config databaseConfig
	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		return nil, fmt.Errorf("couldn't decode yaml configuration: %w", err)
	}
	return &config, nil
}

var tableCmd = &cobra.Command{
	Use:   "table <name>",
	Short: "Print the schema of a database table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := readDatabaseConfig()
		if err != nil {
			return fmt.Errorf("couldn't read config: %w", err)
		}
		fields, err := pgschema.Describe(cmd.Context(), &config.Database, args[0])
		if err != nil {
			return fmt.Errorf("couldn't describe table: %w", err)
		}
		return writeFields(cmd.OutOrStdout(), fields)
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)
}
