package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "typeschema",
	Short: "Derive table schemas from data files and databases",
	Example: `typeschema describe myfile.json
typeschema describe myfile.parquet --output dot
typeschema table users`,
	SilenceErrors: true,
}

var output string
var debugDump bool

func init() {
	rootCmd.PersistentFlags().StringVar(&output, "output", "table", "Output format. One of: table, dot, arrow.")
	rootCmd.PersistentFlags().BoolVar(&debugDump, "debug", false, "Dump the raw derived fields.")
}

func Execute(ctx context.Context) {
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}
