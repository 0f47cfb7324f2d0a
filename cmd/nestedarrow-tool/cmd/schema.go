package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polarsignals/nestedarrow"
)

var schemaCmd = &cobra.Command{
	Use:     "schema",
	Example: "nestedarrow-tool schema <file.parquet>",
	Short:   "print the parquet schema and the arrow schema it reconstructs to",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchema(cmd, args[0])
	},
}

func runSchema(cmd *cobra.Command, file string) error {
	pf, err := openParquetFile(cmd.Context(), file)
	if err != nil {
		return err
	}

	fmt.Println("parquet schema:")
	fmt.Println(pf.Schema())

	schema, err := nestedarrow.SchemaFromParquet(pf.Schema())
	if err != nil {
		return err
	}
	fmt.Println("arrow schema:")
	fmt.Println(schema)
	return nil
}
