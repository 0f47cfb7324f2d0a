package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Example: "nestedarrow-tool stats <file.parquet>",
	Short:   "print per-column size and encoding stats of a parquet file",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(cmd, args[0])
	},
}

func runStats(cmd *cobra.Command, file string) error {
	pf, err := openParquetFile(cmd.Context(), file)
	if err != nil {
		return err
	}

	meta := pf.Metadata()
	fmt.Println("rows:", meta.NumRows)
	fmt.Println("row groups:", len(meta.RowGroups))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Col", "Type", "NumVal", "Encoding", "Compressed", "Uncompressed"})
	for _, rg := range meta.RowGroups {
		for _, ds := range rg.Columns {
			encodings := make([]string, 0, len(ds.MetaData.Encoding))
			for _, e := range ds.MetaData.Encoding {
				encodings = append(encodings, e.String())
			}
			table.Append([]string{
				strings.Join(ds.MetaData.PathInSchema, "/"),
				ds.MetaData.Type.String(),
				fmt.Sprintf("%d", ds.MetaData.NumValues),
				strings.Join(encodings, " "),
				humanize.Bytes(uint64(ds.MetaData.TotalCompressedSize)),
				humanize.Bytes(uint64(ds.MetaData.TotalUncompressedSize)),
			})
		}
	}
	table.Render()
	return nil
}
