package cmd

import (
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/polarsignals/nestedarrow"
)

var (
	dumpStart int64
	dumpEnd   int64
)

var dumpCmd = &cobra.Command{
	Use:     "dump",
	Example: "nestedarrow-tool dump <file.parquet>",
	Short:   "reconstruct every row group as an arrow record and print it",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump(cmd, args[0])
	},
}

func init() {
	dumpCmd.Flags().Int64Var(&dumpStart, "start", 0, "first row of each row group to reconstruct")
	dumpCmd.Flags().Int64Var(&dumpEnd, "end", -1, "row of each row group to stop before, -1 for all")
}

func runDump(cmd *cobra.Command, file string) error {
	pf, err := openParquetFile(cmd.Context(), file)
	if err != nil {
		return err
	}

	logger := level.NewFilter(log.NewLogfmtLogger(os.Stderr), level.AllowInfo())
	options := []nestedarrow.Option{nestedarrow.WithLogger(logger)}
	if dumpEnd >= 0 {
		options = append(options, nestedarrow.WithRowRange(dumpStart, dumpEnd))
	}
	reader := nestedarrow.NewReader(options...)

	records, err := reader.FileToRecords(cmd.Context(), pf)
	if err != nil {
		return err
	}
	for i, record := range records {
		fmt.Printf("row group %d: %d rows\n", i, record.NumRows())
		fmt.Println(record)
		record.Release()
	}
	return nil
}
