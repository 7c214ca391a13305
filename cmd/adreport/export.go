package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"adreport/internal/export"
)

var (
	exportOutput string
	exportTable  string
)

var exportCmd = &cobra.Command{
	Use:   "export FILE...",
	Short: "Write the report to an xlsx workbook or a CSV table",
	Long: `Parse the given exports and write the filtered report.

The output format follows the extension of --output: .xlsx writes every
table into one workbook, .csv writes the table named by --table.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "report.xlsx", "Output file (.xlsx or .csv)")
	exportCmd.Flags().StringVar(&exportTable, "table", export.TableProducts, "Table for CSV output ("+strings.Join(export.TableNames, ", ")+")")
}

func runExport(cmd *cobra.Command, args []string) error {
	ext := strings.ToLower(filepath.Ext(exportOutput))
	if ext != ".xlsx" && ext != ".csv" {
		return fmt.Errorf("output must end in .xlsx or .csv, got %q", exportOutput)
	}
	if ext == ".csv" && !export.ValidTable(exportTable) {
		return fmt.Errorf("unknown table %q", exportTable)
	}

	view, err := currentView()
	if err != nil {
		return err
	}
	svc, ds, err := loadDataset(cmd, args)
	if err != nil {
		return err
	}
	rep := svc.Build(ds.Records, view.Filter)
	view.Apply(rep)

	var data []byte
	if ext == ".xlsx" {
		if data, err = export.WriteWorkbook(rep); err != nil {
			return err
		}
	} else {
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, exportTable, rep, view.Filter.Apply(ds.Records)); err != nil {
			return err
		}
		data = buf.Bytes()
	}

	if err := os.WriteFile(exportOutput, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", exportOutput)
	return nil
}
