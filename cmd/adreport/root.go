package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"adreport/internal/analysis"
	"adreport/internal/config"
	"adreport/internal/logging"
	"adreport/internal/models"
)

var (
	rulesFile string
	logLevel  string

	filterAccounts []string
	filterFrom     string
	filterTo       string
	filterProduct  string
	filterQuery    string
	sortKey        string
	sortAsc        bool
)

var rootCmd = &cobra.Command{
	Use:   "adreport",
	Short: "Summarize and export Coupang ads manager reports",
	Long: `adreport reads ads manager exports (CSV, TSV, XLSX or XLS) and
aggregates them by product, keyword, day, account or placement.

  summarize   Print a report table to the terminal
  export      Write the report as an Excel workbook or a CSV table`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "rules.yaml", "Rules file with column aliases, patterns and products")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.PersistentFlags().StringSliceVar(&filterAccounts, "account", nil, "Only include these accounts")
	rootCmd.PersistentFlags().StringVar(&filterFrom, "from", "", "Start date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&filterTo, "to", "", "End date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&filterProduct, "product", "", "Only include this product code")
	rootCmd.PersistentFlags().StringVar(&filterQuery, "query", "", "Only include keywords containing this text")
	rootCmd.PersistentFlags().StringVar(&sortKey, "sort", "spend", "Sort key (spend, sales, roas, ctr, cpc, cvr, clicks, impressions, orders, code)")
	rootCmd.PersistentFlags().BoolVar(&sortAsc, "asc", false, "Sort ascending")

	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(exportCmd)
}

// currentView builds the filter and sort from the persistent flags.
func currentView() (analysis.View, error) {
	values := url.Values{}
	for _, a := range filterAccounts {
		values.Add("account", a)
	}
	values.Set("from", filterFrom)
	values.Set("to", filterTo)
	values.Set("product", filterProduct)
	values.Set("q", filterQuery)
	values.Set("sort", sortKey)
	if sortAsc {
		values.Set("order", "asc")
	}
	return analysis.ParseView(values)
}

// loadDataset parses every file. Files that can't be read are reported on
// stderr; it fails only when none could be read.
func loadDataset(cmd *cobra.Command, paths []string) (*analysis.Service, *models.Dataset, error) {
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), logLevel, "text", true)
	slog.SetDefault(logger)

	rules, err := config.LoadRules(rulesFile)
	if err != nil {
		return nil, nil, err
	}
	svc, err := analysis.New(rules, nil, logger)
	if err != nil {
		return nil, nil, err
	}

	names := uploadNames(paths)
	uploads := make([]analysis.Upload, 0, len(paths))
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, nil, err
		}
		uploads = append(uploads, analysis.Upload{Name: names[i], Data: data})
	}

	parsed, results := svc.Parse(uploads, "cli")
	for _, r := range results {
		switch {
		case r.Error != "":
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", r.Name, r.Error)
		case len(r.Warnings) > 0:
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d rows, warnings:\n  %s\n", r.Name, r.Rows, strings.Join(r.Warnings, "\n  "))
		}
	}
	if len(parsed) == 0 {
		return nil, nil, fmt.Errorf("none of the %d files could be read", len(paths))
	}

	ds := models.NewDataset()
	ds.Merge(parsed...)
	return svc, ds, nil
}

// uploadNames names each input by its base name. Inputs sharing a base name
// are prefixed with their directory, so brand/report.csv and
// outlet/report.csv become brand_report.csv and outlet_report.csv.
func uploadNames(paths []string) []string {
	count := make(map[string]int, len(paths))
	for _, p := range paths {
		count[filepath.Base(p)]++
	}

	names := make([]string, len(paths))
	for i, p := range paths {
		base := filepath.Base(p)
		names[i] = base
		if count[base] < 2 {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if dir := filepath.Base(filepath.Dir(p)); dir != "." && dir != string(filepath.Separator) {
			names[i] = dir + "_" + base
		}
	}
	return names
}
