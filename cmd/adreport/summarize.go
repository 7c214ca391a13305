package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"adreport/internal/report"
)

var (
	summarizeBy    string
	summarizeLimit int
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize FILE...",
	Short: "Print a report table",
	Long: `Parse the given exports and print one aggregation as a table.

Group with --by: product, keyword, daily, account or placement.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeBy, "by", "product", "Grouping (product, keyword, daily, account, placement)")
	summarizeCmd.Flags().IntVar(&summarizeLimit, "limit", 0, "Show at most this many rows (0 for all)")
}

func runSummarize(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	printOverview(out, rep)
	return printTable(out, rep, summarizeBy, summarizeLimit)
}

func printOverview(w io.Writer, rep *report.Report) {
	o := rep.Overview
	fmt.Fprintf(w, "records %s, products %s, keywords %s, accounts %s\n",
		report.FormatInt(int64(o.Records)), report.FormatInt(int64(o.Products)),
		report.FormatInt(int64(o.Keywords)), report.FormatInt(int64(o.Accounts)))
	if !o.From.IsZero() {
		fmt.Fprintf(w, "period %s ~ %s\n", o.From.Format("2006-01-02"), o.To.Format("2006-01-02"))
	}
	fmt.Fprintf(w, "spend %s, sales %s, ROAS %s (target %s, %s)\n\n",
		report.FormatMoney(o.Metrics.Spend), report.FormatMoney(o.Metrics.Sales),
		report.FormatPercent(o.Metrics.ROAS()), report.FormatPercent(o.Target), o.Grade.Label())
}

var metricHeader = []string{"Impr", "Clicks", "Orders", "Spend", "Sales", "ROAS", "CTR", "CPC", "CVR"}

func metricCells(m report.Metrics) []string {
	return []string{
		report.FormatInt(m.Impressions),
		report.FormatInt(m.Clicks),
		report.FormatInt(m.Orders),
		report.FormatMoney(m.Spend),
		report.FormatMoney(m.Sales),
		report.FormatPercent(m.ROAS()),
		report.FormatPercent(m.CTR()),
		report.FormatFloat(m.CPC()),
		report.FormatPercent(m.CVR()),
	}
}

func printTable(w io.Writer, rep *report.Report, by string, limit int) error {
	var lead []string
	var rows [][]string

	switch by {
	case "product":
		lead = []string{"Product", "Target", "Grade"}
		for i := range rep.Products {
			p := &rep.Products[i]
			rows = append(rows, append([]string{p.Label(), report.FormatPercent(p.Target), p.Grade.Label()}, metricCells(p.Metrics)...))
		}
	case "keyword":
		lead = []string{"Product", "Keyword", "Grade"}
		for _, k := range rep.Keywords {
			rows = append(rows, append([]string{k.ProductLabel, k.Keyword, k.Grade.Label()}, metricCells(k.Metrics)...))
		}
	case "daily":
		lead = []string{"Date", "Grade"}
		for _, d := range rep.Daily {
			rows = append(rows, append([]string{d.Date.Format("2006-01-02"), d.Grade.Label()}, metricCells(d.Metrics)...))
		}
	case "account":
		lead = []string{"Account", "Products", "Grade"}
		for _, a := range rep.Accounts {
			rows = append(rows, append([]string{a.Account, report.FormatInt(int64(a.Products)), a.Grade.Label()}, metricCells(a.Metrics)...))
		}
	case "placement":
		lead = []string{"Placement", "Share"}
		for _, p := range rep.Placements {
			rows = append(rows, append([]string{p.Placement, report.FormatPercent(p.SpendShare)}, metricCells(p.Metrics)...))
		}
	default:
		return fmt.Errorf("unknown grouping %q", by)
	}

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(append(lead, metricHeader...))
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	align := make([]int, len(lead)+len(metricHeader))
	for i := range align {
		if i < len(lead) {
			align[i] = tablewriter.ALIGN_LEFT
		} else {
			align[i] = tablewriter.ALIGN_RIGHT
		}
	}
	table.SetColumnAlignment(align)
	table.AppendBulk(rows)
	table.Render()
	return nil
}
