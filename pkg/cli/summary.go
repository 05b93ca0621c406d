package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"rulemerge/pkg/merge"
	"rulemerge/pkg/rules"
)

func printSummary(w io.Writer, report *merge.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Alias", "Source", "Lines", "Rules"})
	for _, stats := range report.Result.Stats {
		t.AppendRow(table.Row{stats.Source.Alias, stats.Source.ID, stats.Lines, stats.Rules})
	}
	t.AppendFooter(table.Row{"", "unique", "", report.Result.Len()})
	t.Render()

	_, _ = fmt.Fprintf(w, "merged %d unique rules, %d found in more than one source\n",
		report.Result.Len(), len(report.Duplicates))
	_, _ = fmt.Fprintf(w, "  generated %s\n", report.GeneratedAt.Format(rules.TimestampFormat))
	for _, path := range report.Paths {
		_, _ = fmt.Fprintf(w, "  wrote %s\n", path)
	}
	for _, key := range report.Published {
		_, _ = fmt.Fprintf(w, "  published %s\n", key)
	}
}
