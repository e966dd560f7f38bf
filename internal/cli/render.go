package cli

import (
	"delivery-route-builder/internal/domain"
	"delivery-route-builder/internal/services"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	yesFmt  = color.New(color.FgGreen).SprintFunc()
	noFmt   = color.New(color.FgRed).SprintFunc()
	bold    = color.New(color.Bold).SprintFunc()
	warnFmt = color.New(color.FgYellow).SprintfFunc()
	failFmt = color.New(color.FgRed, color.Bold).SprintfFunc()
)

var flagColumns = []string{"initialized", "writable", "stops_uploaded", "optimized", "distributed"}

// renderStatus prints the per-unit flag table, the summary line and, when
// some units stopped short of final, the incomplete titles.
func renderStatus(w io.Writer, rows []domain.StatusRow, final domain.Stage) {
	width := len("title")
	for _, r := range rows {
		if len(r.Title) > width {
			width = len(r.Title)
		}
	}

	header := fmt.Sprintf("%-*s", width, "title")
	for _, c := range flagColumns {
		header += "  " + c
	}
	fmt.Fprintln(w, bold(header))

	yes, no := yesFmt("yes"), noFmt("no ")
	for _, r := range rows {
		line := fmt.Sprintf("%-*s", width, r.Title)
		for i, v := range r.Flags.Slice() {
			cell := no
			if v {
				cell = yes
			}
			line += "  " + cell + strings.Repeat(" ", len(flagColumns[i])-3)
		}
		if r.HaltReason != "" {
			line += "  " + warnFmt("(%s)", r.HaltReason)
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, services.Summarize(rows).String())

	if incomplete := services.Incomplete(rows, final); len(incomplete) > 0 {
		fmt.Fprintln(w, failFmt("%d of %d plans incomplete: %s", len(incomplete), len(rows), strings.Join(incomplete, ", ")))
	}
}

// renderWarnings prints reconciliation warnings, one per line.
func renderWarnings(w io.Writer, warnings []services.Warning) {
	for _, warn := range warnings {
		fmt.Fprintln(w, warnFmt("warning: %s: %s (%d)", warn.PlanID, warn.Message, warn.Count))
	}
}
