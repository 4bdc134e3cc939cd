package forksyncer

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dynacylabs/github-fork-syncer/internal/cliio"
	"github.com/dynacylabs/github-fork-syncer/internal/model"
	"github.com/dynacylabs/github-fork-syncer/internal/sortutil"
	"github.com/dynacylabs/github-fork-syncer/internal/termstyle"
)

// renderSummary prints the per-fork table, the aggregate totals line, and
// the itemized error list. The summary is always printed in full, even when
// every fork failed.
func renderSummary(out io.Writer, summary *model.RunSummary, color bool) error {
	headers := []string{"REPO", "SYNCED", "CREATED", "SKIPPED", "FAILED", "STATUS"}
	forks := append([]model.ForkReport(nil), summary.Forks...)
	sortutil.SortForkReports(forks)
	rows := make([][]string, 0, len(forks))
	for _, fork := range forks {
		rows = append(rows, []string{
			fork.Fork.FullName(),
			strconv.Itoa(fork.Synced()),
			strconv.Itoa(fork.Created()),
			strconv.Itoa(fork.SkippedBranches()),
			strconv.Itoa(fork.Failed()),
			forkStatusCell(fork, color),
		})
	}
	if err := cliio.WriteTable(out, color, false, headers, rows); err != nil {
		return err
	}

	elapsed := summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond)
	fmt.Fprintf(out, "\n%d repos processed, %d branches synced, %d created, %d skipped, %d errors in %s\n",
		summary.ReposProcessed, summary.BranchesSynced, summary.BranchesCreated,
		summary.BranchesSkipped, len(summary.Errors), elapsed)

	if len(summary.Errors) > 0 {
		fmt.Fprintln(out, "\nErrors:")
		for _, runErr := range summary.Errors {
			fmt.Fprintf(out, "  %s: %s\n", runErr.Scope, runErr.Message)
		}
	}
	return nil
}

func forkStatusCell(report model.ForkReport, color bool) string {
	switch {
	case report.Skipped:
		return termstyle.Colorize(color, "skipped", termstyle.Warn)
	case report.Failed() > 0:
		return termstyle.Colorize(color, "errors", termstyle.Error)
	case report.Synced() > 0 || report.Created() > 0:
		return termstyle.Colorize(color, "ok", termstyle.Healthy)
	default:
		return "idle"
	}
}
