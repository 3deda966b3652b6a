package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/api/models"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/services"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func dollars(n *int) string {
	if n == nil {
		return "-"
	}
	return "$" + humanize.Comma(int64(*n))
}

func orDash(n *int, unit string) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%d %s", *n, unit)
}

func renderLotteries(w io.Writer, lotteries []domain.Lottery) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Type", "Title", "Location", "Units", "Closes in", "Income", "Applied"})
	for _, l := range lotteries {
		income := "-"
		if l.MinIncome != nil && l.MaxIncome != nil {
			income = dollars(l.MinIncome) + " - " + dollars(l.MaxIncome)
		}
		applied := ""
		if l.IsApplied {
			applied = "yes"
		}
		t.AppendRow(table.Row{l.ID, l.Type, l.Title, l.Location,
			orDash(l.UnitsAvailable, "units"), orDash(l.DaysUntilClosing, "days"), income, applied})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d lotteries", len(lotteries))})
	t.Style().Format.Footer = text.FormatDefault
	t.Render()
}

func renderScrapeSummaries(w io.Writer, results []models.ScrapeSummary) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Type", "Lotteries", "IDs"})
	for _, r := range results {
		t.AppendRow(table.Row{r.Type, r.Count, joinIDs(r.IDs, 10)})
	}
	t.Render()
}

type resultGroup struct {
	title       string
	match       func(domain.ApplicationResult) bool
	withMessage bool
}

var resultGroups = []resultGroup{
	{"Successfully applied", domain.ApplicationResult.Success, false},
	{"Already applied", domain.ApplicationResult.AlreadyApplied, false},
	{"Not eligible", func(r domain.ApplicationResult) bool { return !r.Eligible }, true},
	{"Failed", domain.ApplicationResult.Failed, true},
}

// renderRun prints every processed lottery grouped by outcome, then the
// totals.
func renderRun(w io.Writer, run *services.Run) {
	fmt.Fprintf(w, "\nRun %s (%s lotteries)\n", run.ID, run.Type)

	t := newTable(w)
	t.AppendHeader(table.Row{"Outcome", "Page", "Lottery", "Message"})
	for _, g := range resultGroups {
		for _, r := range run.Results {
			if !g.match(r) {
				continue
			}
			msg := ""
			if g.withMessage {
				msg = r.Message
			}
			t.AppendRow(table.Row{g.title, r.Page, r.Title, msg})
		}
	}
	t.Render()

	s := run.Summary
	totals := newTable(w)
	totals.AppendHeader(table.Row{"Applied", "Already applied", "Not eligible", "Failed", "Total"})
	totals.AppendRow(table.Row{s.Applied, s.AlreadyApplied, s.NotEligible, s.Failed, s.Total})
	totals.Render()
}

func renderApplications(w io.Writer, results []domain.ApplicationResult) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Run", "Processed", "Type", "Lottery", "Status", "Message"})
	for _, r := range results {
		t.AppendRow(table.Row{shortID(r.RunID), humanize.Time(r.ProcessedAt), r.Type, r.Title, r.Status, r.Message})
	}
	t.Render()
}

// joinIDs lists at most n IDs.
func joinIDs(ids []string, n int) string {
	if len(ids) <= n {
		return strings.Join(ids, ", ")
	}
	return strings.Join(ids[:n], ", ") + fmt.Sprintf(" (+%d more)", len(ids)-n)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
