package table

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"github.com/lanterndata/extupdate/extupdate/trial"
)

const (
	statusPassed = "passed"
	statusFailed = "failed"
)

// Presenter renders the summary of an upgrade run
type Presenter struct {
	report    trial.Report
	withColor bool
}

// NewPresenter is a *Presenter constructor
func NewPresenter(report trial.Report) *Presenter {
	return &Presenter{
		report:    report,
		withColor: supportsColor(),
	}
}

func (p *Presenter) Present(output io.Writer) error {
	if len(p.report.Results) == 0 {
		if _, err := io.WriteString(output, "No upgrade trials were run\n"); err != nil {
			return err
		}
		return p.presentSkipped(output)
	}

	table := newTable(output, []string{"From", "To", "Result", "Duration", "Detail"})

	rs := getRows(p.report.Results)
	if p.withColor {
		for _, r := range rs {
			table.Rich(r.Columns(), []tablewriter.Colors{{}, {}, getStatusColor(r.Status), {}, {}})
		}
	} else {
		table.AppendBulk(rs.Render())
	}

	table.Render()

	if _, err := fmt.Fprintf(output, "\n%d of %d upgrade trials failed\n", p.report.Failed(), len(p.report.Results)); err != nil {
		return err
	}
	return p.presentSkipped(output)
}

func (p *Presenter) presentSkipped(output io.Writer) error {
	if len(p.report.Skipped) == 0 {
		return nil
	}
	names := make([]string, len(p.report.Skipped))
	for i, v := range p.report.Skipped {
		names[i] = v.String()
	}
	_, err := fmt.Fprintf(output, "Skipped (incompatible with platform version %s): %s\n", p.report.PlatformVersion, strings.Join(names, ", "))
	return err
}

func newTable(output io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(output)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetAutoFormatHeaders(true)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

func supportsColor() bool {
	return color.Enable && color.SupportColor()
}

type rows []row

type row struct {
	From     string
	To       string
	Status   string
	Duration string
	Detail   string
}

func getRows(results []trial.Result) rows {
	rs := make(rows, 0, len(results))
	for _, r := range results {
		rs = append(rs, newRow(r))
	}
	return rs
}

func newRow(r trial.Result) row {
	status := statusPassed
	detail := r.Note
	if !r.Succeeded() {
		status = statusFailed
		detail = firstLine(r.Err.Error())
	}

	return row{
		From:     r.Pair.From.String(),
		To:       r.Pair.To.String(),
		Status:   status,
		Duration: FormatDuration(r.Duration),
		Detail:   detail,
	}
}

func (r row) Columns() []string {
	return []string{r.From, r.To, r.Status, r.Duration, r.Detail}
}

func (rs rows) Render() [][]string {
	out := make([][]string, len(rs))
	for idx, r := range rs {
		out[idx] = r.Columns()
	}
	return out
}

// FormatDuration renders a trial duration the way a person would say it, e.g. "3 minutes".
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "< 1 second"
	}
	// RelTime measures the magnitude of the difference between two instants
	var epoch time.Time
	return strings.TrimSpace(humanize.RelTime(epoch, epoch.Add(d), "", ""))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func getStatusColor(status string) tablewriter.Colors {
	switch status {
	case statusPassed:
		return tablewriter.Colors{tablewriter.Normal, tablewriter.FgGreenColor}
	case statusFailed:
		return tablewriter.Colors{tablewriter.Bold, tablewriter.FgRedColor}
	}
	return tablewriter.Colors{}
}
