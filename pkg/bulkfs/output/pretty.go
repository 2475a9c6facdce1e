package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MaxPrettyRows is the number of rows the pretty formatter shows before
// summarising the rest.
const MaxPrettyRows = 50

// PrettyFormatter renders styled boxes and a table for terminals.
type PrettyFormatter struct {
	// MaxRows overrides MaxPrettyRows when positive.
	MaxRows int
}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	if r.Error != "" {
		w.WriteString(ErrorBox.Render(ErrorStyle.Bold(true).Render("Error: ") + r.Error))
		w.WriteString("\n")
		return nil
	}

	w.WriteString(f.formatTable(r))

	if len(r.Counts) > 0 {
		w.WriteString(f.formatFooter(r))
		w.WriteString("\n")
	}
	return nil
}

func (f *PrettyFormatter) formatHeader(r *Result) string {
	lines := []string{TitleStyle.Render(r.Title)}

	var parts []string
	for _, m := range r.Meta {
		if m.Value == "" {
			continue
		}
		parts = append(parts, LabelStyle.Render(m.Label+":")+" "+ValueStyle.Render(m.Value))
	}
	if len(parts) > 0 {
		lines = append(lines, strings.Join(parts, "  "))
	}

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatTable(r *Result) string {
	if len(r.Rows) == 0 {
		return MutedStyle.Render("  "+r.Empty) + "\n"
	}

	limit := f.MaxRows
	if limit <= 0 {
		limit = MaxPrettyRows
	}
	rows := r.Rows
	hidden := 0
	if len(rows) > limit {
		hidden = len(rows) - limit
		rows = rows[:limit]
	}

	cols := visibleColumns(r.Columns, rows)
	widths := make([]int, len(r.Columns))
	for _, c := range cols {
		widths[c] = lipgloss.Width(r.Columns[c])
		for _, row := range rows {
			if c < len(row.Cells) {
				widths[c] = max(widths[c], lipgloss.Width(row.Cells[c]))
			}
		}
	}

	var sb strings.Builder
	headers := make([]string, 0, len(cols))
	for _, c := range cols {
		headers = append(headers, TableHeaderStyle.Render(padRight(r.Columns[c], widths[c])))
	}
	sb.WriteString("  " + strings.TrimRight(strings.Join(headers, "  "), " ") + "\n")

	for _, row := range rows {
		style := ToneStyle(row.Tone)
		cells := make([]string, 0, len(cols))
		for i, c := range cols {
			cell := ""
			if c < len(row.Cells) {
				cell = row.Cells[c]
			}
			if i < len(cols)-1 {
				cell = padRight(cell, widths[c])
			}
			if i == 0 {
				cells = append(cells, style.Render(cell))
			} else {
				cells = append(cells, cellStyle(r.Columns[c], row.Tone).Render(cell))
			}
		}
		sb.WriteString("  " + strings.Join(cells, "  ") + "\n")
	}

	if hidden > 0 {
		sb.WriteString(MutedStyle.Render(fmt.Sprintf("  ... and %d more", hidden)) + "\n")
	}
	return sb.String()
}

func (f *PrettyFormatter) formatFooter(r *Result) string {
	parts := make([]string, 0, len(r.Counts)+1)
	for _, c := range r.Counts {
		value := ValueStyle.Render(c.Value)
		if c.Label == "failed" && c.Value != "0" {
			value = ErrorStyle.Bold(true).Render(c.Value)
		}
		parts = append(parts, LabelStyle.Render(c.Label+":")+" "+value)
	}
	if r.Kind == KindSummary && len(r.Rows) > 0 {
		parts = append(parts, MutedStyle.Render("Use -o plain for unformatted output"))
	}
	return FooterBox.Render(strings.Join(parts, "  "))
}

// cellStyle colours error cells red and leaves the rest plain, so that
// only the leading column carries the row tone.
func cellStyle(column string, tone Tone) lipgloss.Style {
	if column == "ERROR" {
		return ErrorStyle
	}
	if tone == ToneDir && column == "NAME" {
		return DirStyle
	}
	return ValueStyle
}

// visibleColumns returns the indexes of columns with at least one
// non-empty cell. The first column is always visible.
func visibleColumns(columns []string, rows []Row) []int {
	var out []int
	for c := range columns {
		if c == 0 {
			out = append(out, c)
			continue
		}
		for _, row := range rows {
			if c < len(row.Cells) && row.Cells[c] != "" {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func padRight(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
