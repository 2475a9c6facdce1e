package output

import (
	"bytes"
	"encoding/csv"
	"strings"
)

// TSVFormatter writes the table as tab-separated values. Tabs and newlines
// inside cells are replaced by spaces.
type TSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *TSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(strings.Join(r.Columns, "\t"))
	w.WriteString("\n")
	for _, row := range r.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = tsvEscaper.Replace(c)
		}
		w.WriteString(strings.Join(cells, "\t"))
		w.WriteString("\n")
	}
	return nil
}

var tsvEscaper = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// CSVFormatter writes RFC 4180 comma-separated values.
type CSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *CSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(r.Columns); err != nil {
		return err
	}
	for _, row := range r.Rows {
		if err := writer.Write(row.Cells); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// MarkdownFormatter writes a GitHub-flavored Markdown table under a
// heading, followed by the counts.
type MarkdownFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *MarkdownFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString("### " + escapeMarkdownPipe(r.Title) + "\n\n")

	if r.Error != "" {
		w.WriteString("**Error:** " + escapeMarkdownPipe(r.Error) + "\n")
		return nil
	}

	w.WriteString("| " + strings.Join(r.Columns, " | ") + " |\n")
	seps := make([]string, len(r.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	w.WriteString("|" + strings.Join(seps, "|") + "|\n")

	for _, row := range r.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = escapeMarkdownPipe(c)
		}
		w.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	if len(r.Counts) > 0 {
		parts := make([]string, 0, len(r.Counts))
		for _, c := range r.Counts {
			parts = append(parts, "**"+c.Label+":** "+c.Value)
		}
		w.WriteString("\n" + strings.Join(parts, " · ") + "\n")
	}
	return nil
}

func escapeMarkdownPipe(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func init() {
	Register("tsv", func() Formatter {
		return &TSVFormatter{}
	})
	Register("csv", func() Formatter {
		return &CSVFormatter{}
	})
	Register("markdown", func() Formatter {
		return &MarkdownFormatter{}
	})
}

var (
	_ Formatter = (*TSVFormatter)(nil)
	_ Formatter = (*CSVFormatter)(nil)
	_ Formatter = (*MarkdownFormatter)(nil)
)
