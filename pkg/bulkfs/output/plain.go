package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
)

// PlainFormatter writes an aligned, uncoloured table followed by a counts
// line. It is the default when stdout is not a terminal.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	if r.Error != "" {
		fmt.Fprintf(w, "error: %s\n", r.Error)
		return nil
	}

	if len(r.Rows) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(tw, strings.Join(r.Columns, "\t")); err != nil {
			return err
		}
		for _, row := range r.Rows {
			if _, err := fmt.Fprintln(tw, strings.Join(row.Cells, "\t")); err != nil {
				return err
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(r.Counts) > 0 {
		parts := make([]string, 0, len(r.Counts))
		for _, c := range r.Counts {
			parts = append(parts, c.Label+": "+c.Value)
		}
		fmt.Fprintln(w, strings.Join(parts, "  "))
	}
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
