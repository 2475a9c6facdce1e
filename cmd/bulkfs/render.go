package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/output"
)

// formatFor picks the output format for w: the -o flag, then the configured
// default, with pretty downgraded to plain when w is not a terminal.
func formatFor(w io.Writer) string {
	format := outputFormat
	if format == "" && templateStr != "" {
		format = "template"
	}
	if format == "" && appCfg != nil {
		format = appCfg.Output
	}

	if f, ok := w.(*os.File); ok {
		return output.ResolveFormat(format, f)
	}
	if format == "" || format == "pretty" {
		return "plain"
	}
	return format
}

// render writes r to the command's output in the selected format.
func render(cmd *cobra.Command, r *output.Result) error {
	w := cmd.OutOrStdout()
	format := formatFor(w)

	var data []byte
	if format == "template" && templateStr != "" {
		var buf bytes.Buffer
		if err := output.NewTemplateFormatter(templateStr).Format(&buf, r); err != nil {
			return fmt.Errorf("failed to render template: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = output.Render(format, r)
		if err != nil {
			return fmt.Errorf("%w (available: %s)", err, strings.Join(output.Available(), ", "))
		}
	}

	_, err := w.Write(data)
	return err
}
