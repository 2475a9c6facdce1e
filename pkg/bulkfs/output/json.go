package output

import (
	"bytes"
	"encoding/json"
)

// JSONFormatter encodes the underlying result as one indented document.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r.Data)
}

// JSONLFormatter writes one compact JSON object per row, which suits
// streaming into jq or log pipelines. A top-level error is written as a
// single {"error": ...} object.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	if r.Error != "" {
		return encoder.Encode(map[string]string{"error": r.Error})
	}
	for _, item := range r.Items {
		if err := encoder.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

var (
	_ Formatter = (*JSONFormatter)(nil)
	_ Formatter = (*JSONLFormatter)(nil)
)
