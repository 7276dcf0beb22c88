package output

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dshills/smartcommits/internal/secexec"
	"github.com/dshills/smartcommits/internal/selftest"
	"github.com/fatih/color"
)

// Formats lists the accepted format names.
var Formats = []string{"text", "json", "markdown", "sarif"}

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *selftest.Report) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text", "":
		return &TextWriter{Color: !color.NoColor}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	case "sarif":
		return &SARIFWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to outPath, or to stdout when outPath is
// empty. Files are written atomically with owner-only permissions.
func WriteReport(report *selftest.Report, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}
	if outPath == "" {
		return writer.Write(os.Stdout, report)
	}
	if tw, ok := writer.(*TextWriter); ok {
		tw.Color = false
	}

	var buf bytes.Buffer
	if err := writer.Write(&buf, report); err != nil {
		return err
	}
	if err := secexec.WriteFile(outPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
