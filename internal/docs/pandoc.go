package docs

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/smartcommits/internal/secerr"
	"github.com/dshills/smartcommits/internal/secexec"
)

// Formats produced through pandoc.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
	FormatHTML = "html"
)

const pandocTimeout = 2 * time.Minute

// Runner runs external commands.
type Runner interface {
	Run(ctx context.Context, argv []string, opts ...secexec.Option) (secexec.Result, error)
}

// PandocArgs returns the pandoc argument vector converting in to out.
func PandocArgs(in, out, format string) ([]string, error) {
	argv := []string{"pandoc", in, "-o", out, "--standalone", "--toc", "--toc-depth=3"}
	switch format {
	case FormatPDF:
		argv = append(argv, "--pdf-engine=weasyprint")
	case FormatDOCX:
	default:
		return nil, secerr.New(secerr.CategoryInvalidInput, fmt.Sprintf("unsupported document format %q", format))
	}
	return argv, nil
}

// Pandoc converts the Markdown file in to out in the given format.
func Pandoc(ctx context.Context, runner Runner, in, out, format string) error {
	argv, err := PandocArgs(in, out, format)
	if err != nil {
		return err
	}
	if _, err := runner.Run(ctx, argv, secexec.WithTimeout(pandocTimeout)); err != nil {
		return fmt.Errorf("pandoc %s: %w", format, err)
	}
	return nil
}
