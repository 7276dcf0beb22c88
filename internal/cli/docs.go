package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/smartcommits/internal/docs"
	"github.com/dshills/smartcommits/internal/secerr"
	"github.com/dshills/smartcommits/internal/secexec"
	"github.com/dshills/smartcommits/internal/validate"
	"github.com/spf13/cobra"
)

var (
	flagDocsIn     string
	flagDocsFormat string
	flagDocsOut    string
	flagDocsTitle  string
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Render Markdown documentation to HTML, PDF or DOCX",
	Long: "Render a Markdown file to a standalone HTML page. PDF and DOCX are " +
		"produced by pandoc, which must be installed.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch flagDocsFormat {
		case docs.FormatHTML, docs.FormatPDF, docs.FormatDOCX:
		default:
			return fmt.Errorf("unsupported format %q (html, pdf, docx)", flagDocsFormat)
		}

		wd, err := os.Getwd()
		if err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}
		in, err := validate.FilePath(wd, flagDocsIn)
		if err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}
		outName := flagDocsOut
		if outName == "" {
			outName = strings.TrimSuffix(flagDocsIn, filepath.Ext(flagDocsIn)) + "." + flagDocsFormat
		}
		out, err := validate.FilePath(wd, outName)
		if err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}

		if flagDocsFormat == docs.FormatHTML {
			src, err := os.ReadFile(in.String())
			if err != nil {
				fail(cmd.ErrOrStderr(), secerr.Wrap(secerr.CategoryIO, "cannot read documentation source", err))
				return nil
			}
			page, err := docs.RenderHTML(src, flagDocsTitle)
			if err != nil {
				fail(cmd.ErrOrStderr(), err)
				return nil
			}
			if err := secexec.WriteFile(out.String(), page, 0o644); err != nil {
				fail(cmd.ErrOrStderr(), err)
				return nil
			}
		} else if err := docs.Pandoc(cmd.Context(), &secexec.Runner{}, in.String(), out.String(), flagDocsFormat); err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
		return nil
	},
}

func init() {
	docsCmd.Flags().StringVar(&flagDocsIn, "in", "DOCUMENTATION.md", "Markdown source file")
	docsCmd.Flags().StringVar(&flagDocsFormat, "format", docs.FormatHTML, "Output format (html, pdf, docx)")
	docsCmd.Flags().StringVar(&flagDocsOut, "out", "", "Output file (default: source name with the format's extension)")
	docsCmd.Flags().StringVar(&flagDocsTitle, "title", "", "Page title (default: first heading)")
}
