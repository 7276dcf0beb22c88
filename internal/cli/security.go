package cli

import (
	"fmt"
	"strings"

	"github.com/dshills/smartcommits/internal/output"
	"github.com/dshills/smartcommits/internal/selftest"
	"github.com/spf13/cobra"
)

var (
	flagSecFormat string
	flagSecOut    string
	flagSecChecks []string
)

var securityTestCmd = &cobra.Command{
	Use:   "security-test",
	Short: "Run the built-in security self-test",
	Long: "Run the security self-test against scratch repositories. Exits 1 when " +
		"any check finds a vulnerability.\n\nChecks: " + strings.Join(selftest.CheckNames(), ", "),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		writer, err := output.GetWriter(flagSecFormat)
		if err != nil {
			return err
		}

		report := selftest.Run(cmd.Context(), selftest.Options{
			Version: version,
			Checks:  flagSecChecks,
		})

		if flagSecOut != "" {
			err = output.WriteReport(report, flagSecFormat, flagSecOut)
		} else {
			err = writer.Write(cmd.OutOrStdout(), report)
		}
		if err != nil {
			fail(cmd.ErrOrStderr(), fmt.Errorf("writing report: %w", err))
			return nil
		}

		if report.Failed() {
			exitCode = ExitFailure
		}
		return nil
	},
}

func init() {
	securityTestCmd.Flags().StringVar(&flagSecFormat, "format", "text",
		"Output format ("+strings.Join(output.Formats, ", ")+")")
	securityTestCmd.Flags().StringVar(&flagSecOut, "out", "", "Output file path (default: stdout)")
	securityTestCmd.Flags().StringSliceVar(&flagSecChecks, "check", nil, "Run only the named checks")
}
