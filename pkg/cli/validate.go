package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/specdocs/pkg/cli/internal/output"
	"github.com/getmockd/specdocs/pkg/logging"
	"github.com/getmockd/specdocs/pkg/validation"
)

func newValidateCommand(o *options) *cobra.Command {
	var skipMocks bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the OpenAPI document and its mock responses",
		Long: `Validate the OpenAPI document against the OpenAPI 3 specification and
check that every 2xx mock response satisfies its schema.

Exits 1 when the document is invalid or a mock does not conform.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, o)
			if err != nil {
				return err
			}

			v := validation.New(a.svc)
			v.SetLogger(logging.Component(a.log, "validate"))
			report, err := v.Validate(cmd.Context())
			if err != nil {
				return err
			}
			if skipMocks {
				report.Mocks = nil
			}

			out := cmd.OutOrStdout()
			if o.jsonOutput {
				if err := output.JSON(out, report); err != nil {
					return err
				}
			} else {
				printReport(cmd, report)
			}

			if !report.Valid || report.MockFailures() > 0 {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipMocks, "skip-mocks", false, "Do not check mock responses")
	return cmd
}

func printReport(cmd *cobra.Command, r *validation.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s: OpenAPI %s, %q %s, %d operations\n", r.Location, r.OpenAPI, r.Title, r.Version, r.Operations)
	if r.Valid {
		fmt.Fprintln(out, "✓ document is valid")
	} else {
		fmt.Fprintf(out, "✗ document has %d error(s):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(out, "  - %s\n", e)
		}
	}

	if len(r.Mocks) == 0 {
		return
	}
	checked, skipped := 0, 0
	for _, m := range r.Mocks {
		if m.Skipped {
			skipped++
			continue
		}
		checked++
		if m.Error != "" {
			fmt.Fprintf(out, "✗ mock %s %s %d: %s\n", m.Method, m.Path, m.Status, m.Error)
		}
	}
	fmt.Fprintf(out, "mocks: %d checked, %d failed, %d skipped (no JSON schema)\n", checked, r.MockFailures(), skipped)
}
