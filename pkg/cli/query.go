package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/specdocs/pkg/cli/internal/output"
	"github.com/getmockd/specdocs/pkg/endpoint"
	"github.com/getmockd/specdocs/pkg/query"
)

func newEndpointsCommand(o *options) *cobra.Command {
	var filter endpoint.Filter

	cmd := &cobra.Command{
		Use:     "endpoints",
		Aliases: []string{"ls"},
		Short:   "List the operations in the document",
		Example: `  specdocs endpoints
  specdocs endpoints --tag users
  specdocs endpoints --path '/api/users/**' --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, o)
			if err != nil {
				return err
			}
			list, err := a.svc.Endpoints(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if o.jsonOutput {
				return output.JSON(out, list)
			}
			if list.Total == 0 {
				fmt.Fprintln(out, "No endpoints found")
				return nil
			}
			tw := output.Table(out)
			fmt.Fprintln(tw, "METHOD\tPATH\tOPERATION\tSUMMARY\tTAGS")
			for _, e := range list.Endpoints {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					e.Method, e.Path, deref(e.OperationID), deref(e.Summary), strings.Join(e.Tags, ","))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&filter.Tag, "tag", "", "Only list operations with this tag")
	cmd.Flags().StringVar(&filter.PathGlob, "path", "", "Only list paths matching this glob")
	return cmd
}

func newSchemaCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [section]",
		Short: "Print the document or one top-level section of it",
		Example: `  specdocs schema
  specdocs schema components`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, o)
			if err != nil {
				return err
			}
			section := ""
			if len(args) == 1 {
				section = args[0]
			}
			v, err := a.svc.Schema(cmd.Context(), section)
			if err != nil {
				return err
			}
			return output.JSON(cmd.OutOrStdout(), v)
		},
	}
}

func newMockCommand(o *options) *cobra.Command {
	var status int

	cmd := &cobra.Command{
		Use:   "mock <path> <method>",
		Short: "Print a mock response body for an operation",
		Long: `Print a mock response body synthesized from the operation's
application/json response schema. With --json the whole result is printed,
including the path, method and requested status code.`,
		Example: `  specdocs mock /users/{id} get
  specdocs mock /users post --status 201`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, o)
			if err != nil {
				return err
			}
			res, err := a.svc.Mock(cmd.Context(), args[0], args[1], status)
			if err != nil {
				return err
			}
			if o.jsonOutput {
				return output.JSON(cmd.OutOrStdout(), res)
			}
			return output.JSON(cmd.OutOrStdout(), res.MockResponse)
		},
	}

	cmd.Flags().IntVar(&status, "status", query.DefaultStatusCode, "Response status code")
	return cmd
}

func newQueryCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "query <jsonpath>",
		Short: "Evaluate a JSONPath expression against the document",
		Example: `  specdocs query '$.info.title'
  specdocs query '$.paths.*.get.operationId'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, o)
			if err != nil {
				return err
			}
			res, err := a.svc.Query(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if o.jsonOutput {
				return output.JSON(cmd.OutOrStdout(), res)
			}
			return output.JSON(cmd.OutOrStdout(), res.Matches)
		},
	}
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
