package main

import (
	"fmt"

	"github.com/aretw0/inferschema/internal/cli"
	"github.com/spf13/cobra"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List the known records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.close()

		names, err := e.catalog.Records(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, name := range names {
			suffix := ""
			if e.catalog.IsBuiltin(name) {
				suffix = " (built-in)"
			}
			fmt.Fprintf(out, "%s%s\n", name, suffix)
		}
		return nil
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <record>",
	Short: "Show a record and the records it references",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.close()

		md, err := e.catalog.Describe(ctx, args[0])
		if err != nil {
			return err
		}
		raw, _ := cmd.Flags().GetBool("raw")
		out := cmd.OutOrStdout()
		if raw {
			fmt.Fprint(out, md)
			return nil
		}
		rendered, err := cli.Render(out, md)
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print Markdown without terminal styling")
}
