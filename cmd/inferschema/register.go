package main

import (
	"github.com/aretw0/inferschema/internal/cli"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <definition-file>",
	Short: "Register record definitions in the configured store",
	Long: `Reads one definition or a list of definitions (JSON or YAML) and registers
them in order, so later definitions may reference earlier ones.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.close()

		defs, err := cli.ReadDefinitions(args[0])
		if err != nil {
			return err
		}
		if err := cli.RegisterAll(ctx, e.catalog, defs); err != nil {
			return err
		}
		for _, def := range defs {
			cli.PrintResult(cmd.OutOrStdout(), true, "registered %s", def.Name)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <record>",
	Short: "Remove a registered record from the configured store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.catalog.Delete(ctx, args[0]); err != nil {
			return err
		}
		cli.PrintResult(cmd.OutOrStdout(), true, "deleted %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(deleteCmd)
}
