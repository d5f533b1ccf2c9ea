package main

import (
	"errors"

	"github.com/aretw0/inferschema/internal/cli"
	"github.com/spf13/cobra"
)

var errInvalid = errors.New("payload is invalid")

var validateCmd = &cobra.Command{
	Use:   "validate <record> <file>",
	Short: "Check a JSON or YAML payload against a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := decodeArgs(cmd, args)
		if err != nil {
			return err
		}
		cli.PrintResult(cmd.OutOrStdout(), true, "%s is a valid %s", args[1], args[0])
		return nil
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <record> <file>",
	Short: "Print the canonical wire form of a payload",
	Long: `Decodes the payload and prints it back with whole numbers in float fields
widened, undeclared keys handled by the unknown-field policy and keys sorted.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		wire, err := decodeArgs(cmd, args)
		if err != nil {
			return err
		}
		asYAML, _ := cmd.Flags().GetBool("yaml")
		data, err := cli.WriteData(wire, !asYAML)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func decodeArgs(cmd *cobra.Command, args []string) (map[string]any, error) {
	ctx := cmd.Context()
	e, err := setup(ctx, cmd)
	if err != nil {
		return nil, err
	}
	defer e.close()

	opts, err := decodeOptions(cmd)
	if err != nil {
		return nil, err
	}
	obj, err := cli.DecodeFile(ctx, e.catalog, args[0], args[1], opts...)
	if err != nil {
		out := cmd.ErrOrStderr()
		cli.PrintResult(out, false, "%s is not a valid %s", args[1], args[0])
		if cli.PrintViolations(out, err) {
			return nil, errInvalid
		}
		return nil, err
	}
	return obj.ToWire(), nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(normalizeCmd)
	addDecodeFlags(validateCmd)
	addDecodeFlags(normalizeCmd)
	normalizeCmd.Flags().Bool("yaml", false, "Print YAML instead of JSON")
}
