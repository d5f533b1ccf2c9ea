package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/inferschema"
	"github.com/aretw0/inferschema/internal/cli"
	"github.com/aretw0/inferschema/pkg/openapi"
	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [record...]",
	Short: "Export records as an OpenAPI document",
	Long: `Writes an OpenAPI 3 document whose components hold the given records and
every record they reference. Without arguments all records are exported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.close()

		names := args
		if len(names) == 0 {
			if names, err = e.catalog.Records(ctx); err != nil {
				return err
			}
		}
		records := make([]*schema.Record, 0, len(names))
		for _, name := range names {
			r, err := e.catalog.Record(ctx, name)
			if err != nil {
				return err
			}
			records = append(records, r)
		}

		title, _ := cmd.Flags().GetString("title")
		doc := openapi.Document(title, strings.TrimSpace(inferschema.Version), records...)
		if err := doc.Validate(ctx); err != nil {
			return fmt.Errorf("invalid document: %w", err)
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		data, err := cli.WriteData(doc, asJSON)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var importCmd = &cobra.Command{
	Use:   "import <openapi-file>",
	Short: "Read record definitions from OpenAPI component schemas",
	Long: `Converts the component schemas of an OpenAPI 3 document (JSON or YAML) into
record definitions. With --register they are stored; otherwise they are printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		defs, err := openapi.FromDocument(data)
		if err != nil {
			return err
		}

		register, _ := cmd.Flags().GetBool("register")
		if !register {
			out, err := cli.WriteData(defs, false)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}

		ctx := cmd.Context()
		e, err := setup(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.close()

		if err := cli.RegisterAll(ctx, e.catalog, defs); err != nil {
			return err
		}
		for _, def := range defs {
			cli.PrintResult(cmd.OutOrStdout(), true, "registered %s", def.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	exportCmd.Flags().Bool("json", false, "Write JSON instead of YAML")
	exportCmd.Flags().String("title", "inferschema records", "Document title")
	importCmd.Flags().Bool("register", false, "Register the definitions instead of printing them")
}
