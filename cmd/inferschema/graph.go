package main

import (
	"fmt"

	"github.com/aretw0/inferschema/internal/presentation/graph"
	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [record]",
	Short: "Export the record reference graph",
	Long: `Outputs a Mermaid diagram (graph TD) of records and the fields that embed
other records. With a record name only that record and its dependencies are drawn.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.close()

		overlay := &graph.Overlay{Builtin: e.catalog.IsBuiltin}
		var records []*schema.Record
		if len(args) == 1 {
			r, err := e.catalog.Record(ctx, args[0])
			if err != nil {
				return err
			}
			records = append(schema.Dependencies(r), r)
			overlay.Focus = r.Name()
		} else {
			names, err := e.catalog.Records(ctx)
			if err != nil {
				return err
			}
			for _, name := range names {
				r, err := e.catalog.Record(ctx, name)
				if err != nil {
					return err
				}
				records = append(records, r)
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(records, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
