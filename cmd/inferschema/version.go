package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/inferschema"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of inferschema",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "inferschema version %s\n", strings.TrimSpace(inferschema.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
