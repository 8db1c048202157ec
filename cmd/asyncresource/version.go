package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/asyncresource"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of asyncresource",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "asyncresource version %s\n", strings.TrimSpace(asyncresource.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
