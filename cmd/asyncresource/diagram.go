package main

import (
	"fmt"

	"github.com/aretw0/asyncresource/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var diagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Print the resource lifecycle as a Mermaid state diagram",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(nil))
	},
}

func init() {
	rootCmd.AddCommand(diagramCmd)
}
