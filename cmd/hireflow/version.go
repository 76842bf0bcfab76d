package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is injected at build time via -ldflags.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hireflow version %s\n", version)
	},
}
