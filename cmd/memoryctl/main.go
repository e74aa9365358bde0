package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{
		Use:           "memoryctl",
		Short:         "Operate the project memory pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(reindexCMD(), profileCMD(), migrateCMD())
	if err := root.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
