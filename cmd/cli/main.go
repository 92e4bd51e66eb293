package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{
		Use:          "docqa",
		Short:        "Ask questions about your PDFs from the terminal",
		SilenceUsage: true,
	}

	root.AddCommand(ingestCMD(), askCMD(), chatCMD(), watchCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
