package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tunemart/server"
)

var rootCmd = &cobra.Command{
	Use:   "tunemart",
	Short: "TuneMart is a marketplace for digital music.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
