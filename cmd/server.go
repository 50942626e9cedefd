package cmd

import (
	"github.com/spf13/cobra"

	"tunemart/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the marketplace HTTP server",
	Long:  `Start the TuneMart HTTP server, serving the catalog, review, and account APIs.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
