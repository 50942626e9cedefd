package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tunemart/config"
	"tunemart/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the marketplace tables and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		conn, err := db.Connect(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := db.InitSchema(conn); err != nil {
			return err
		}
		fmt.Println("schema up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
