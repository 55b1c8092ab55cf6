package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved connection profiles",
	RunE: func(c *cobra.Command, args []string) error {
		store, err := newStore(c.Context())
		if err != nil {
			return err
		}

		connections := store.GetSavedConnections()
		if len(connections) == 0 {
			fmt.Println("No saved connections.")
			return nil
		}

		fmt.Printf("%-24s | %-30s | %-20s | %s\n", "NAME", "SERVER", "DATABASE", "DRIVER")
		for _, p := range connections {
			server := p.Server
			if p.Port != "" {
				server += "," + p.Port
			}
			driver := p.Driver
			if driver == "" {
				driver = "sqlserver"
			}
			if p.UseConnectionString {
				server = "(connection string)"
			}
			fmt.Printf("%-24s | %-30s | %-20s | %s\n", p.Name, server, p.Database, driver)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
