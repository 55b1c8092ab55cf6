package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved connection profile and its stored password",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		ctx := c.Context()
		store, err := newStore(ctx)
		if err != nil {
			return err
		}

		res := store.DeleteConnection(ctx, args[0])
		if !res.Success {
			fmt.Printf("❌ %s\n", res.Message)
			os.Exit(1)
		}
		fmt.Printf("✅ %s\n", res.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
