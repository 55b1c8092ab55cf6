package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var testCmd = &cobra.Command{
	Use:   "test [name]",
	Short: "Test a saved connection without keeping it open",
	Long: `Test opens an ephemeral connection for the selected profile and closes
it immediately. It never touches an established connection.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		ctx := c.Context()
		store, err := newStore(ctx)
		if err != nil {
			return err
		}

		profile, err := selectProfile(store, args, false)
		if err != nil {
			return err
		}

		sess := newSession(store)
		res := sess.TestConnection(ctx, profile)
		if !res.Success {
			fmt.Printf("❌ %s\n", res.Message)
			os.Exit(1)
		}
		fmt.Printf("✅ %s\n", res.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(testCmd)
}
