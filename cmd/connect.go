package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/INTARYNX/sqlwayfarer-sub001/internal/repl"
)

var connectFlags struct {
	last     bool
	external bool
}

var connectCmd = &cobra.Command{
	Use:   "connect [name]",
	Short: "Connect to a saved profile and run queries",
	Long: `Connect resolves the stored password for the selected profile, opens a
connection, and drops into an interactive query loop. With --external it
hands the terminal to an installed client (sqlcmd, pgcli, or psql)
instead.`,
	Example: `  # Interactive selection
  sqlwayfarer connect

  # Direct connection with a partial name
  sqlwayfarer connect staging

  # Reconnect to the last used profile
  sqlwayfarer connect -l`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().BoolVarP(&connectFlags.last, "last", "l", false, "Connect to the last used profile")
	connectCmd.Flags().BoolVarP(&connectFlags.external, "external", "e", false, "Prefer an external client (sqlcmd/pgcli/psql)")

	connectCmd.ValidArgsFunction = func(c *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		store, err := newStore(c.Context())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		var completions []string
		for _, p := range store.GetSavedConnections() {
			if strings.HasPrefix(p.Name, toComplete) {
				completions = append(completions, fmt.Sprintf("%s\t%s", p.Name, p.Server))
			}
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	}

	rootCmd.AddCommand(connectCmd)
}

func runConnect(c *cobra.Command, args []string) error {
	ctx := c.Context()

	store, err := newStore(ctx)
	if err != nil {
		return err
	}

	profile, err := selectProfile(store, args, connectFlags.last)
	if err != nil {
		return err
	}

	saveLastConnected(profile.Name)
	fmt.Printf("🚀 Target: %s [%s]\n", profile.Name, profile.Server)

	if connectFlags.external && !profile.UseConnectionString {
		password, err := store.GetConnectionPassword(ctx, profile.Name)
		if err != nil {
			return err
		}
		launched, err := repl.LaunchExternal(profile, password)
		if launched || err != nil {
			return err
		}
		fmt.Println("⚠️  No external client found. Using the native query loop...")
	}

	sess := newSession(store)
	defer sess.Dispose(ctx)

	res := sess.Connect(ctx, profile)
	if !res.Success {
		fmt.Printf("❌ %s\n", res.Message)
		os.Exit(1)
	}
	fmt.Printf("✅ %s\n", res.Message)

	prompt := profile.Database
	if prompt == "" {
		prompt = profile.Name
	}
	if err := repl.Run(ctx, sess, prompt); err != nil {
		return err
	}

	if res := sess.Disconnect(ctx); !res.Success {
		fmt.Printf("⚠️  %s\n", res.Message)
	}
	return nil
}
