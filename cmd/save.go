package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/INTARYNX/sqlwayfarer-sub001/internal/credstore"
)

var saveFlags struct {
	server           string
	port             string
	database         string
	username         string
	driver           string
	encrypt          bool
	trust            bool
	connectionString string
	noPassword       bool
}

var saveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a named connection profile",
	Long: `Save stores a connection profile under a name. The password is read
interactively and kept in the secret store, isolated from the profile
itself; it is never written into the profile registry.`,
	Example: `  # SQL Server with credentials (password prompted)
  sqlwayfarer save staging --server db.example.com --port 1433 --database app --username reader

  # Integrated authentication, no password
  sqlwayfarer save local --server localhost --no-password

  # Raw connection string
  sqlwayfarer save legacy --connection-string "Server=old-db;Database=app;Integrated Security=true"`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVar(&saveFlags.server, "server", "", "Server host")
	saveCmd.Flags().StringVar(&saveFlags.port, "port", "", "Server port")
	saveCmd.Flags().StringVar(&saveFlags.database, "database", "", "Database name")
	saveCmd.Flags().StringVar(&saveFlags.username, "username", "", "Login username")
	saveCmd.Flags().StringVar(&saveFlags.driver, "driver", "", "Driver: sqlserver (default) or postgres")
	saveCmd.Flags().BoolVar(&saveFlags.encrypt, "encrypt", false, "Encrypt the connection")
	saveCmd.Flags().BoolVar(&saveFlags.trust, "trust-server-certificate", false, "Trust the server certificate")
	saveCmd.Flags().StringVar(&saveFlags.connectionString, "connection-string", "", "Raw connection string (overrides the field flags)")
	saveCmd.Flags().BoolVar(&saveFlags.noPassword, "no-password", false, "Skip the password prompt (integrated authentication)")

	rootCmd.AddCommand(saveCmd)
}

func runSave(c *cobra.Command, args []string) error {
	ctx := c.Context()

	store, err := newStore(ctx)
	if err != nil {
		return err
	}

	profile := credstore.Profile{
		Name:     args[0],
		Server:   saveFlags.server,
		Port:     saveFlags.port,
		Database: saveFlags.database,
		Username: saveFlags.username,
		Driver:   saveFlags.driver,
	}
	if c.Flags().Changed("encrypt") {
		profile.Encrypt = &saveFlags.encrypt
	}
	if c.Flags().Changed("trust-server-certificate") {
		profile.TrustServerCertificate = &saveFlags.trust
	}
	if saveFlags.connectionString != "" {
		profile.UseConnectionString = true
		profile.ConnectionString = saveFlags.connectionString
	}

	if !saveFlags.noPassword && !profile.UseConnectionString {
		password, err := promptPassword()
		if err != nil {
			return err
		}
		profile.Password = password
	}

	res := store.SaveConnection(ctx, profile)
	if !res.Success {
		fmt.Printf("❌ %s\n", res.Message)
		os.Exit(1)
	}
	fmt.Printf("✅ %s\n", res.Message)
	return nil
}

// promptPassword reads the password without echo. An empty entry is
// allowed and means integrated authentication or a stored secret kept
// from an earlier save.
func promptPassword() (string, error) {
	fmt.Print("Password (empty to skip): ")
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(data), nil
}
