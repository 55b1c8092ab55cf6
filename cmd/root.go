package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/INTARYNX/sqlwayfarer-sub001/internal/config"
	"github.com/INTARYNX/sqlwayfarer-sub001/internal/credstore"
	"github.com/INTARYNX/sqlwayfarer-sub001/internal/logger"
	"github.com/INTARYNX/sqlwayfarer-sub001/internal/session"
	"github.com/INTARYNX/sqlwayfarer-sub001/internal/sqldriver"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:     "sqlwayfarer",
	Short:   "Manage saved database connection profiles and browse schemas",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		return logger.Init(cfg.Log.File, cfg.Log.Level)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("sqlwayfarer version %s (commit: %s, built: %s)\n", Version, Commit, Date))

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// newStore builds and initializes the credential store from config:
// the registry always lives on the file medium, secrets on the file or
// AWS Secrets Manager medium per store.secret_backend.
func newStore(ctx context.Context) (*credstore.Store, error) {
	registry := credstore.NewFileMedium(cfg.Store.Dir)

	var secrets credstore.Medium = registry
	if cfg.Store.SecretBackend == "aws" {
		aws, err := credstore.NewAWSSecretsMedium(ctx, cfg.Store.AWSRegion, cfg.Store.AWSPrefix)
		if err != nil {
			return nil, fmt.Errorf("secret backend: %w", err)
		}
		secrets = aws
	}

	store := credstore.New(registry, secrets, cfg.Store.Namespace)
	if err := store.Initialize(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// newSession builds a session over the production driver, with the store
// injected for stored-password lookup.
func newSession(store *credstore.Store) *session.Session {
	driver := sqldriver.New(sqldriver.Options{
		DriverName:  cfg.Driver.Default,
		PingTimeout: cfg.Driver.ConnectTimeout,
	})
	return session.New(driver, store)
}
