package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blogem/contacts/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		db, err := database.InitializeDatabase(cmd.Context(), cfg.DatabasePath, log)
		if err != nil {
			return err
		}
		defer db.Close()

		version, err := database.SchemaVersion(cmd.Context(), db, log)
		if err != nil {
			return err
		}

		log.Info("database is up to date", zap.String("path", cfg.DatabasePath), zap.Int64("version", version))
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "contacts %s (%s)\n", Version, Commit)
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
	RootCmd.AddCommand(versionCmd)
}
