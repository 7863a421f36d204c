package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blogem/contacts/config"
	"github.com/blogem/contacts/logging"
)

var (
	Version = "dev"
	Commit  = "none"
)

var configPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "contacts",
	Version: Version,
	Short:   "A contact directory with an audit trail",
	Long: `Contacts keeps a directory of people and where they are located.
Every change to the directory is recorded in an append-only audit log.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
}

// loadConfig loads and validates configuration and builds the logger from it
func loadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	applyFlags(cmd, cfg)

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}

	if err := cfg.Validate(log); err != nil {
		_ = log.Sync()
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, log, nil
}
