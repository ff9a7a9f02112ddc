package daemon

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/commitd-io/commitd/auth"
	"github.com/commitd-io/commitd/log"
	"github.com/commitd-io/commitd/registry"
	"github.com/commitd-io/commitd/registry/config"
	"github.com/commitd-io/commitd/registry/service"
	"github.com/commitd-io/commitd/version"
)

func NewStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the commitment registry daemon",
		Long:  "Start the commitment registry daemon and run it until shutdown.",
		RunE:  startFn,
	}

	return cmd
}

func startFn(cmd *cobra.Command, _ []string) error {
	homePath, err := getHomePath(cmd)
	if err != nil {
		return fmt.Errorf("failed to load home flag: %w", err)
	}

	cfg, err := config.LoadConfig(homePath)
	if err != nil {
		return fmt.Errorf("failed to load config at %s: %w", homePath, err)
	}

	logger, err := log.NewRootLoggerWithFile(config.LogFile(homePath), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to load the logger: %w", err)
	}
	logger.Info("Starting commitd", zap.String("version", version.Full()))

	dbBackend, err := cfg.DatabaseConfig.GetDBBackend()
	if err != nil {
		return fmt.Errorf("failed to create db backend: %w", err)
	}

	authorizer := auth.NewAuthorizer(cfg.StrictProofs, auth.NewDelegatedVerifier(), logger)

	reg, err := registry.NewLocalRegistry(dbBackend, authorizer, cfg.CommitmentTTL, logger)
	if err != nil {
		return fmt.Errorf("failed to create commitment registry: %w", err)
	}

	server := service.NewCommitdServer(cfg, logger, reg, dbBackend)

	return server.RunUntilShutdown(cmd.Context())
}
