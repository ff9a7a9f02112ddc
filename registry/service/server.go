package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/lightningnetwork/lnd/kvdb"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/commitd-io/commitd/metrics"
	"github.com/commitd-io/commitd/registry"
	"github.com/commitd-io/commitd/registry/config"
)

const sweepRetryAttempts = 3

// Server is the main daemon construct for the commitment registry. It
// handles spinning up the metrics server, the expiry sweeper, the database,
// and any other components the registry daemon needs to function.
type Server struct {
	started int32

	cfg    *config.Config
	logger *zap.Logger

	registry *registry.LocalRegistry
	db       kvdb.Backend
}

// NewCommitdServer creates a new server with the given config.
func NewCommitdServer(cfg *config.Config, l *zap.Logger, reg *registry.LocalRegistry, db kvdb.Backend) *Server {
	return &Server{
		cfg:      cfg,
		logger:   l,
		registry: reg,
		db:       db,
	}
}

// RunUntilShutdown runs the main registry server loop until a signal is
// received to shut down the process.
func (s *Server) RunUntilShutdown(ctx context.Context) error {
	if atomic.AddInt32(&s.started, 1) != 1 {
		return nil
	}

	// Start the metrics server.
	promAddr, err := s.cfg.Metrics.Address()
	if err != nil {
		return fmt.Errorf("failed to get prometheus address: %w", err)
	}
	metricsServer := metrics.Start(promAddr, s.logger)

	defer func() {
		s.logger.Info("Shutdown complete")
	}()

	defer func() {
		if err := s.registry.Close(); err != nil {
			s.logger.Error(fmt.Sprintf("Failed to close registry: %v", err))
		}
		s.logger.Info("Closing database...")
		if err := s.db.Close(); err != nil {
			s.logger.Error(fmt.Sprintf("Failed to close database: %v", err))
		} else {
			s.logger.Info("Database closed")
		}
		metricsServer.Stop(ctx)
		s.logger.Info("Metrics server stopped")
	}()

	eg, egCtx := errgroup.WithContext(ctx)

	if s.cfg.CommitmentTTL > 0 {
		eg.Go(func() error {
			return s.sweepLoop(egCtx)
		})
	}
	eg.Go(func() error {
		<-egCtx.Done()

		return nil
	})

	s.logger.Info("Commitment registry daemon is fully active!")

	return eg.Wait()
}

// sweepLoop periodically removes expired commitments, retrying transient
// store faults before giving up on a sweep
func (s *Server) sweepLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := retry.Do(func() error {
				_, err := s.registry.PruneExpired()

				return err
			}, retry.Context(ctx), retry.Attempts(sweepRetryAttempts), retry.LastErrorOnly(true))
			if err != nil {
				s.logger.Error("failed to sweep expired commitments", zap.Error(err))
			}
		case <-ctx.Done():
			return nil
		}
	}
}
