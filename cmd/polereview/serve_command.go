package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"polereview/internal/api"
	"polereview/internal/imagecache"
	"polereview/internal/logging"
	"polereview/internal/session"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the review service with the HTTP API and image cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			lockPath := filepath.Join(cfg.Paths.LogDir, "polereview.lock")
			lock := flock.New(lockPath)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another polereview serve instance holds %s", lockPath)
			}
			defer func() { _ = lock.Unlock() }()

			pidPath := filepath.Join(cfg.Paths.LogDir, "polereview.pid")
			if err := writePIDFile(pidPath); err != nil {
				return fmt.Errorf("write pid file: %w", err)
			}
			defer os.Remove(pidPath)

			store, err := session.Open(cfg)
			if err != nil {
				logger.Error("open session store", logging.Error(err))
				return err
			}
			defer store.Close()

			images := imagecache.NewService(cfg, logger)

			server := api.NewServer(cfg, store, images, logger)
			if server == nil {
				logger.Warn("api_bind is empty, navigation and prefetch are disabled")
			} else {
				images.Start(signalCtx)
				if err := server.Start(signalCtx); err != nil {
					return err
				}
				defer server.Stop()

				// Fixed-interval drain applies decode results to the server's
				// navigation state; stale tokens are dropped inside Drain.
				go drainLoop(signalCtx, images, server)
			}

			logger.Info("polereview serving",
				logging.String("work_dir", cfg.Paths.WorkDir),
				logging.String("session_db", store.Path()))

			<-signalCtx.Done()
			logger.Info("polereview shutting down")
			images.Wait()
			return nil
		},
	}
}

func drainLoop(ctx context.Context, images *imagecache.Service, server *api.Server) {
	ticker := time.NewTicker(images.DrainInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			images.Drain(server.ApplyResult)
		}
	}
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
