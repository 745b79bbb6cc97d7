// Command cloudnotes is the single binary behind every deployment
// surface: the web service, the migrate job and the createsuperuser
// job each run one of its subcommands. One image, three entry points.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arvield/cloudnotes/internal/cloud"
	"github.com/arvield/cloudnotes/internal/config"
	"github.com/arvield/cloudnotes/internal/database"
	"github.com/arvield/cloudnotes/internal/handler"
	"github.com/arvield/cloudnotes/internal/logger"
	"github.com/arvield/cloudnotes/internal/middleware"
	"github.com/arvield/cloudnotes/internal/repository"
	"github.com/arvield/cloudnotes/internal/router"
	"github.com/arvield/cloudnotes/internal/server"
	"github.com/arvield/cloudnotes/internal/service"
	"github.com/arvield/cloudnotes/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	// Load a local .env file into the environment before anything
	// reads it. A no-op when the file does not exist, so deployed
	// instances are unaffected.
	_ "github.com/joho/godotenv/autoload"
)

// shutdownTimeout bounds graceful shutdown. Cloud Run sends SIGTERM
// and allows 10 seconds by default before SIGKILL.
const shutdownTimeout = 10 * time.Second

func main() {
	root := &cobra.Command{
		Use:           "cloudnotes",
		Short:         "Notes web service for Cloud Run",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd(), migrateCmd(), createSuperuserCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the root logger. A config
// error (missing secret key, unreachable secret blob, failed service
// URL lookup) is fatal for every subcommand.
func setup(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx, cloud.NewPlatform())
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, logger.New(cfg.Debug), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, log, err := setup(ctx)
			if err != nil {
				return err
			}

			s, err := server.New(ctx, cfg, &log)
			if err != nil {
				return err
			}

			repos := repository.NewRepositories(s)
			services := service.NewServices(s, repos)
			handlers := handler.NewHandlers(s, services)
			middlewares := middleware.NewMiddlewares(s)

			s.SetupHTTPServer(router.New(s, middlewares, handlers))

			errCh := make(chan error, 1)
			go func() {
				errCh <- s.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return s.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and sync static assets to the bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, log, err := setup(ctx)
			if err != nil {
				return err
			}

			if err := database.Migrate(ctx, &log, cfg); err != nil {
				return fmt.Errorf("migrating database: %w", err)
			}

			if cfg.Bucket.Name == "" {
				log.Info().Msg("no bucket configured, skipping static asset sync")
				return nil
			}

			store, err := storage.NewGCS(ctx, cfg.Bucket.Name)
			if err != nil {
				return fmt.Errorf("connecting to bucket: %w", err)
			}
			defer store.Close()

			count, err := storage.CollectStatic(ctx, store, &log)
			if err != nil {
				return fmt.Errorf("syncing static assets: %w", err)
			}
			log.Info().Int("files", count).Str("bucket", cfg.Bucket.Name).Msg("static assets synced")
			return nil
		},
	}
}

func createSuperuserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create the administrative account, or reset its password",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, log, err := setup(ctx)
			if err != nil {
				return err
			}

			s, err := server.New(ctx, cfg, &log)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				_ = s.Shutdown(shutdownCtx)
			}()

			repos := repository.NewRepositories(s)
			services := service.NewServices(s, repos)

			if err := services.Auth.EnsureSuperuser(ctx, cfg.Superuser.Name, cfg.Superuser.Password); err != nil {
				return err
			}
			log.Info().Str("username", cfg.Superuser.Name).Msg("superuser ready")
			return nil
		},
	}
}
