package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantumrocket/quantumrocket/internal/config"
	"github.com/quantumrocket/quantumrocket/internal/database"
	"github.com/quantumrocket/quantumrocket/internal/handler"
	"github.com/quantumrocket/quantumrocket/internal/logger"
	"github.com/quantumrocket/quantumrocket/internal/middleware"
	"github.com/quantumrocket/quantumrocket/internal/repository"
	"github.com/quantumrocket/quantumrocket/internal/router"
	"github.com/quantumrocket/quantumrocket/internal/server"
	"github.com/quantumrocket/quantumrocket/internal/service"
)

const shutdownTimeout = 30 * time.Second

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "quantumrocket",
		Short:         "QuantumRocket web application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())

	return cmd
}

// bootstrap loads configuration and builds the application logger. The
// returned service must be shut down to flush New Relic.
func bootstrap() (*config.Config, *logger.LoggerService, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, zerolog.Logger{}, err
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		return nil, nil, zerolog.Logger{}, err
	}

	return cfg, loggerService, logger.NewLoggerWithService(cfg.Observability, loggerService), nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, loggerService, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			return database.Migrate(cmd.Context(), &log, cfg)
		},
	}
}

func newServeCommand() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and background workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, loggerService, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			return serve(cfg, loggerService, &log, !skipMigrations)
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not migrate the database on startup")

	return cmd
}

func serve(cfg *config.Config, loggerService *logger.LoggerService, log *zerolog.Logger, migrate bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrate && cfg.Primary.Env != "local" {
		if err := database.Migrate(ctx, log, cfg); err != nil {
			log.Error().Err(err).Msg("failed to migrate database")
			return err
		}
	}

	srv, err := server.New(cfg, log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		return err
	}

	repos := repository.NewRepositories(srv)
	services, err := service.NewServices(srv, repos)
	if err != nil {
		log.Error().Err(err).Msg("could not create services")
		return err
	}

	mw := middleware.NewMiddlewares(srv)
	handlers := handler.NewHandlers(srv, services, mw.Auth)
	srv.SetupHTTPServer(router.NewRouter(srv, handlers, mw))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("shutdown failed")
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server exited properly")
	return nil
}
