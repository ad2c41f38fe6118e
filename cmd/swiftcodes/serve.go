package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	handler "github.com/zdziszkee/swift-codes-catalog/internal/api/handlers"
	"github.com/zdziszkee/swift-codes-catalog/internal/api/router"
	service "github.com/zdziszkee/swift-codes-catalog/internal/services"
)

const autoLoadTimeout = 5 * time.Minute

type serveOptions struct {
	configPath string
	loadFile   string
}

func newRootCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:          "swiftcodes",
		Short:        "Serve the SWIFT code catalogue over HTTP",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration file")
	cmd.Flags().StringVar(&opts.loadFile, "load", "", "Path to SWIFT codes CSV file to load before serving")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the SWIFT code catalogue over HTTP (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	serve.Flags().StringVar(&opts.loadFile, "load", "", "Path to SWIFT codes CSV file to load before serving")

	cmd.AddCommand(serve, newIngestCmd(&opts.configPath))
	return cmd
}

func runServe(ctx context.Context, opts serveOptions) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, opts.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if opts.loadFile != "" {
		a.cfg.Data.SwiftCodesFile = opts.loadFile
		a.cfg.Data.AutoLoad = true
	}

	if a.cfg.Data.AutoLoad {
		loadCtx, cancel := context.WithTimeout(ctx, autoLoadTimeout)
		// the ingester logs its own summary
		if _, err := a.ingester().IngestFile(loadCtx, a.cfg.Data.SwiftCodesFile); err != nil {
			a.log.Warn().Err(err).Str("file", a.cfg.Data.SwiftCodesFile).Msg("failed to load SWIFT codes, serving what is stored")
		}
		cancel()
	}

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	swiftService := service.NewSwiftService(a.repo, a.log, service.WithMetrics(a.metrics))
	server := router.SetupRoutes(handler.NewSwiftHandler(swiftService, a.log), a.log, a.registry)

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("address", a.cfg.Server.Address).Msg("starting server")
		errCh <- server.Listen(a.cfg.Server.Address, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	a.log.Info().Msg("server exiting")
	return nil
}
