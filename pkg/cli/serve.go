package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/cli/config"
	controller "github.com/m-mizutani/msgbox/pkg/controller/http"
	"github.com/m-mizutani/msgbox/pkg/domain/interfaces"
	"github.com/m-mizutani/msgbox/pkg/usecase"
	"github.com/m-mizutani/msgbox/pkg/utils/async"
	"github.com/m-mizutani/msgbox/pkg/utils/logging"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		storageCfg   config.Storage
		extractorCfg config.Extractor
		retentionCfg config.Retention
		sentryCfg    config.Sentry
	)

	flags := slices.Concat(
		serverCfg.Flags(),
		storageCfg.Flags(),
		extractorCfg.CLIFlags(),
		retentionCfg.Flags(),
		sentryCfg.Flags(),
	)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			logger.Info("Starting msgbox server",
				slog.String("addr", serverCfg.Addr),
				slog.String("data_dir", storageCfg.DataDir),
				slog.Any("sentry", sentryCfg),
			)

			flush, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flush()

			store, err := storageCfg.Configure()
			if err != nil {
				return err
			}

			cmd, err := extractorCfg.Configure()
			if err != nil {
				return err
			}

			// Create use cases
			retentionUC := usecase.NewRetention(store, retentionCfg.MaxAge)
			uc := controller.UseCases{
				Extraction: usecase.NewExtraction(store, cmd),
				Files:      usecase.NewFiles(store),
				Bundle:     usecase.NewBundle(store),
			}

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				uc,
				controller.WithAddr(serverCfg.Addr),
				controller.WithStaticDir(serverCfg.StaticDir),
				controller.WithCORSOrigins(serverCfg.CORSOrigins...),
				controller.WithMaxUploadSize(serverCfg.MaxUploadSize),
				controller.WithExtractRate(serverCfg.ExtractRate, serverCfg.ExtractBurst),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			if retentionCfg.Enabled() {
				scheduler, err := startRetention(ctx, retentionCfg.Schedule, retentionUC)
				if err != nil {
					return err
				}
				defer func() {
					<-scheduler.Stop().Done()
				}()
				logger.Info("Retention sweep scheduled",
					slog.String("schedule", retentionCfg.Schedule),
					slog.Duration("max_age", retentionCfg.MaxAge),
				)
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

// startRetention runs the retention sweep on schedule in the background
func startRetention(ctx context.Context, schedule string, uc interfaces.RetentionUseCase) (*cron.Cron, error) {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(schedule, func() {
		async.Dispatch(ctx, func(ctx context.Context) error {
			_, err := uc.Sweep(ctx)
			return err
		})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "invalid retention schedule", goerr.V("schedule", schedule))
	}

	scheduler.Start()
	return scheduler, nil
}
