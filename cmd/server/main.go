package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wesync/internal/app/server"
	"wesync/internal/app/server/config"
	"wesync/internal/utils/logger"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:          "wesync-server",
		Short:        "WeSync mailbox synchronization server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			var opts []logger.Option
			if cfg.Log.File != "" {
				opts = append(opts, logger.WithFile(cfg.Log.File))
			}
			log := logger.New(cfg.Env, opts...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := server.New(ctx, cfg, log)
			if err != nil {
				log.Error("failed to start", "error", err)
				return err
			}
			return app.Run(ctx)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to config file")

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
