package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/pubcms"
	"github.com/eringen/pubcms/views"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(v *viper.Viper, cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := loadConfig(v, *cfgFile)
			if err != nil {
				return err
			}
			if fc.SessionSecret == "" {
				return errors.New("PUBCMS_SESSION_SECRET is required")
			}
			logger := fc.logger()
			site := fc.site()

			app := pubcms.New(site, views.Default(site), pubcms.WithLogger(logger))
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- app.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return app.Shutdown(shutdownCtx)
		},
	}
}
