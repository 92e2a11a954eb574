package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"extractd/internal/config"
	"extractd/internal/httpapi"
	"extractd/internal/service"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(o *rootOptions) *cobra.Command {
	var (
		addr           string
		maxBody        int64
		corsOrigins    string
		requestTimeout int64
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := o.load(cmd)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("addr") {
				cfg.Addr = addr
			}
			if f.Changed("max-body-bytes") {
				cfg.MaxBodyBytes = maxBody
			}
			if f.Changed("cors-origins") {
				cfg.CORSOrigins = config.SplitCSV(corsOrigins)
				cfg.CORSEnabled = len(cfg.CORSOrigins) > 0
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, err := service.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()
			if err := svc.Probe(ctx); err == nil {
				log.Info().Str("backend", svc.Backend()).Msg("backend ready")
			}

			httpapi.SetLogger(log)
			httpapi.SetDefaultLogLevel(cfg.LogLevel)
			httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
			httpapi.SetExtractTimeoutSeconds(requestTimeout)
			httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)
			httpapi.SetBaseContext(ctx)

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           httpapi.NewMux(svc),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}
			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", cfg.Addr).Str("models_dir", cfg.ModelsDir).
					Str("backend", svc.Backend()).Str("profile", svc.Profile().Name).Msg("extractd listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			log.Info().Msg("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				log.Warn().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().Int64Var(&maxBody, "max-body-bytes", 1<<20, "maximum request body size")
	cmd.Flags().StringVar(&corsOrigins, "cors-origins", "", "comma-separated allowed origins; enables CORS")
	cmd.Flags().Int64Var(&requestTimeout, "request-timeout", 0, "per-request deadline in seconds (0 = generation timeout only)")
	return cmd
}
