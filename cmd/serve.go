package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brk3/habitstate/internal/logger"
	"github.com/brk3/habitstate/internal/server"
	"github.com/brk3/habitstate/internal/session"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `The "serve" command exposes the habit store over HTTP. When session keys
are configured every /habits request needs a valid session cookie and runs
against the cookie's profile. Without keys the configured profile is served.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHost()
		if err != nil {
			return err
		}

		opts := server.Options{DefaultProfile: cfg.Profile}
		if cfg.Session.HashKey != "" {
			codec, err := session.NewCodec([]byte(cfg.Session.HashKey), []byte(cfg.Session.BlockKey))
			if err != nil {
				return err
			}
			opts.Sessions = codec
		}

		srv := &http.Server{
			Addr:              cfg.Server.ListenAddr,
			Handler:           server.New(h, opts).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			logger.Info("Starting server", "addr", srv.Addr, "sessions", opts.Sessions != nil)
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
