package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"civicsense/internal/bootstrap"
	"civicsense/internal/bootstrap/logging"
	"civicsense/internal/errs"
	"civicsense/internal/infrastructure/auth"
	"civicsense/internal/transport/httpapi"
	"civicsense/internal/usecase/lifecycle"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reporter and admin HTTP API",
	RunE: withAuthApp(func(cmd *cobra.Command, app *bootstrap.App, svc *lifecycle.Service, authn *auth.JWTAuthenticator) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		migrate, _ := cmd.Flags().GetBool("migrate")
		if migrate {
			if err := app.InitSchema(ctx); err != nil {
				return errs.Wrap(err, "initialize schema")
			}
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = app.Config.HTTP.Addr
		}

		server := &http.Server{
			Addr:              addr,
			Handler:           httpapi.NewRouter(svc, authn),
			ReadTimeout:       app.Config.HTTP.ReadTimeout,
			ReadHeaderTimeout: app.Config.HTTP.ReadTimeout,
			WriteTimeout:      app.Config.HTTP.WriteTimeout,
			BaseContext: func(_ net.Listener) context.Context {
				return ctx
			},
		}

		return runServer(ctx, server)
	}),
}

// runServer serves until SIGINT/SIGTERM or ctx is done, then drains in-flight requests.
func runServer(ctx context.Context, server *http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logging.Info(ctx, "http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errs.Wrap(err, "listen and serve")
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logging.Info(ctx, "http server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(err, "shutdown http server")
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logging.Error(ctx, "http server stopped with error", slog.Any("err", errs.Loggable(err)))
		return err
	}
	logging.Info(ctx, "http server stopped")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (defaults to http.addr)")
	serveCmd.Flags().Bool("migrate", true, "Run schema migration before serving")
}
