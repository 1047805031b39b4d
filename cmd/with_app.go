package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"civicsense/internal/bootstrap"
	"civicsense/internal/bootstrap/logging"
	"civicsense/internal/errs"
	"civicsense/internal/infrastructure/auth"
	"civicsense/internal/usecase/lifecycle"
)

func withApp(run func(cmd *cobra.Command, app *bootstrap.App, svc *lifecycle.Service) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var app *bootstrap.App
		var svc *lifecycle.Service
		return runFx(cmd, []any{&app, &svc}, func() error {
			return run(cmd, app, svc)
		})
	}
}

// withAuthApp is withApp plus the bearer token authenticator, which requires auth.jwt_secret.
func withAuthApp(run func(cmd *cobra.Command, app *bootstrap.App, svc *lifecycle.Service, authn *auth.JWTAuthenticator) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var app *bootstrap.App
		var svc *lifecycle.Service
		var authn *auth.JWTAuthenticator
		return runFx(cmd, []any{&app, &svc, &authn}, func() error {
			return run(cmd, app, svc, authn)
		})
	}
}

func runFx(cmd *cobra.Command, targets []any, run func() error) error {
	ctx := logging.WithAttrs(
		cmd.Context(),
		slog.String("command", cmd.CommandPath()),
		slog.String("config_file", cfgFile),
	)

	var logger *slog.Logger
	fxApp := fx.New(
		bootstrap.Module,
		fx.Provide(func() context.Context { return ctx }),
		fx.Provide(
			fx.Annotate(
				func() string { return cfgFile },
				fx.ResultTags(`name:"configFile"`),
			),
		),
		fx.Populate(append(targets, &logger)...),
	)

	startCtx, cancelStart := context.WithTimeout(ctx, 10*time.Second)
	defer cancelStart()
	if err := fxApp.Start(startCtx); err != nil {
		logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrap(err, "start fx application")
	}

	defer func() {
		stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelStop()
		if err := fxApp.Stop(stopCtx); err != nil {
			logging.Error(ctx, "fx application stop failed", slog.Any("err", errs.Loggable(err)))
		}
	}()

	// Commands log through the configured logger from here on.
	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))

	if err := run(); err != nil {
		return errs.Wrap(err, "run command")
	}
	return nil
}
