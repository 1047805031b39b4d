package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"civicsense/internal/bootstrap/config"
	"civicsense/internal/bootstrap/database"
	"civicsense/internal/bootstrap/logging"
	"civicsense/internal/domain/issue"
	"civicsense/internal/errs"
	"civicsense/internal/infrastructure/auth"
	sqliterepo "civicsense/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "civicsense/internal/infrastructure/persistence/sqlite/uow"
	"civicsense/internal/ports"
	"civicsense/internal/usecase/lifecycle"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideLogger),
	fx.Provide(provideApp),
	fx.Provide(provideDatabase),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewIssueRepository,
			fx.As(new(ports.IssueRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(provideLifecycleSettings),
	fx.Provide(provideLifecycleService),
	fx.Provide(provideAuthenticator),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideLogger(lc fx.Lifecycle, cfg config.Config) (*slog.Logger, error) {
	logger, closer, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return nil, errs.Wrap(err, "build logger")
	}
	logger = logger.With(slog.String("app", cfg.App.Name), slog.String("env", cfg.App.Env))
	logging.SetDefault(logger)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return closer.Close()
		},
	})
	return logger, nil
}

// provideApp opens the database and ties its lifetime to the fx lifecycle.
func provideApp(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*App, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	lc.Append(fx.Hook{
		OnStop: app.Close,
	})
	return app, nil
}

func provideDatabase(app *App) *gorm.DB {
	return app.DB
}

// provideLifecycleSettings resolves the transition policy, id retry budget and display timezone.
func provideLifecycleSettings(ctx context.Context, cfg config.Config) (lifecycle.Settings, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	mode, err := issue.ParseTransitionMode(cfg.Lifecycle.TransitionMode)
	if err != nil {
		return lifecycle.Settings{}, errs.Wrap(err, "lifecycle.transition_mode")
	}

	policy := issue.PermissivePolicy()
	if mode == issue.TransitionStrict {
		var table map[issue.Status][]issue.Status
		if file := strings.TrimSpace(cfg.Lifecycle.TransitionsFile); file != "" {
			table, err = issue.LoadTransitionTable(file)
			if err != nil {
				return lifecycle.Settings{}, errs.Wrap(err, "load transition table")
			}
			logging.Info(logCtx, "transition table loaded", slog.String("path", file))
		}
		policy = issue.StrictPolicy(table)
	}

	location := time.UTC
	if tz := strings.TrimSpace(cfg.Lifecycle.Timezone); tz != "" {
		location, err = time.LoadLocation(tz)
		if err != nil {
			return lifecycle.Settings{}, errs.Wrapf(err, "load timezone %q", tz)
		}
	}

	return lifecycle.Settings{
		Policy:        policy,
		MaxIDAttempts: cfg.Lifecycle.MaxIDAttempts,
		Location:      location,
	}, nil
}

func provideLifecycleService(repo ports.IssueRepository, uow ports.UnitOfWork, settings lifecycle.Settings) *lifecycle.Service {
	return lifecycle.NewService(repo, uow, settings)
}

func provideAuthenticator(cfg config.Config) (*auth.JWTAuthenticator, error) {
	return auth.NewJWTAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
}
