package cli

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/inventory/internal/config"
	"github.com/mamadbah2/inventory/internal/i18n"
	"github.com/mamadbah2/inventory/internal/repository/recordstore"
	"github.com/mamadbah2/inventory/internal/service/inventory"
	"github.com/mamadbah2/inventory/internal/service/session"
	"github.com/mamadbah2/inventory/pkg/clients/auth"
	"github.com/mamadbah2/inventory/pkg/logger"
)

// Connect loads configuration, signs in against the hosted auth service and
// returns an Env bound to the resulting session.
func Connect(ctx context.Context, opts *RootOptions) (*Env, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	email := firstNonEmpty(opts.Email, os.Getenv("INVENTORY_EMAIL"))
	password := opts.Password
	if password == "" {
		password = os.Getenv("INVENTORY_PASSWORD")
	}
	if email == "" || password == "" {
		return nil, NewExitError(ExitUsage, "credentials required: use --email/--password or INVENTORY_EMAIL/INVENTORY_PASSWORD")
	}

	log := opts.logger(cfg)
	store := recordstore.NewClient(cfg.Store, logger.Named(log, "repo.recordstore"))
	sessions := session.NewManager(auth.NewClient(cfg.Store), store, logger.Named(log, "svc.session"))

	sess, err := sessions.SignIn(ctx, email, password)
	if err != nil {
		return nil, WrapExitError("login failed", err)
	}

	return &Env{
		Session:       sess,
		Inventory:     inventory.NewService(store, nil, logger.Named(log, "svc.inventory")),
		DefaultLocale: i18n.Parse(cfg.Locale.Default),
		Close: func(ctx context.Context) {
			if err := sessions.SignOut(ctx, sess.AccessToken); err != nil {
				log.Warn("sign out failed", zap.Error(err))
			}
			_ = log.Sync()
		},
	}, nil
}

func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadClient(o.EnvFile)
	if err != nil {
		return nil, NewExitError(ExitUsage, err.Error())
	}
	return cfg, nil
}

// logger is silent unless --verbose is set.
func (o *RootOptions) logger(cfg *config.Config) *zap.Logger {
	if !o.Verbose {
		return zap.NewNop()
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
