// Package cli implements the inventoryctl command line client.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/inventory/internal/domain/models"
	"github.com/mamadbah2/inventory/internal/i18n"
	"github.com/mamadbah2/inventory/internal/service/export"
	"github.com/mamadbah2/inventory/internal/service/metrics"
	"github.com/mamadbah2/inventory/internal/service/session"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Inventory is the subset of the inventory service the CLI drives.
type Inventory interface {
	Metrics(ctx context.Context, sess *session.Session) (metrics.Snapshot, error)
	Export(ctx context.Context, sess *session.Session, reportType export.ReportType, format export.Format, locale i18n.Locale) (*export.File, error)
	AuditLog(ctx context.Context, sess *session.Session, limit int) ([]models.AuditEntry, error)
}

// Env is a signed-in working context for one command run.
type Env struct {
	Session       *session.Session
	Inventory     Inventory
	DefaultLocale i18n.Locale
	Close         func(ctx context.Context)
}

// Connector signs in and builds an Env from the root options.
type Connector func(ctx context.Context, opts *RootOptions) (*Env, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile  string
	Format   string // "json" | "text"
	Email    string
	Password string
	Verbose  bool

	connect Connector
}

// NewRootCommand creates the root command wired to the hosted record store.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(Connect)
}

// NewRootCommandWith creates the root command using connect to sign in.
func NewRootCommandWith(connect Connector) *cobra.Command {
	opts := &RootOptions{connect: connect}

	cmd := &cobra.Command{
		Use:   "inventoryctl",
		Short: "Inventory management client",
		Long:  "Read metrics, export reports, browse the audit log and follow product changes.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitUsage, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "path to a .env file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Email, "email", "", "account email (or INVENTORY_EMAIL)")
	cmd.PersistentFlags().StringVar(&opts.Password, "password", "", "account password (or INVENTORY_PASSWORD)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log diagnostics to stderr")

	cmd.AddCommand(NewMetricsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

// withEnv signs in, runs fn and signs out again.
func (o *RootOptions) withEnv(ctx context.Context, fn func(env *Env) error) error {
	env, err := o.connect(ctx, o)
	if err != nil {
		return err
	}
	if env.Close != nil {
		defer env.Close(context.WithoutCancel(ctx))
	}
	return fn(env)
}
