package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/inventory/internal/domain/models"
)

// AuditOptions holds flags for the audit command.
type AuditOptions struct {
	*RootOptions
	Limit int
}

// AuditLine is one printable audit entry.
type AuditLine struct {
	At       time.Time          `json:"at"`
	Action   models.AuditAction `json:"action"`
	User     string             `json:"user"`
	RecordID string             `json:"recordId,omitempty"`
	Summary  string             `json:"summary"`
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List the newest product changes (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnv(cmd.Context(), func(env *Env) error {
				entries, err := env.Inventory.AuditLog(cmd.Context(), env.Session, opts.Limit)
				if err != nil {
					return WrapExitError("failed to load audit log", err)
				}

				lines := make([]AuditLine, 0, len(entries))
				for _, e := range entries {
					user := e.UserEmail
					if user == "" {
						user = "-"
					}
					lines = append(lines, AuditLine{At: e.CreatedAt, Action: e.Action, User: user, RecordID: e.RecordID, Summary: e.Summary()})
				}

				return emit(cmd.OutOrStdout(), opts.Format, lines, func(w io.Writer) {
					if len(lines) == 0 {
						fmt.Fprintln(w, "No audit entries.")
						return
					}
					for _, l := range lines {
						fmt.Fprintf(w, "%s  %-6s  %-24s  %s\n", l.At.UTC().Format(time.RFC3339), l.Action, l.User, l.Summary)
					}
				})
			})
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 100, "maximum number of entries (1-100)")

	return cmd
}
