package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/inventory/internal/domain/models"
	"github.com/mamadbah2/inventory/pkg/logger"
	"github.com/mamadbah2/inventory/pkg/rabbitmq"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(opts *RootOptions) *cobra.Command {
	var bindingKey string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow product change events from the message broker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Events.Enabled() {
				return NewExitError(ExitUsage, "AMQP_URL is not configured")
			}

			out := cmd.OutOrStdout()
			handle := func(event models.ProductEvent) error {
				return printEvent(out, opts.Format, event)
			}

			err = rabbitmq.Watch(cmd.Context(), rabbitmq.Config{URL: cfg.Events.URL, Exchange: cfg.Events.Exchange},
				bindingKey, handle, logger.Named(opts.logger(cfg), "events"))
			if err != nil {
				return WrapExitError("watch failed", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bindingKey, "events", rabbitmq.AllProductEvents, "routing key pattern to follow")

	return cmd
}

// printEvent writes one event per line: JSON lines or a short text summary.
func printEvent(w io.Writer, format string, event models.ProductEvent) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(event)
	}

	name := "-"
	if event.Product != nil {
		name = event.Product.Name
	}
	_, err := fmt.Fprintf(w, "%s  %-16s  %s  %s\n", event.OccurredAt.UTC().Format(time.RFC3339), event.Type, event.ProductID, name)
	return err
}
