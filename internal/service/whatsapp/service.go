package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/inventory/internal/config"
	client "github.com/mamadbah2/inventory/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// ErrNoRecipient is returned when no alert recipient is configured.
var ErrNoRecipient = errors.New("whatsapp alert recipient is not configured")

// AlertNotifier pushes restock alerts to the configured WhatsApp recipient.
type AlertNotifier struct {
	recipient string
	client    client.Client
	logger    *zap.Logger
}

// NewAlertNotifier wires a new notifier instance.
func NewAlertNotifier(cfg config.WhatsAppConfig, client client.Client, logger *zap.Logger) *AlertNotifier {
	n := &AlertNotifier{
		recipient: cfg.AlertRecipient,
		client:    client,
		logger:    logger,
	}
	if n.logger == nil {
		n.logger = zap.NewNop()
	}
	return n
}

// SendAlert delivers text as a single message.
func (n *AlertNotifier) SendAlert(ctx context.Context, text string) error {
	if n.recipient == "" {
		return ErrNoRecipient
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := n.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:   n.recipient,
		Body: text,
	})
	if err != nil {
		return fmt.Errorf("send restock alert: %w", err)
	}

	messageID := ""
	if resp != nil && len(resp.Messages) > 0 {
		messageID = resp.Messages[0].ID
	}
	n.logger.Info("restock alert sent", zap.String("to", n.recipient), zap.String("message_id", messageID))
	return nil
}
