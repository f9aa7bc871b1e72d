package notification

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/fuel-station-management/pkg/logger"
)

// LogMailer is the mail transport used until an SMTP relay is configured. Bodies are not logged
// because reset emails carry a live token.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lg, ok := logger.Lookup(ctx)
	if !ok {
		lg = m.logger.With("message_id", msg.ID, "event_id", msg.EventID, "kind", msg.Kind)
	}
	lg.Info("email sent",
		"from", msg.From,
		"to", strings.Join(msg.To, ","),
		"subject", msg.Subject,
		"body_bytes", len(msg.Body))
	return nil
}
