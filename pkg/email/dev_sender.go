package email

import (
	"context"
	"log/slog"
	"regexp"
)

// DevSender implements EmailSender for local development. Instead of sending
// anything it logs the message, and separately logs every URL found in the
// body so verification links can be followed straight from the console.
type DevSender struct {
	log *slog.Logger
}

// NewDevSender creates a development email sender that writes to log.
func NewDevSender(log *slog.Logger) EmailSender {
	return &DevSender{log: log}
}

var urlRegex = regexp.MustCompile(`https?://[^\s"'<>]+`)

// SendEmail logs the message instead of delivering it.
func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	d.log.InfoContext(ctx, "outgoing email (dev mode, not delivered)",
		slog.String("send_to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
	)

	for _, url := range urlRegex.FindAllString(params.BodyHTML, -1) {
		d.log.InfoContext(ctx, "email contains link", slog.String("url", url))
	}

	return nil
}
