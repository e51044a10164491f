package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ripplesns/ripple/pkg/email"
	"github.com/ripplesns/ripple/pkg/logger"
)

// NotificationGateway delivers a verification link to a recipient. The core
// treats delivery as fire-and-forget: implementations log transport failures
// themselves and never surface them, so registration outcome is independent
// of mail-server availability and leaks nothing about the transport.
type NotificationGateway interface {
	DeliverVerificationLink(ctx context.Context, recipient, url string) error
}

// EmailGateway implements NotificationGateway on top of an email.EmailSender.
type EmailGateway struct {
	sender email.EmailSender
	log    *slog.Logger
}

// NewEmailGateway creates a gateway delivering links via sender.
func NewEmailGateway(sender email.EmailSender, log *slog.Logger) *EmailGateway {
	if log == nil {
		log = logger.NewDiscard()
	}
	return &EmailGateway{sender: sender, log: log}
}

// DeliverVerificationLink sends the confirmation email. Always returns nil:
// a failed send is logged and swallowed so the caller's flow proceeds.
func (g *EmailGateway) DeliverVerificationLink(ctx context.Context, recipient, url string) error {
	err := g.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   recipient,
		Subject:  "Confirm your email address",
		BodyHTML: verificationBody(url),
		Tag:      "verification",
	})
	if err != nil {
		g.log.ErrorContext(ctx, "failed to deliver verification email",
			logger.Email(recipient),
			logger.Error(err),
			logger.Component("auth.gateway"),
		)
	}
	return nil
}

func verificationBody(url string) string {
	return fmt.Sprintf(`<p>Hello,</p>
<p>Click the link below to confirm your email address:</p>
<p><a href="%[1]s">%[1]s</a></p>
<p>If you did not expect this email, you can safely ignore it.</p>`, url)
}
