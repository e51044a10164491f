package email

// Config holds email service configuration.
// Postmark tokens are optional so development environments can run without a
// mail provider; the dev sender is selected when UseDevSender is set or no
// server token is configured.
type Config struct {
	UseDevSender         bool   `env:"MAIL_DEV_MODE" envDefault:"false"`
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"noreply@ripple.local"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@ripple.local"`
}
