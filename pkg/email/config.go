package email

// Config holds email transport configuration. The Postmark tokens are
// optional so development environments can run on the file-based
// DevSender instead; SenderEmail establishes the from-identity of every
// outbound notification and SupportEmail its reply-to.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL"`
}
