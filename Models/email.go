package Models

import "time"

// EmailConfig describes the outbound SMTP transport.
type EmailConfig struct {
	SMTPServer   string
	SMTPPort     int
	Username     string
	Password     string
	FromEmail    string
	ToEmail      string
	Secure       bool
	SkipTLSCheck bool
	Timeout      time.Duration
}

// EmailMessage represents an email to be sent
type EmailMessage struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	Body    string
}
