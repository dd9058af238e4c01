package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"Folio/Models"
)

// Sender delivers a fully built message.
type Sender interface {
	Send(ctx context.Context, message Models.EmailMessage) error
	// Name identifies the transport in logs.
	Name() string
}

// SMTPSender delivers messages through an SMTP relay. It is created once at
// startup and opens a fresh connection for every message.
type SMTPSender struct {
	config Models.EmailConfig
	dialer func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewSMTPSender creates a sender from the given configuration
func NewSMTPSender(config Models.EmailConfig) *SMTPSender {
	d := &net.Dialer{Timeout: config.Timeout}
	return &SMTPSender{config: config, dialer: d.DialContext}
}

func (s *SMTPSender) Name() string {
	return "smtp"
}

// Send sends one message, honouring ctx and the configured timeout.
func (s *SMTPSender) Send(ctx context.Context, message Models.EmailMessage) error {
	if len(message.To) == 0 {
		return errors.New("message has no recipients")
	}
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	body, err := Format(message, time.Now())
	if err != nil {
		return err
	}

	serverAddr := net.JoinHostPort(s.config.SMTPServer, strconv.Itoa(s.config.SMTPPort))
	tlsConfig := &tls.Config{
		ServerName:         s.config.SMTPServer,
		InsecureSkipVerify: s.config.SkipTLSCheck,
	}

	conn, err := s.dialer(ctx, "tcp", serverAddr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	// Unblock any pending read or write if ctx ends early.
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	if s.config.Secure {
		tlsConn := tls.Client(conn, tlsConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return fmt.Errorf("TLS handshake failed: %w", err)
		}
		conn = tlsConn
	}

	client, err := smtp.NewClient(conn, s.config.SMTPServer)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if !s.config.Secure {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("STARTTLS failed: %w", err)
			}
		}
	}

	if s.config.Username != "" {
		if ok, _ := client.Extension("AUTH"); !ok {
			return errors.New("SMTP server does not support AUTH")
		}
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(envelopeAddress(message.From)); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, recipient := range message.To {
		if err := client.Rcpt(envelopeAddress(recipient)); err != nil {
			return fmt.Errorf("failed to add recipient %s: %w", recipient, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data connection: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data connection: %w", err)
	}

	return client.Quit()
}

// envelopeAddress strips any display name, "Folio <a@b>" becomes "a@b".
func envelopeAddress(v string) string {
	if addr, err := mail.ParseAddress(v); err == nil {
		return addr.Address
	}
	return v
}
