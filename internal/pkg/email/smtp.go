package email

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"
)

// Message represents an email to send
type Message struct {
	To          string
	ToName      string
	Subject     string
	HTMLContent string
	TextContent string
}

// Client delivers rendered messages
type Client interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPConfig holds SMTP relay settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPClient sends email through an SMTP relay
type SMTPClient struct {
	config SMTPConfig
	client *mail.Client
}

// NewSMTPClient creates a go-mail backed client. Authentication is only
// configured when a username is set so local relays like MailHog work.
func NewSMTPClient(config SMTPConfig) (*SMTPClient, error) {
	opts := []mail.Option{
		mail.WithPort(config.Port),
		mail.WithTimeout(15 * time.Second),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	c, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}
	return &SMTPClient{config: config, client: c}, nil
}

// Send sends an email
func (c *SMTPClient) Send(ctx context.Context, msg *Message) error {
	m := mail.NewMsg()
	if err := m.FromFormat(c.config.FromName, c.config.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := m.AddToFormat(msg.ToName, msg.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetMessageID()
	m.SetDate()

	if msg.TextContent != "" {
		m.SetBodyString(mail.TypeTextPlain, msg.TextContent)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLContent)
	} else {
		m.SetBodyString(mail.TypeTextHTML, msg.HTMLContent)
	}

	if err := c.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	log.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("Email sent")
	return nil
}

// NoopClient logs messages instead of sending them
type NoopClient struct{}

// Send logs the message
func (NoopClient) Send(_ context.Context, msg *Message) error {
	log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("Email delivery disabled, message dropped")
	return nil
}
