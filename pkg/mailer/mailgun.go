package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun wraps Mailgun client configuration.
type Mailgun struct {
	Domain string
	APIKey string
	Sender string
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender}
}

// Send delivers msg through Mailgun. An empty From uses the configured sender.
func (m *Mailgun) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("mailgun: no recipients")
	}
	from := msg.From
	if from == "" {
		from = m.Sender
	}
	client := mg.NewMailgun(m.Domain, m.APIKey)
	out := client.NewMessage(from, msg.Subject, msg.Text, msg.To...)
	if msg.HTML != "" {
		out.SetHtml(msg.HTML)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := client.Send(c, out)
	return err
}
