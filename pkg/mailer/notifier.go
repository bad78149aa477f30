package mailer

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueNotifier hands messages to the email worker through RabbitMQ.
type QueueNotifier struct {
	Pub Publisher
}

func (n *QueueNotifier) Send(ctx context.Context, msg Message) error {
	if n.Pub == nil {
		return errors.New("email queue not configured")
	}
	return n.Pub.PublishJSON(ctx, EmailJob{Message: msg})
}

// LogNotifier writes messages to the log instead of sending them. Used when
// MAIL_SEND_ENABLED=false.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	if n.Logger == nil {
		return nil
	}
	n.Logger.WithFields(logrus.Fields{
		"from":    msg.From,
		"to":      strings.Join(msg.To, ","),
		"subject": msg.Subject,
	}).Info("email (not sent)\n" + msg.Text)
	return nil
}
