package mailer

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	bodies []any
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.bodies = append(p.bodies, body)
	return nil
}

func TestQueueNotifier(t *testing.T) {
	pub := &recordingPublisher{}
	n := &QueueNotifier{Pub: pub}
	msg := Message{From: "a@example.test", To: []string{"b@example.test"}, Subject: "hi", Text: "body"}

	require.NoError(t, n.Send(context.Background(), msg))
	require.Len(t, pub.bodies, 1)
	assert.Equal(t, EmailJob{Message: msg}, pub.bodies[0])

	assert.Error(t, (&QueueNotifier{}).Send(context.Background(), msg))
}

func TestLogNotifier(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := &LogNotifier{Logger: logger}

	require.NoError(t, n.Send(context.Background(), Message{To: []string{"x@example.test", "y@example.test"}, Subject: "Reset", Text: "link"}))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "x@example.test,y@example.test", entry.Data["to"])
	assert.Equal(t, "Reset", entry.Data["subject"])

	assert.NoError(t, (&LogNotifier{}).Send(context.Background(), Message{}))
}
