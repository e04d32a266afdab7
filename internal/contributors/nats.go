package contributors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// DefaultSubject is the subject contributor requests are published on.
const DefaultSubject = "docsite.contributors.requests"

// NATSSink publishes requests for a contributors-worker process to consume.
type NATSSink struct {
	conn    *nats.Conn
	subject string
}

// Connect opens a NATS connection named after the calling component.
func Connect(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url, nats.Name(name))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryMessaging, "failed to connect to NATS").
			WithContext("url", url).
			Build()
	}
	return conn, nil
}

// NewNATSSink publishes on subject (DefaultSubject when empty).
func NewNATSSink(conn *nats.Conn, subject string) *NATSSink {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSSink{conn: conn, subject: subject}
}

// Submit implements Sink. Publishing is buffered by the client; delivery is
// not confirmed.
func (s *NATSSink) Submit(_ context.Context, req Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return errors.MessagingError("failed to publish contributor request").
			WithCause(err).
			WithContext("subject", s.subject).
			Build()
	}
	slog.Debug("Published contributor request",
		logfields.RequestID(req.ID),
		logfields.Repository(req.Path.Repo),
		logfields.File(req.FilePath))
	return nil
}

// Subscribe feeds requests from subject into sink. Workers sharing queue
// split the stream between them. Malformed messages are logged and skipped.
func Subscribe(conn *nats.Conn, subject, queue string, sink Sink) (*nats.Subscription, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	sub, err := conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		var req Request
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			slog.Warn("Discarding malformed contributor request", logfields.Error(err))
			return
		}
		if err := sink.Submit(context.Background(), req); err != nil {
			slog.Debug("Contributor request not accepted", logfields.RequestID(req.ID), logfields.Error(err))
		}
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryMessaging, "failed to subscribe").
			WithContext("subject", subject).
			Build()
	}
	return sub, nil
}
