// Package mailer renders account emails and hands them to a delivery backend.
// Delivery itself happens outside this process; LogMailer only records the
// outbound message.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrNoRecipient is returned when a message has no To address.
var ErrNoRecipient = errors.New("mailer: message has no recipient")

// Message is a plain-text outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
	// Link is the action URL embedded in Body, kept separately for logging and tests.
	Link string
}

// Mailer delivers account emails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// PasswordReset renders the reset mail for token under baseURL.
func PasswordReset(baseURL, to, token string) Message {
	link := actionLink(baseURL, "/reset-password", token)
	return Message{
		To:      to,
		Subject: "Reset your password",
		Body:    fmt.Sprintf("Use the link below to choose a new password. It can be used once.\n\n%s\n\nIf you did not ask for this, ignore this email.", link),
		Link:    link,
	}
}

// EmailVerification renders the address confirmation mail.
func EmailVerification(baseURL, to, token string) Message {
	link := actionLink(baseURL, "/api/v1/auth/verify-email", token)
	return Message{
		To:      to,
		Subject: "Confirm your email address",
		Body:    fmt.Sprintf("Confirm your email address by opening:\n\n%s", link),
		Link:    link,
	}
}

func actionLink(baseURL, path, token string) string {
	return strings.TrimRight(baseURL, "/") + path + "?token=" + url.QueryEscape(token)
}

// LogMailer writes each message to a logrus logger instead of an SMTP relay.
type LogMailer struct {
	log logrus.FieldLogger
}

// NewLogMailer returns a LogMailer. A nil logger uses the logrus standard logger.
func NewLogMailer(log logrus.FieldLogger) *LogMailer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogMailer{log: log.WithField("component", "mailer")}
}

// Send logs the message. The body is not logged because it carries a bearer token.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("outbound email queued")
	return nil
}

// Recorder keeps sent messages in memory.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
	// Err, when set, is returned by Send and nothing is recorded.
	Err error
}

// Send records msg.
func (r *Recorder) Send(_ context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

// Last returns the most recent message sent to "to".
func (r *Recorder) Last(to string) (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].To == to {
			return r.sent[i], true
		}
	}
	return Message{}, false
}
