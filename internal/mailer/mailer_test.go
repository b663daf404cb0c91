package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestLogMailerDoesNotLogBody(t *testing.T) {
	logger, hook := test.NewNullLogger()
	m := NewLogMailer(logger)

	msg := PasswordReset("https://jobs.example/", "a@example.com", "tok.en")
	if err := m.Send(context.Background(), msg); err != nil {
		t.Fatalf("send: %v", err)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.InfoLevel {
		t.Fatalf("expected one info entry, got %#v", entry)
	}
	if entry.Data["to"] != "a@example.com" {
		t.Fatalf("unexpected to field: %v", entry.Data["to"])
	}
	for _, v := range entry.Data {
		if s, ok := v.(string); ok && strings.Contains(s, "tok.en") {
			t.Fatalf("token leaked into log field: %q", s)
		}
	}
}

func TestLogMailerRequiresRecipient(t *testing.T) {
	m := NewLogMailer(nil)
	if err := m.Send(context.Background(), Message{Subject: "x"}); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}
}

func TestLinks(t *testing.T) {
	reset := PasswordReset("https://jobs.example/", "a@example.com", "a+b/c")
	if reset.Link != "https://jobs.example/reset-password?token=a%2Bb%2Fc" {
		t.Fatalf("unexpected reset link %q", reset.Link)
	}
	if !strings.Contains(reset.Body, reset.Link) {
		t.Fatal("reset body should contain the link")
	}

	verify := EmailVerification("http://localhost:8080", "a@example.com", "t")
	if verify.Link != "http://localhost:8080/api/v1/auth/verify-email?token=t" {
		t.Fatalf("unexpected verification link %q", verify.Link)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	_ = r.Send(context.Background(), Message{To: "a@example.com", Subject: "1"})
	_ = r.Send(context.Background(), Message{To: "b@example.com", Subject: "2"})
	_ = r.Send(context.Background(), Message{To: "a@example.com", Subject: "3"})

	if len(r.Sent()) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(r.Sent()))
	}
	last, ok := r.Last("a@example.com")
	if !ok || last.Subject != "3" {
		t.Fatalf("unexpected last message %#v", last)
	}

	r.Err = errors.New("smtp down")
	if err := r.Send(context.Background(), Message{To: "a@example.com"}); err == nil {
		t.Fatal("expected configured error")
	}
}
